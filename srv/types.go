package srv

import (
	"github.com/opd-ai/bookster/bookcompiler"
	bookster "github.com/opd-ai/bookster/src"
)

type chaptersResponse struct {
	Chapters []bookster.Chapter `json:"chapters"`
}

type regenerateRequest struct {
	ChapterTitle string               `json:"chapterTitle"`
	BookDetails  bookster.BookDetails `json:"bookDetails"`
}

type regenerateResponse struct {
	Content string `json:"content"`
}

// exportOptions mirrors bookcompiler.ExportOptions with every flag required.
type exportOptions struct {
	IncludeCover           *bool `json:"includeCover"`
	IncludeTableOfContents *bool `json:"includeTableOfContents"`
	IncludePageNumbers     *bool `json:"includePageNumbers"`
}

func (o *exportOptions) resolve() (bookcompiler.ExportOptions, error) {
	if o == nil {
		return bookcompiler.ExportOptions{}, errBadRequest("options are required", nil)
	}
	switch {
	case o.IncludeCover == nil:
		return bookcompiler.ExportOptions{}, errBadRequest("options.includeCover is required", nil)
	case o.IncludeTableOfContents == nil:
		return bookcompiler.ExportOptions{}, errBadRequest("options.includeTableOfContents is required", nil)
	case o.IncludePageNumbers == nil:
		return bookcompiler.ExportOptions{}, errBadRequest("options.includePageNumbers is required", nil)
	}
	return bookcompiler.ExportOptions{
		IncludeCover:           *o.IncludeCover,
		IncludeTableOfContents: *o.IncludeTableOfContents,
		IncludePageNumbers:     *o.IncludePageNumbers,
	}, nil
}

type exportRequest struct {
	Format   string            `json:"format"`
	BookData bookcompiler.Book `json:"bookData"`
	Options  *exportOptions    `json:"options"`
}

type exportResponse struct {
	*bookcompiler.Result
	DownloadURL string `json:"downloadUrl"`
}

type promptResponse struct {
	Kind     bookster.PromptKind `json:"kind"`
	Prompt   string              `json:"prompt"`
	Override bool                `json:"override"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}
