package bookcompiler

import (
	"fmt"
	"strings"
)

// Book is the structured book handed to every renderer. Renderers never
// modify it.
type Book struct {
	Title            string    `json:"title"`
	Subtitle         string    `json:"subtitle,omitempty"`
	Author           string    `json:"author"`
	Description      string    `json:"description"`
	Chapters         []Chapter `json:"chapters"`
	SelectedTemplate string    `json:"selectedTemplate"`
	CoverImageURL    string    `json:"coverImageUrl,omitempty"`
	Language         string    `json:"language,omitempty"`
}

// Chapter is one titled unit of a book. Content holds paragraphs separated
// by blank lines.
type Chapter struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExportOptions are supplied by the caller on every export.
type ExportOptions struct {
	IncludeCover           bool `json:"includeCover"`
	IncludeTableOfContents bool `json:"includeTableOfContents"`
	IncludePageNumbers     bool `json:"includePageNumbers"`
}

// ToCEntry represents a table of contents entry
type ToCEntry struct {
	Number  int
	Title   string
	Anchor  string
	PageNum int
}

// Format is an export target.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatEPUB     Format = "epub"
	FormatDOCX     Format = "docx"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists every export target in a stable order.
var Formats = []Format{FormatPDF, FormatEPUB, FormatDOCX, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format token case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &InputError{Field: "format", Message: fmt.Sprintf("unsupported format %q", s)}
}

// Extension returns the file extension written for the format.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatEPUB:
		return ".epub"
	case FormatDOCX:
		return ".docx"
	case FormatMarkdown:
		return ".md"
	default:
		return ".html"
	}
}

// InputError is a caller mistake detected before any rendering starts.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
