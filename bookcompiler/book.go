package bookcompiler

import (
	"fmt"
	"strings"
)

// DefaultLanguage is written when a book carries no language tag.
const DefaultLanguage = "English (EN)"

// ValidateBook rejects books no renderer can produce.
func ValidateBook(b Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return &InputError{Field: "title", Message: "is required"}
	}
	if len(b.Chapters) == 0 {
		return &InputError{Field: "chapters", Message: "must not be empty"}
	}
	for i, ch := range b.Chapters {
		if strings.TrimSpace(ch.Title) == "" {
			return &InputError{Field: fmt.Sprintf("chapters[%d].title", i), Message: "is required"}
		}
	}
	return nil
}

// manuscript is a Book after the pre-processing every renderer shares.
type manuscript struct {
	Title         string
	Subtitle      string
	Author        string
	Description   string
	CoverImageURL string
	Language      string
	Style         TemplateStyle
	Sections      []section
}

type section struct {
	Number int
	ID     string
	Title  string
	Anchor string
	Blocks []Block
}

// Heading is the displayed chapter heading.
func (s section) Heading() string {
	return fmt.Sprintf("Chapter %d: %s", s.Number, s.Title)
}

func prepareBook(b Book) *manuscript {
	m := &manuscript{
		Title:         strings.TrimSpace(cleanText(b.Title)),
		Subtitle:      strings.TrimSpace(cleanText(b.Subtitle)),
		Author:        strings.TrimSpace(cleanText(b.Author)),
		Description:   strings.TrimSpace(cleanText(b.Description)),
		CoverImageURL: strings.TrimSpace(b.CoverImageURL),
		Language:      strings.TrimSpace(b.Language),
		Style:         ResolveTemplateStyle(b.SelectedTemplate),
		Sections:      make([]section, len(b.Chapters)),
	}
	if m.Language == "" {
		m.Language = DefaultLanguage
	}
	for i, ch := range b.Chapters {
		title := strings.TrimSpace(cleanText(ch.Title))
		content := StripDuplicateLeadingTitle(cleanText(ch.Content), title)
		m.Sections[i] = section{
			Number: i + 1,
			ID:     ch.ID,
			Title:  title,
			Anchor: chapterAnchor(i+1, title),
			Blocks: SplitBlocks(content),
		}
	}
	return m
}
