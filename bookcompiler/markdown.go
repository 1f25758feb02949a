package bookcompiler

import (
	"fmt"
	"strings"
)

func buildMarkdown(m *manuscript, opts ExportOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Title)
	if m.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", m.Subtitle)
	}
	if m.Author != "" {
		fmt.Fprintf(&b, "**Author:** %s\n\n", m.Author)
	}
	fmt.Fprintf(&b, "**Language:** %s\n\n", m.Language)
	fmt.Fprintf(&b, "**Template:** %s\n\n", m.Style.ID)
	if m.Description != "" {
		for _, line := range strings.Split(m.Description, "\n") {
			fmt.Fprintf(&b, "> %s\n", strings.TrimSpace(line))
		}
		b.WriteString("\n")
	}
	if opts.IncludeCover && m.CoverImageURL != "" {
		fmt.Fprintf(&b, "![Cover](%s)\n\n", m.CoverImageURL)
	}
	b.WriteString("---\n\n")

	if opts.IncludeTableOfContents {
		b.WriteString("## Table of Contents\n\n")
		for _, e := range m.tableOfContents() {
			fmt.Fprintf(&b, "%d. [%s](#%s)\n", e.Number, e.Title, e.Anchor)
		}
		b.WriteString("\n---\n\n")
	}

	for i, s := range m.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "<a id=\"%s\"></a>\n\n", s.Anchor)
		fmt.Fprintf(&b, "## %s\n\n", s.Heading())
		for _, blk := range s.Blocks {
			if blk.Kind == SubHeading {
				fmt.Fprintf(&b, "### %s\n\n", blk.Text)
				continue
			}
			b.WriteString(blk.Text)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderMarkdown renders the book as a single Markdown document.
func RenderMarkdown(book Book, opts ExportOptions) ([]byte, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	return []byte(buildMarkdown(prepareBook(book), opts)), nil
}
