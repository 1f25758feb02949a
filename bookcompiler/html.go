package bookcompiler

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates
var templateFS embed.FS

// stylesheet renders the CSS shared by the HTML output and the EPUB style.css.
func stylesheet(s TemplateStyle, screen bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "body {\n  font-family: %s;\n  font-size: %dpt;\n  line-height: %.1f;\n  color: %s;\n  background-color: %s;\n  margin: 0;\n  padding: 0;\n}\n",
		s.FontFamily, s.FontSize, s.LineHeight, s.TextColor, s.BackgroundColor)
	fmt.Fprintf(&b, "h1, h2, h3 {\n  color: %s;\n  line-height: 1.3;\n}\n", s.AccentColor)
	fmt.Fprintf(&b, "p {\n  margin: 0 0 %s 0;\n  text-align: justify;\n}\n", s.MarginBottom)
	b.WriteString(".cover-page {\n  text-align: center;\n  padding: 2em 1em;\n}\n")
	b.WriteString(".cover-image {\n  max-width: 60%;\n  max-height: 5in;\n  margin-bottom: 2em;\n}\n")
	b.WriteString(".book-title {\n  font-size: 2.4em;\n  margin-bottom: 0.3em;\n}\n")
	b.WriteString(".book-subtitle {\n  font-size: 1.4em;\n  font-weight: normal;\n}\n")
	b.WriteString(".book-author {\n  font-style: italic;\n  text-align: center;\n}\n")
	b.WriteString(".book-description {\n  text-align: center;\n}\n")
	b.WriteString(".toc-list {\n  list-style: none;\n  padding: 0;\n}\n")
	fmt.Fprintf(&b, ".toc-entry a {\n  color: %s;\n  text-decoration: none;\n}\n", s.TextColor)
	fmt.Fprintf(&b, ".chapter-title {\n  border-bottom: 2px solid %s;\n  padding-bottom: 0.3em;\n}\n", s.AccentColor)
	b.WriteString(".chapter-subheading {\n  font-size: 1.15em;\n  margin-top: 1.5em;\n}\n")
	if screen {
		b.WriteString(".book {\n  max-width: 8.5in;\n  margin: 0 auto;\n  padding: 1in;\n}\n")
		b.WriteString(".cover-page, .table-of-contents {\n  min-height: 9in;\n}\n")
		b.WriteString(".toc-entry {\n  display: flex;\n  justify-content: space-between;\n  border-bottom: 1px dotted #cccccc;\n  padding: 0.3em 0;\n}\n")
		b.WriteString(".chapter {\n  margin-top: 3em;\n}\n")
		b.WriteString("@page {\n  size: A4;\n  margin: 1in;\n}\n")
		b.WriteString("@media print {\n  .book {\n    padding: 0;\n    max-width: none;\n  }\n")
		b.WriteString("  .cover-page, .table-of-contents {\n    page-break-after: always;\n    break-after: page;\n    min-height: 0;\n  }\n")
		b.WriteString("  .chapter {\n    page-break-before: always;\n    break-before: page;\n    margin-top: 0;\n  }\n")
		b.WriteString("  .chapter-title {\n    page-break-after: avoid;\n  }\n}\n")
	}
	return b.String()
}

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*"))

// pageView is the data behind the HTML document and the EPUB pages.
type pageView struct {
	Lang        string
	PageTitle   string
	Title       string
	Subtitle    string
	Author      string
	Description string
	StyleID     string
	CSS         template.CSS
	// CoverSrc is a string, or a template.URL for an inline data: image.
	CoverSrc     any
	IncludeCover bool
	IncludeTOC   bool
	PageNumbers  bool
	TOC          []tocView
	Chapters     []chapterView
	Chapter      chapterView
}

type tocView struct {
	Number int
	Title  string
	Href   string
	Page   int
}

type chapterView struct {
	Anchor  string
	Heading string
	Blocks  []blockView
}

type blockView struct {
	SubHeading bool
	Text       string
	Lines      []string
}

func newPageView(m *manuscript) pageView {
	v := pageView{
		Lang:        languageCode(m.Language),
		PageTitle:   m.Title,
		Title:       m.Title,
		Subtitle:    m.Subtitle,
		Author:      m.Author,
		Description: m.Description,
		StyleID:     m.Style.ID,
	}
	for _, s := range m.Sections {
		v.Chapters = append(v.Chapters, newChapterView(s))
	}
	return v
}

func newChapterView(s section) chapterView {
	c := chapterView{Anchor: s.Anchor, Heading: s.Heading()}
	for _, blk := range s.Blocks {
		b := blockView{SubHeading: blk.Kind == SubHeading, Text: blk.Text}
		for _, line := range blk.Lines() {
			b.Lines = append(b.Lines, strings.TrimSpace(line))
		}
		c.Blocks = append(c.Blocks, b)
	}
	return c
}

// coverSource lets inline images through the template URL filter. Any other
// reference is filtered as usual.
func coverSource(ref string) any {
	if strings.HasPrefix(strings.ToLower(ref), "data:image/") {
		return template.URL(ref)
	}
	return ref
}

func executePage(name string, v pageView) (string, error) {
	var b strings.Builder
	if err := pageTemplates.ExecuteTemplate(&b, name, v); err != nil {
		return "", fmt.Errorf("execute %s template: %w", name, err)
	}
	return b.String(), nil
}

func buildHTML(m *manuscript, opts ExportOptions) (string, error) {
	v := newPageView(m)
	v.CSS = template.CSS(stylesheet(m.Style, true))
	v.IncludeCover = opts.IncludeCover
	v.IncludeTOC = opts.IncludeTableOfContents
	v.PageNumbers = opts.IncludePageNumbers
	if m.CoverImageURL != "" {
		v.CoverSrc = coverSource(m.CoverImageURL)
	}
	for _, e := range m.tableOfContents() {
		v.TOC = append(v.TOC, tocView{Number: e.Number, Title: e.Title, Href: "#" + e.Anchor, Page: e.PageNum})
	}
	return executePage("book", v)
}

// RenderHTML renders a self-contained HTML document.
func RenderHTML(book Book, opts ExportOptions) ([]byte, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	document, err := buildHTML(prepareBook(book), opts)
	if err != nil {
		return nil, err
	}
	return []byte(document), nil
}
