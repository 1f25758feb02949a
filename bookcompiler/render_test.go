package bookcompiler

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

var allOptions = ExportOptions{IncludeCover: true, IncludeTableOfContents: true, IncludePageNumbers: true}

func sampleBook() Book {
	return Book{
		Title:            "Gardening for Beginners",
		Subtitle:         "From seed to harvest",
		Author:           "Ada Green",
		Description:      "A practical first book on vegetable gardens.",
		SelectedTemplate: "classic",
		Chapters: []Chapter{
			{ID: "1", Title: "Soil Basics", Content: "Soil Basics\n\nGood soil is alive.\n\nThe Major Changes Ahead\n\nCompost matters."},
			{ID: "2", Title: "Planting <Seeds> & \"Starts\"", Content: "Seeds are cheap.\nStarts are quick."},
			{ID: "3", Title: "Harvest", Content: "## Harvest\n\nPick early, pick often."},
		},
	}
}

func readZip(t *testing.T, data []byte) (map[string]string, []*zip.File) {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		files[f.Name] = string(b)
	}
	return files, zr.File
}

func renderAll(t *testing.T, book Book, opts ExportOptions) map[Format][]byte {
	t.Helper()
	out := make(map[Format][]byte)
	for _, f := range []Format{FormatHTML, FormatMarkdown, FormatEPUB, FormatDOCX} {
		data, err := Render(f, book, opts)
		if err != nil {
			t.Fatalf("Render(%s): %v", f, err)
		}
		out[f] = data
	}
	return out
}

func TestRenderIsIdempotent(t *testing.T) {
	book := sampleBook()
	first := renderAll(t, book, allOptions)
	second := renderAll(t, book, allOptions)
	for f := range first {
		if !bytes.Equal(first[f], second[f]) {
			t.Errorf("%s output differs between runs", f)
		}
	}
	printable1, _ := RenderPrintableHTML(book, allOptions)
	printable2, _ := RenderPrintableHTML(book, allOptions)
	if !bytes.Equal(printable1, printable2) {
		t.Error("printable html differs between runs")
	}
}

func TestRenderDoesNotMutateBook(t *testing.T) {
	book := sampleBook()
	before := fmt.Sprintf("%#v", book)
	renderAll(t, book, allOptions)
	if after := fmt.Sprintf("%#v", book); after != before {
		t.Error("renderers modified the input book")
	}
}

// headingTexts collects h1-h3 text from an HTML or XHTML document.
func headingTexts(t *testing.T, doc string) []string {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	d.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func countContaining(list []string, needle string) int {
	n := 0
	for _, s := range list {
		if strings.Contains(s, needle) {
			n++
		}
	}
	return n
}

func markdownHeadings(doc string) []string {
	var out []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}

var docxText = regexp.MustCompile(`<w:t xml:space="preserve">([^<]*)</w:t>`)

func docxParagraphs(document string) []string {
	var out []string
	for _, p := range strings.Split(document, "</w:p>") {
		var text strings.Builder
		for _, m := range docxText.FindAllStringSubmatch(p, -1) {
			text.WriteString(m[1])
		}
		if text.Len() > 0 {
			out = append(out, text.String())
		}
	}
	return out
}

func TestTitleIsNotDuplicated(t *testing.T) {
	book := Book{
		Title:    "Dedup Book",
		Chapters: []Chapter{{ID: "1", Title: "My Chapter", Content: "My Chapter\n\nBody text."}},
	}
	opts := ExportOptions{}
	out := renderAll(t, book, opts)

	if n := countContaining(markdownHeadings(string(out[FormatMarkdown])), "My Chapter"); n != 1 {
		t.Errorf("markdown: %d headings mention the chapter title, want 1", n)
	}
	if strings.Contains(string(out[FormatMarkdown]), "\nMy Chapter\n") {
		t.Error("markdown: title echoed as a paragraph")
	}

	if n := countContaining(headingTexts(t, string(out[FormatHTML])), "My Chapter"); n != 1 {
		t.Errorf("html: %d headings mention the chapter title, want 1", n)
	}
	if strings.Contains(string(out[FormatHTML]), "<p>My Chapter</p>") {
		t.Error("html: title echoed as a paragraph")
	}

	files, _ := readZip(t, out[FormatEPUB])
	chapter := files["OEBPS/chapter1.xhtml"]
	if n := countContaining(headingTexts(t, chapter), "My Chapter"); n != 1 {
		t.Errorf("epub: %d headings mention the chapter title, want 1", n)
	}
	if strings.Contains(chapter, "<p>My Chapter</p>") {
		t.Error("epub: title echoed as a paragraph")
	}

	files, _ = readZip(t, out[FormatDOCX])
	if n := countContaining(docxParagraphs(files["word/document.xml"]), "My Chapter"); n != 1 {
		t.Errorf("docx: %d paragraphs mention the chapter title, want 1", n)
	}
}

func TestSubHeadingRule(t *testing.T) {
	book := Book{
		Title:    "Outlook",
		Chapters: []Chapter{{ID: "1", Title: "Forecast", Content: "The Major Changes Ahead\n\nThe weather was nice."}},
	}
	out := renderAll(t, book, ExportOptions{})

	md := string(out[FormatMarkdown])
	if !strings.Contains(md, "\n### The Major Changes Ahead\n") {
		t.Error("markdown: sub-heading not rendered as ###")
	}
	if strings.Contains(md, "# The weather was nice.") || !strings.Contains(md, "\nThe weather was nice.\n") {
		t.Error("markdown: normal paragraph rendered as heading")
	}

	check := func(name, doc string) {
		d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
		if err != nil {
			t.Fatal(err)
		}
		if got := strings.TrimSpace(d.Find("h3.chapter-subheading").Text()); got != "The Major Changes Ahead" {
			t.Errorf("%s: sub-heading = %q", name, got)
		}
		found := false
		d.Find("p").Each(func(_ int, s *goquery.Selection) {
			if s.Text() == "The weather was nice." {
				found = true
			}
		})
		if !found {
			t.Errorf("%s: paragraph missing", name)
		}
	}
	check("html", string(out[FormatHTML]))
	files, _ := readZip(t, out[FormatEPUB])
	check("epub", files["OEBPS/chapter1.xhtml"])

	files, _ = readZip(t, out[FormatDOCX])
	doc := files["word/document.xml"]
	if !strings.Contains(doc, `<w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t xml:space="preserve">The Major Changes Ahead</w:t>`) {
		t.Error("docx: sub-heading not styled Heading2")
	}
	if !strings.Contains(doc, `<w:p><w:r><w:t xml:space="preserve">The weather was nice.</w:t></w:r></w:p>`) {
		t.Error("docx: paragraph not rendered as body text")
	}
}

func permutations(chapters []Chapter) [][]Chapter {
	if len(chapters) <= 1 {
		return [][]Chapter{append([]Chapter(nil), chapters...)}
	}
	var out [][]Chapter
	for i := range chapters {
		rest := make([]Chapter, 0, len(chapters)-1)
		rest = append(rest, chapters[:i]...)
		rest = append(rest, chapters[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]Chapter{chapters[i]}, p...))
		}
	}
	return out
}

func indexesIn(t *testing.T, doc string, needles []string) []int {
	t.Helper()
	idx := make([]int, len(needles))
	for i, n := range needles {
		idx[i] = strings.Index(doc, n)
		if idx[i] < 0 {
			t.Fatalf("%q not found", n)
		}
	}
	return idx
}

func increasing(idx []int) bool {
	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			return false
		}
	}
	return true
}

func TestChapterOrderMatchesInput(t *testing.T) {
	base := []Chapter{
		{ID: "a", Title: "Alpha", Content: "First."},
		{ID: "b", Title: "Bravo", Content: "Second."},
		{ID: "c", Title: "Charlie", Content: "Third."},
	}
	perms := permutations(base)
	if len(perms) != 6 {
		t.Fatalf("got %d permutations", len(perms))
	}

	for _, chapters := range perms {
		book := Book{Title: "Order", Chapters: chapters}
		name := chapters[0].Title + chapters[1].Title + chapters[2].Title
		t.Run(name, func(t *testing.T) {
			out := renderAll(t, book, allOptions)
			var headings, tocLinks []string
			for i, c := range chapters {
				headings = append(headings, fmt.Sprintf("Chapter %d: %s", i+1, c.Title))
				tocLinks = append(tocLinks, fmt.Sprintf("%d. [%s]", i+1, c.Title))
			}

			md := string(out[FormatMarkdown])
			if !increasing(indexesIn(t, md, tocLinks)) || !increasing(indexesIn(t, md, headings)) {
				t.Error("markdown order differs from chapter order")
			}

			html := string(out[FormatHTML])
			d, _ := goquery.NewDocumentFromReader(strings.NewReader(html))
			var tocOrder, pageOrder []string
			d.Find(".toc-entry a").Each(func(_ int, s *goquery.Selection) { tocOrder = append(tocOrder, s.Text()) })
			d.Find(".chapter h2").Each(func(_ int, s *goquery.Selection) { pageOrder = append(pageOrder, s.Text()) })
			for i, c := range chapters {
				if tocOrder[i] != fmt.Sprintf("%d. %s", i+1, c.Title) || pageOrder[i] != headings[i] {
					t.Errorf("html position %d: toc %q page %q", i, tocOrder[i], pageOrder[i])
				}
			}

			files, _ := readZip(t, out[FormatEPUB])
			spine := regexp.MustCompile(`<itemref idref="([^"]+)"`).FindAllStringSubmatch(files["OEBPS/content.opf"], -1)
			wantSpine := []string{"cover", "toc", "chapter1", "chapter2", "chapter3"}
			if len(spine) != len(wantSpine) {
				t.Fatalf("spine has %d items", len(spine))
			}
			for i, m := range spine {
				if m[1] != wantSpine[i] {
					t.Errorf("spine[%d] = %s, want %s", i, m[1], wantSpine[i])
				}
			}
			for i := range chapters {
				page := files[fmt.Sprintf("OEBPS/chapter%d.xhtml", i+1)]
				if !strings.Contains(page, ">"+headings[i]+"<") {
					t.Errorf("chapter%d.xhtml does not hold %q", i+1, headings[i])
				}
			}
			if !increasing(indexesIn(t, files["OEBPS/toc.ncx"], headings)) {
				t.Error("ncx order differs from chapter order")
			}
			if !increasing(indexesIn(t, files["OEBPS/toc.xhtml"], tocOrder)) {
				t.Error("epub toc order differs from chapter order")
			}

			files, _ = readZip(t, out[FormatDOCX])
			if !increasing(indexesIn(t, files["word/document.xml"], headings)) {
				t.Error("docx order differs from chapter order")
			}
		})
	}
}

func TestMarkdownEndToEnd(t *testing.T) {
	book := Book{
		Title:            "Test",
		Chapters:         []Chapter{{ID: "1", Title: "Intro", Content: "Intro\n\nHello world."}},
		SelectedTemplate: "modern",
	}
	out, err := RenderMarkdown(book, allOptions)
	if err != nil {
		t.Fatal(err)
	}
	md := string(out)
	if !strings.HasPrefix(md, "# Test\n") {
		t.Errorf("document starts with %q", md[:min(len(md), 20)])
	}
	if !strings.Contains(md, "\n## Chapter 1: Intro\n") {
		t.Error("missing chapter heading")
	}
	if n := countContaining(markdownHeadings(md), "Intro"); n != 1 {
		t.Errorf("%d heading lines mention Intro, want 1", n)
	}
	if !strings.Contains(md, "1. [Intro](#chapter-1-intro)") || !strings.Contains(md, `<a id="chapter-1-intro"></a>`) {
		t.Error("toc anchor missing")
	}
	if !strings.Contains(md, "Hello world.") || !strings.Contains(md, "**Language:** English (EN)") {
		t.Error("body or metadata missing")
	}
}

func TestMarkdownWithoutTableOfContents(t *testing.T) {
	out, err := RenderMarkdown(sampleBook(), ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "Table of Contents") {
		t.Error("toc rendered although disabled")
	}
}

func TestHTMLDocument(t *testing.T) {
	book := sampleBook()
	book.CoverImageURL = "/uploads/cover.png"
	out, err := RenderHTML(book, allOptions)
	if err != nil {
		t.Fatal(err)
	}
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if src, _ := d.Find(".cover-page img").Attr("src"); src != "/uploads/cover.png" {
		t.Errorf("cover src = %q", src)
	}
	if got := d.Find(".chapter").Length(); got != 3 {
		t.Errorf("%d chapter divs, want 3", got)
	}
	var pages []string
	d.Find(".toc-page").Each(func(_ int, s *goquery.Selection) { pages = append(pages, s.Text()) })
	if strings.Join(pages, ",") != "3,4,5" {
		t.Errorf("toc pages = %v", pages)
	}
	if got := d.Find(".chapter h2").Eq(1).Text(); got != `Chapter 2: Planting <Seeds> & "Starts"` {
		t.Errorf("escaped heading round-trip = %q", got)
	}
	css := d.Find("style").Text()
	classic := ResolveTemplateStyle("classic")
	if !strings.Contains(css, classic.AccentColor) || !strings.Contains(css, "page-break-before: always") {
		t.Error("template css or print page breaks missing")
	}
	if d.Find("html").AttrOr("lang", "") != "en" {
		t.Error("lang attribute missing")
	}

	plain, _ := RenderHTML(book, ExportOptions{})
	d, _ = goquery.NewDocumentFromReader(bytes.NewReader(plain))
	if d.Find(".cover-page").Length() != 0 || d.Find(".table-of-contents").Length() != 0 {
		t.Error("cover or toc rendered although disabled")
	}
	if d.Find(".book-title").Text() != book.Title {
		t.Error("book title missing without cover")
	}
}

func TestHTMLCoverSource(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"data:image/png;base64,iVBORw0KGgo=", "data:image/png;base64,iVBORw0KGgo="},
		{"https://cdn.example.com/cover.png", "https://cdn.example.com/cover.png"},
		{"javascript:alert(1)", "#ZgotmplZ"},
		{"data:text/html;base64,PHNjcmlwdD4=", "#ZgotmplZ"},
	}
	for _, tt := range tests {
		book := sampleBook()
		book.CoverImageURL = tt.ref
		out, err := RenderHTML(book, allOptions)
		if err != nil {
			t.Fatal(err)
		}
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
		if err != nil {
			t.Fatal(err)
		}
		if src, _ := d.Find(".cover-page img").Attr("src"); src != tt.want {
			t.Errorf("cover %q: src = %q, want %q", tt.ref, src, tt.want)
		}
	}
}

func TestHTMLEscapesChapterMarkup(t *testing.T) {
	book := sampleBook()
	book.Chapters[0].Content = "<script>alert(1)</script>\nsecond line"
	out, err := RenderHTML(book, allOptions)
	if err != nil {
		t.Fatal(err)
	}
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if d.Find(".chapter script").Length() != 0 {
		t.Error("chapter content rendered as markup")
	}
	p := d.Find(".chapter").First().Find("p").First()
	if p.Find("br").Length() != 1 || !strings.Contains(p.Text(), "<script>alert(1)</script>") {
		t.Errorf("paragraph = %q", p.Text())
	}
}

func TestPrintableHTML(t *testing.T) {
	out, err := RenderPrintableHTML(sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	banner := d.Find("body").Children().First()
	if !banner.HasClass("print-instructions") {
		t.Fatal("print instructions are not the first element of the body")
	}
	if !strings.Contains(banner.Text(), "Save as PDF") {
		t.Error("instructions do not mention Save as PDF")
	}
	if !strings.Contains(d.Find("head").Text(), "display: none !important") {
		t.Error("banner is not hidden in print")
	}
	if d.Find(".chapter").Length() != 3 {
		t.Error("printable html lost chapters")
	}
}

func TestValidation(t *testing.T) {
	good := sampleBook()
	tests := []struct {
		name  string
		book  Book
		field string
	}{
		{"missing title", Book{Chapters: good.Chapters}, "title"},
		{"blank title", Book{Title: "  ", Chapters: good.Chapters}, "title"},
		{"no chapters", Book{Title: "T"}, "chapters"},
		{"untitled chapter", Book{Title: "T", Chapters: []Chapter{{ID: "1", Content: "x"}}}, "chapters[0].title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range []Format{FormatHTML, FormatMarkdown, FormatEPUB, FormatDOCX} {
				_, err := Render(f, tt.book, allOptions)
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("%s: err = %v, want InputError", f, err)
				}
				if inputErr.Field != tt.field {
					t.Errorf("%s: field = %q, want %q", f, inputErr.Field, tt.field)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"pdf", "PDF", " Epub ", "docx", "Markdown", "html"} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	for _, in := range []string{"", "txt", "md", "htm"} {
		_, err := ParseFormat(in)
		var inputErr *InputError
		if !errors.As(err, &inputErr) || inputErr.Field != "format" {
			t.Errorf("ParseFormat(%q) err = %v", in, err)
		}
	}
	if _, err := Render(Format("rtf"), sampleBook(), allOptions); err == nil {
		t.Error("Render accepted an unknown format")
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"a.pdf":  "application/pdf",
		"a.html": "text/html; charset=utf-8",
		"a.md":   "text/markdown; charset=utf-8",
		"a.epub": "application/epub+zip",
		"a.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"A.PDF":  "application/pdf",
		"a.bin":  "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
