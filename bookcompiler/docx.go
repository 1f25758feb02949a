package bookcompiler

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Font sizes in half-points, fixed per role.
const (
	docxTitleSize      = 56 // 28pt
	docxSubtitleSize   = 36
	docxAuthorSize     = 28
	docxChapterSize    = 40
	docxSubHeadingSize = 28
	docxBodySize       = 24
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>
`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>
`

const docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>
</Relationships>
`

const docxFooter = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:fldChar w:fldCharType="begin"/></w:r><w:r><w:instrText xml:space="preserve"> PAGE </w:instrText></w:r><w:r><w:fldChar w:fldCharType="separate"/></w:r><w:r><w:t>1</w:t></w:r><w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>
</w:ftr>
`

const wordNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

func docxStyles(s TemplateStyle) string {
	font := escape(s.PrimaryFont())
	text := hexColor(s.TextColor)
	accent := hexColor(s.AccentColor)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` + "\n")
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/><w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:rPrDefault>`,
		font, font, font, text, docxBodySize, docxBodySize)
	fmt.Fprintf(&b, `<w:pPrDefault><w:pPr><w:spacing w:after="200" w:line="%d" w:lineRule="auto"/></w:pPr></w:pPrDefault></w:docDefaults>`+"\n",
		int(s.LineHeight*240))
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:pPr><w:jc w:val="both"/></w:pPr></w:style>` + "\n")
	docxStyle(&b, "Title", "Title", accent, docxTitleSize, true, 0)
	docxStyle(&b, "Subtitle", "Subtitle", accent, docxSubtitleSize, false, 0)
	docxStyle(&b, "Author", "Author", text, docxAuthorSize, false, 0)
	docxStyle(&b, "Heading1", "heading 1", accent, docxChapterSize, true, 1)
	docxStyle(&b, "Heading2", "heading 2", accent, docxSubHeadingSize, true, 2)
	b.WriteString("</w:styles>\n")
	return b.String()
}

func docxStyle(b *strings.Builder, id, name, color string, size int, bold bool, outline int) {
	fmt.Fprintf(b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`, id, name)
	b.WriteString(`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="240"/>`)
	if outline > 0 {
		fmt.Fprintf(b, `<w:outlineLvl w:val="%d"/>`, outline-1)
	} else {
		b.WriteString(`<w:jc w:val="center"/>`)
	}
	b.WriteString(`</w:pPr><w:rPr>`)
	if bold {
		b.WriteString(`<w:b/>`)
	}
	fmt.Fprintf(b, `<w:color w:val="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`+"\n", color, size, size)
}

// docxRuns renders text as runs, turning newlines into line breaks.
func docxRuns(text string) string {
	var b strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteString(`<w:r><w:br/></w:r>`)
		}
		fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, escape(strings.TrimSpace(line)))
	}
	return b.String()
}

type docxWriter struct {
	b strings.Builder
}

func (w *docxWriter) paragraph(style, text string, pageBreakBefore bool) {
	w.b.WriteString("<w:p>")
	if style != "" || pageBreakBefore {
		w.b.WriteString("<w:pPr>")
		if style != "" {
			fmt.Fprintf(&w.b, `<w:pStyle w:val="%s"/>`, style)
		}
		if pageBreakBefore {
			w.b.WriteString("<w:pageBreakBefore/>")
		}
		w.b.WriteString("</w:pPr>")
	}
	w.b.WriteString(docxRuns(text))
	w.b.WriteString("</w:p>\n")
}

func (w *docxWriter) pageBreak() {
	w.b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>` + "\n")
}

func docxDocument(m *manuscript, opts ExportOptions) string {
	w := &docxWriter{}
	w.b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	w.b.WriteString(`<w:document ` + wordNamespaces + `>` + "\n<w:body>\n")

	if opts.IncludeCover {
		w.paragraph("Title", m.Title, false)
		if m.Subtitle != "" {
			w.paragraph("Subtitle", m.Subtitle, false)
		}
		if m.Author != "" {
			w.paragraph("Author", "by "+m.Author, false)
		}
		if m.Description != "" {
			w.paragraph("", m.Description, false)
		}
		w.pageBreak()
	}

	if opts.IncludeTableOfContents {
		w.paragraph("Heading1", "Table of Contents", false)
		for _, e := range m.tableOfContents() {
			line := fmt.Sprintf("%d. %s", e.Number, e.Title)
			if opts.IncludePageNumbers {
				line += fmt.Sprintf(" ... %d", e.PageNum)
			}
			w.paragraph("", line, false)
		}
		w.pageBreak()
	}

	for i, s := range m.Sections {
		w.paragraph("Heading1", s.Heading(), i > 0)
		for _, blk := range s.Blocks {
			if blk.Kind == SubHeading {
				w.paragraph("Heading2", blk.Text, false)
				continue
			}
			w.paragraph("", blk.Text, false)
		}
	}

	w.b.WriteString(`<w:sectPr>`)
	if opts.IncludePageNumbers {
		w.b.WriteString(`<w:footerReference w:type="default" r:id="rId2"/>`)
	}
	w.b.WriteString(`<w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>` + "\n")
	w.b.WriteString("</w:body>\n</w:document>\n")
	return w.b.String()
}

func docxCoreProps(m *manuscript) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` + "\n")
	fmt.Fprintf(&b, "<dc:title>%s</dc:title>\n", escape(m.Title))
	if m.Author != "" {
		fmt.Fprintf(&b, "<dc:creator>%s</dc:creator>\n", escape(m.Author))
	}
	if m.Description != "" {
		fmt.Fprintf(&b, "<dc:description>%s</dc:description>\n", escape(m.Description))
	}
	fmt.Fprintf(&b, "<dc:language>%s</dc:language>\n", escape(m.Language))
	b.WriteString("</cp:coreProperties>\n")
	return b.String()
}

func buildDOCX(m *manuscript, opts ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []zipEntry{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRootRels},
		{"docProps/core.xml", docxCoreProps(m)},
		{"word/_rels/document.xml.rels", docxDocumentRels},
		{"word/styles.xml", docxStyles(m.Style)},
		{"word/footer1.xml", docxFooter},
		{"word/document.xml", docxDocument(m, opts)},
	}
	for _, f := range files {
		if err := addStringToZip(zw, f.name, f.content, zip.Deflate); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderDOCX renders a Word document.
func RenderDOCX(book Book, opts ExportOptions) ([]byte, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	return buildDOCX(prepareBook(book), opts)
}
