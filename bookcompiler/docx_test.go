package bookcompiler

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDOCXPackage(t *testing.T) {
	out, err := RenderDOCX(sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	files, _ := readZip(t, out)
	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"docProps/core.xml",
		"word/_rels/document.xml.rels",
		"word/styles.xml",
		"word/footer1.xml",
		"word/document.xml",
	} {
		content, ok := files[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		dec := xml.NewDecoder(strings.NewReader(content))
		for {
			_, err := dec.Token()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				t.Errorf("%s is not well-formed: %v", name, err)
				break
			}
		}
	}

	styles := files["word/styles.xml"]
	if !strings.Contains(styles, `w:ascii="Times New Roman"`) {
		t.Error("styles do not use the template font")
	}
	for _, size := range []string{`<w:sz w:val="56"/>`, `<w:sz w:val="40"/>`, `<w:sz w:val="28"/>`, `<w:sz w:val="24"/>`} {
		if !strings.Contains(styles, size) {
			t.Errorf("styles lack %s", size)
		}
	}
	if !strings.Contains(files["docProps/core.xml"], "<dc:title>Gardening for Beginners</dc:title>") {
		t.Error("core properties lack the title")
	}
}

func TestDOCXLayout(t *testing.T) {
	out, err := RenderDOCX(sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	files, _ := readZip(t, out)
	doc := files["word/document.xml"]

	paragraphs := strings.Split(doc, "</w:p>")
	if !strings.Contains(paragraphs[0], `<w:pStyle w:val="Title"/>`) || !strings.Contains(paragraphs[0], "Gardening for Beginners") {
		t.Errorf("document does not open with the title block: %s", paragraphs[0])
	}
	if got := strings.Count(doc, `<w:br w:type="page"/>`); got != 2 {
		t.Errorf("%d explicit page breaks, want 2 (after title block and toc)", got)
	}
	// Page break before every chapter heading except the first.
	if got := strings.Count(doc, `<w:pStyle w:val="Heading1"/><w:pageBreakBefore/>`); got != 2 {
		t.Errorf("%d chapters break before, want 2", got)
	}
	if !strings.Contains(doc, "1. Soil Basics ... 3") {
		t.Error("toc entry with page number missing")
	}
	if !strings.Contains(doc, `<w:footerReference w:type="default" r:id="rId2"/>`) {
		t.Error("page number footer not referenced")
	}
	if !strings.Contains(doc, `Seeds are cheap.</w:t></w:r><w:r><w:br/></w:r>`) {
		t.Error("line break inside a paragraph not preserved")
	}
	if !strings.Contains(doc, "Planting &lt;Seeds&gt; &amp; &#34;Starts&#34;") {
		t.Error("chapter title not escaped")
	}

	out, err = RenderDOCX(sampleBook(), ExportOptions{})
	if err != nil {
		t.Fatal(err)
	}
	files, _ = readZip(t, out)
	doc = files["word/document.xml"]
	if strings.Contains(doc, `w:val="Title"`) || strings.Contains(doc, "Table of Contents") {
		t.Error("title block or toc rendered although disabled")
	}
	if strings.Contains(doc, `<w:br w:type="page"/>`) || strings.Contains(doc, "footerReference") {
		t.Error("unexpected page break or footer")
	}
	first := strings.Index(doc, `<w:pStyle w:val="Heading1"/>`)
	if first < 0 || strings.Contains(doc[first:first+60], "pageBreakBefore") {
		t.Error("first chapter must not break before")
	}
}
