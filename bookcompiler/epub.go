package bookcompiler

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	ncxDoctype   = `<!DOCTYPE ncx PUBLIC "-//NISO//DTD ncx 2005-1//EN" "http://www.daisy.org/z3986/2005/ncx-2005-1.dtd">`

	containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`
)

// bookNamespace seeds the deterministic EPUB identifiers.
var bookNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://bookster.app/books"))

// coverImage is a cover decoded from a data: URL.
type coverImage struct {
	MediaType string
	Name      string
	Data      []byte
}

// decodeDataURL decodes "data:<mime>;base64,<payload>" references. Anything
// else is left alone; the pipeline never fetches images.
func decodeDataURL(ref string) (*coverImage, bool) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, false
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, false
	}
	params := strings.Split(meta, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	ext := ""
	switch mediaType {
	case "image/jpeg", "image/jpg":
		mediaType, ext = "image/jpeg", "jpg"
	case "image/png":
		ext = "png"
	case "image/gif":
		ext = "gif"
	case "image/svg+xml":
		ext = "svg"
	case "image/webp":
		ext = "webp"
	default:
		return nil, false
	}

	var data []byte
	if params[len(params)-1] == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return nil, false
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, false
		}
		data = []byte(unescaped)
	}
	if len(data) == 0 {
		return nil, false
	}
	return &coverImage{MediaType: mediaType, Name: "images/cover." + ext, Data: data}, true
}

func bookIdentifier(m *manuscript) string {
	var seed strings.Builder
	seed.WriteString(m.Title)
	seed.WriteByte(0)
	seed.WriteString(m.Author)
	for _, s := range m.Sections {
		seed.WriteByte(0)
		seed.WriteString(s.ID)
		seed.WriteByte(0)
		seed.WriteString(s.Title)
	}
	return "urn:uuid:" + uuid.NewSHA1(bookNamespace, []byte(seed.String())).String()
}

func chapterFile(n int) string {
	return fmt.Sprintf("chapter%d.xhtml", n)
}

func epubCoverPage(m *manuscript, cover *coverImage) (string, error) {
	v := newPageView(m)
	if cover != nil {
		v.CoverSrc = cover.Name
	}
	return executePage("epub-cover", v)
}

func epubTOCPage(m *manuscript) (string, error) {
	v := newPageView(m)
	v.PageTitle = "Table of Contents"
	for _, e := range m.tableOfContents() {
		v.TOC = append(v.TOC, tocView{Number: e.Number, Title: e.Title, Href: chapterFile(e.Number)})
	}
	return executePage("epub-toc", v)
}

func epubChapterPage(m *manuscript, s section) (string, error) {
	v := newPageView(m)
	v.PageTitle = s.Heading()
	v.Chapter = newChapterView(s)
	return executePage("epub-chapter", v)
}

func epubPackage(m *manuscript, id string, cover *coverImage) opfPackage {
	md := opfMetadata{
		XmlnsDC:     "http://purl.org/dc/elements/1.1/",
		XmlnsOPF:    "http://www.idpf.org/2007/opf",
		Titles:      []DCTitle{{Value: m.Title}},
		Languages:   []DCLanguage{{Value: m.Language}},
		Identifiers: []DCIdentifier{{Value: id, ID: "BookId", Scheme: "UUID"}},
	}
	if m.Author != "" {
		md.Creators = []DCCreator{{Value: m.Author, Role: "aut"}}
	}
	if m.Description != "" {
		md.Description = &DCDescription{Value: m.Description}
	}

	manifest := Manifest{Items: []ManifestItem{
		{ID: "ncx", Link: "toc.ncx", Media: "application/x-dtbncx+xml"},
		{ID: "style", Link: "style.css", Media: "text/css"},
		{ID: "cover", Link: "cover.xhtml", Media: "application/xhtml+xml"},
		{ID: "toc", Link: "toc.xhtml", Media: "application/xhtml+xml"},
	}}
	if cover != nil {
		md.Metas = append(md.Metas, DublinCoreMeta{Name: "cover", Content: "cover-image"})
		manifest.Items = append(manifest.Items, ManifestItem{ID: "cover-image", Link: cover.Name, Media: cover.MediaType})
	}

	spine := Spine{Toc: "ncx", Items: []SpineItem{{IDref: "cover"}, {IDref: "toc"}}}
	for _, s := range m.Sections {
		itemID := fmt.Sprintf("chapter%d", s.Number)
		manifest.Items = append(manifest.Items, ManifestItem{ID: itemID, Link: chapterFile(s.Number), Media: "application/xhtml+xml"})
		spine.Items = append(spine.Items, SpineItem{IDref: itemID})
	}

	return opfPackage{
		Xmlns:            "http://www.idpf.org/2007/opf",
		UniqueIdentifier: "BookId",
		Version:          "2.0",
		Metadata:         md,
		Manifest:         manifest,
		Spine:            spine,
		Guide: Guide{Items: []GuideItem{
			{Title: "Cover", Type: "cover", Link: "cover.xhtml"},
			{Title: "Table of Contents", Type: "toc", Link: "toc.xhtml"},
			{Title: "Start", Type: "text", Link: chapterFile(1)},
		}},
	}
}

func epubNCX(m *manuscript, id string) tocNCX {
	points := []*NavPoint{
		{Id: "navpoint-1", PlayOrder: 1, Label: "Cover", Content: NavPointContent{Src: "cover.xhtml"}},
		{Id: "navpoint-2", PlayOrder: 2, Label: "Table of Contents", Content: NavPointContent{Src: "toc.xhtml"}},
	}
	for _, s := range m.Sections {
		order := s.Number + 2
		points = append(points, &NavPoint{
			Id:        fmt.Sprintf("navpoint-%d", order),
			PlayOrder: order,
			Label:     s.Heading(),
			Content:   NavPointContent{Src: chapterFile(s.Number)},
		})
	}
	ncx := tocNCX{
		Xmlns:   "http://www.daisy.org/z3986/2005/ncx/",
		Version: "2005-1",
		Lang:    languageCode(m.Language),
		Head: TocNCXHead{Meta: []TocNCXHeadMeta{
			{Name: "dtb:uid", Content: id},
			{Name: "dtb:depth", Content: "1"},
			{Name: "dtb:totalPageCount", Content: "0"},
			{Name: "dtb:maxPageNumber", Content: "0"},
		}},
		DocTitle: m.Title,
		NavMap:   NavMap{Points: points},
	}
	if m.Author != "" {
		ncx.DocAuthor = &NCXText{Text: m.Author}
	}
	return ncx
}

type zipEntry struct {
	name    string
	content string
}

func addStringToZip(zw *zip.Writer, relPath, content string, method uint16) error {
	return addBytesToZip(zw, relPath, []byte(content), method)
}

func addBytesToZip(zw *zip.Writer, relPath string, content []byte, method uint16) error {
	header := &zip.FileHeader{
		Name:   relPath,
		Method: method,
	}
	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = writer.Write(content)
	return err
}

func buildEPUB(m *manuscript, opts ExportOptions) ([]byte, error) {
	var cover *coverImage
	if opts.IncludeCover {
		cover, _ = decodeDataURL(m.CoverImageURL)
	}
	id := bookIdentifier(m)

	opf, err := marshalXML(epubPackage(m, id, cover), "")
	if err != nil {
		return nil, fmt.Errorf("encode content.opf: %w", err)
	}
	ncx, err := marshalXML(epubNCX(m, id), ncxDoctype)
	if err != nil {
		return nil, fmt.Errorf("encode toc.ncx: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	// mimetype must be the first entry and stored uncompressed.
	if err := addStringToZip(zw, "mimetype", "application/epub+zip", zip.Store); err != nil {
		return nil, fmt.Errorf("write mimetype: %w", err)
	}
	files := []zipEntry{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", opf},
		{"OEBPS/style.css", stylesheet(m.Style, false)},
	}
	coverPage, err := epubCoverPage(m, cover)
	if err != nil {
		return nil, err
	}
	tocPage, err := epubTOCPage(m)
	if err != nil {
		return nil, err
	}
	files = append(files, zipEntry{"OEBPS/cover.xhtml", coverPage}, zipEntry{"OEBPS/toc.xhtml", tocPage})
	for _, s := range m.Sections {
		page, err := epubChapterPage(m, s)
		if err != nil {
			return nil, err
		}
		files = append(files, zipEntry{"OEBPS/" + chapterFile(s.Number), page})
	}
	files = append(files, zipEntry{"OEBPS/toc.ncx", ncx})

	for _, f := range files {
		if err := addStringToZip(zw, f.name, f.content, zip.Deflate); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if cover != nil {
		if err := addBytesToZip(zw, "OEBPS/"+cover.Name, cover.Data, zip.Deflate); err != nil {
			return nil, fmt.Errorf("write cover image: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close epub: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderEPUB renders an EPUB 2 container.
func RenderEPUB(book Book, opts ExportOptions) ([]byte, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	return buildEPUB(prepareBook(book), opts)
}
