package bookcompiler

import "encoding/xml"

// OPF package document (EPUB 2.0.1).
type opfPackage struct {
	XMLName          xml.Name    `xml:"package"`
	Xmlns            string      `xml:"xmlns,attr"`
	UniqueIdentifier string      `xml:"unique-identifier,attr"`
	Version          string      `xml:"version,attr"`
	Metadata         opfMetadata `xml:"metadata"`
	Manifest         Manifest    `xml:"manifest"`
	Spine            Spine       `xml:"spine"`
	Guide            Guide       `xml:"guide"`
}

type opfMetadata struct {
	XmlnsDC     string           `xml:"xmlns:dc,attr"`
	XmlnsOPF    string           `xml:"xmlns:opf,attr"`
	Titles      []DCTitle        `xml:"dc:title"`
	Creators    []DCCreator      `xml:"dc:creator"`
	Languages   []DCLanguage     `xml:"dc:language"`
	Identifiers []DCIdentifier   `xml:"dc:identifier"`
	Description *DCDescription   `xml:"dc:description,omitempty"`
	Metas       []DublinCoreMeta `xml:"meta"`
}

type DCTitle struct {
	Value string `xml:",chardata"`
}

type DCIdentifier struct {
	Value  string `xml:",chardata"`
	ID     string `xml:"id,attr,omitempty"`
	Scheme string `xml:"opf:scheme,attr,omitempty"`
}

type DCLanguage struct {
	Value string `xml:",chardata"`
}

type DCCreator struct {
	Value string `xml:",chardata"`
	Role  string `xml:"opf:role,attr,omitempty"`
}

type DCDescription struct {
	Value string `xml:",chardata"`
}

type DublinCoreMeta struct {
	Name    string `xml:"name,attr,omitempty"`
	Content string `xml:"content,attr,omitempty"`
}

type Manifest struct {
	Items []ManifestItem `xml:"item"`
}

type ManifestItem struct {
	ID    string `xml:"id,attr"`
	Link  string `xml:"href,attr"`
	Media string `xml:"media-type,attr"`
}

type Spine struct {
	Toc   string      `xml:"toc,attr,omitempty"`
	Items []SpineItem `xml:"itemref"`
}

type SpineItem struct {
	IDref string `xml:"idref,attr"`
}

type Guide struct {
	Items []GuideItem `xml:"reference"`
}

type GuideItem struct {
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
	Link  string `xml:"href,attr"`
}

// NCX navigation document.
type tocNCX struct {
	XMLName   xml.Name   `xml:"ncx"`
	Xmlns     string     `xml:"xmlns,attr"`
	Version   string     `xml:"version,attr"`
	Lang      string     `xml:"xml:lang,attr"`
	Head      TocNCXHead `xml:"head"`
	DocTitle  string     `xml:"docTitle>text"`
	DocAuthor *NCXText   `xml:"docAuthor,omitempty"`
	NavMap    NavMap     `xml:"navMap"`
}

type NCXText struct {
	Text string `xml:"text"`
}

type TocNCXHead struct {
	Meta []TocNCXHeadMeta `xml:"meta"`
}

type TocNCXHeadMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type NavPoint struct {
	Id        string          `xml:"id,attr"`
	PlayOrder int             `xml:"playOrder,attr"`
	Label     string          `xml:"navLabel>text"`
	Content   NavPointContent `xml:"content"`
}

type NavPointContent struct {
	Src string `xml:"src,attr"`
}

type NavMap struct {
	Points []*NavPoint `xml:"navPoint"`
}

// marshalXML renders v with an XML declaration and an optional doctype.
func marshalXML(v any, doctype string) (string, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	out := xml.Header
	if doctype != "" {
		out += doctype + "\n"
	}
	return out + string(body) + "\n", nil
}
