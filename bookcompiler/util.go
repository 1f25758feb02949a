package bookcompiler

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]+`)
	langInParens = regexp.MustCompile(`\(([A-Za-z]{2,3}(?:-[A-Za-z0-9]{2,8})*)\)`)
	langTag      = regexp.MustCompile(`^[A-Za-z]{2,3}(?:-[A-Za-z0-9]{2,8})*$`)
	unsafeName   = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)
)

// slugify lowercases s and collapses runs of non-alphanumerics to '-'.
func slugify(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// chapterAnchor is the link target for chapter n (1-based).
func chapterAnchor(n int, title string) string {
	anchor := "chapter-" + strconv.Itoa(n)
	if slug := slugify(title); slug != "" {
		anchor += "-" + slug
	}
	return anchor
}

// escape makes text safe for HTML, XHTML and OOXML bodies and attributes.
func escape(s string) string {
	return html.EscapeString(s)
}

// cleanText drops control characters that are not allowed in XML.
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// languageCode derives a BCP 47 code from a free-form tag such as
// "English (EN)". It falls back to "en".
func languageCode(language string) string {
	if m := langInParens.FindStringSubmatch(language); m != nil {
		return strings.ToLower(m[1])
	}
	if t := strings.TrimSpace(language); langTag.MatchString(t) {
		return strings.ToLower(t)
	}
	return "en"
}

// DownloadName builds a human readable file name from a book title and the
// extension of the written file.
func DownloadName(title, ext string) string {
	name := strings.TrimSpace(unsafeName.ReplaceAllString(title, ""))
	name = strings.Join(strings.Fields(name), "_")
	if name == "" {
		name = "book"
	}
	if len(name) > 100 {
		name = name[:100]
	}
	return name + ext
}
