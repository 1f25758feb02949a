package bookcompiler

import (
	"testing"
)

func TestStripDuplicateLeadingTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		title   string
		want    string
	}{
		{"plain echo", "My Chapter\n\nBody text.", "My Chapter", "Body text."},
		{"markdown heading", "## My Chapter\n\n\nBody text.", "My Chapter", "Body text."},
		{"six hashes", "###### My Chapter\nBody", "My Chapter", "Body"},
		{"seven hashes kept", "####### My Chapter\nBody", "My Chapter", "####### My Chapter\nBody"},
		{"curly quotes", "“Hello” World\n\nBody", `"Hello" World`, "Body"},
		{"curly title", "\"Hello\" World\n\nBody", "“Hello” World", "Body"},
		{"leading blank lines", "\n\nMy Chapter\n\nBody", "My Chapter", "\n\nBody"},
		{"surrounding spaces", "  My Chapter  \nBody", "My Chapter", "Body"},
		{"different first line", "Intro text\n\nMy Chapter\n\nBody", "My Chapter", "Intro text\n\nMy Chapter\n\nBody"},
		{"beyond five lines", "\n\n\n\n\nMy Chapter\nBody", "My Chapter", "\n\n\n\n\nMy Chapter\nBody"},
		{"prefix only", "My Chapter continues here\nBody", "My Chapter", "My Chapter continues here\nBody"},
		{"only first echo", "My Chapter\n\nMy Chapter\n\nBody", "My Chapter", "My Chapter\n\nBody"},
		{"empty title", "Body", "", "Body"},
		{"title only", "My Chapter", "My Chapter", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripDuplicateLeadingTitle(tt.content, tt.title); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitBlocks(t *testing.T) {
	blocks := SplitBlocks("The Major Changes Ahead\n\nThe weather was nice.\n\n\n\nChanges are The theme.\r\n\r\nline one\nline two")
	want := []Block{
		{SubHeading, "The Major Changes Ahead"},
		{Paragraph, "The weather was nice."},
		{Paragraph, "Changes are The theme."},
		{Paragraph, "line one\nline two"},
	}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("block %d = %+v, want %+v", i, blocks[i], want[i])
		}
	}
}

// The sub-heading rule is a plain prefix/substring match and is easy to trip.
func TestSubHeadingRuleIsNarrow(t *testing.T) {
	cases := map[string]bool{
		"The Major Changes Ahead":        true,
		"The weather was nice.":          false,
		"the Major Changes Ahead":        false,
		"The major changes ahead":        false,
		"The Changes were long and many": true,
		"Theory of Changes":              false,
	}
	for text, want := range cases {
		if got := isSubHeading(text); got != want {
			t.Errorf("isSubHeading(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestSlugAndAnchor(t *testing.T) {
	tests := map[string]string{
		"Intro":                    "intro",
		"Getting Started: Part 1!": "getting-started-part-1",
		"  --Hello,   World--  ":   "hello-world",
		"Ça va?":                   "a-va",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
	if got := chapterAnchor(2, "Intro"); got != "chapter-2-intro" {
		t.Errorf("anchor = %q", got)
	}
	if got := chapterAnchor(3, "!!!"); got != "chapter-3" {
		t.Errorf("anchor = %q", got)
	}
}

func TestLanguageCode(t *testing.T) {
	tests := map[string]string{
		"English (EN)":      "en",
		"Português (pt-BR)": "pt-br",
		"de":                "de",
		"fr-CA":             "fr-ca",
		"Klingon":           "en",
		"":                  "en",
	}
	for in, want := range tests {
		if got := languageCode(in); got != want {
			t.Errorf("languageCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTemplateFallback(t *testing.T) {
	if ResolveTemplateStyle("nonexistent") != ResolveTemplateStyle("original") {
		t.Error("unknown template should resolve to original")
	}
	if ResolveTemplateStyle("") != ResolveTemplateStyle("original") {
		t.Error("empty template should resolve to original")
	}
	seen := map[TemplateStyle]bool{}
	for _, id := range TemplateIDs() {
		s := ResolveTemplateStyle(id)
		if s.ID != id {
			t.Errorf("ResolveTemplateStyle(%q).ID = %q", id, s.ID)
		}
		if seen[s] {
			t.Errorf("template %q duplicates another preset", id)
		}
		seen[s] = true
	}
	if got := ResolveTemplateStyle("MODERN").ID; got != "modern" {
		t.Errorf("case-insensitive lookup gave %q", got)
	}
	if got := ResolveTemplateStyle("modern").PrimaryFont(); got != "Helvetica Neue" {
		t.Errorf("PrimaryFont = %q", got)
	}
}

func TestDownloadName(t *testing.T) {
	if got := DownloadName("My Book: A/B Story?", ".pdf"); got != "My_Book_AB_Story.pdf" {
		t.Errorf("got %q", got)
	}
	if got := DownloadName("///", ".md"); got != "book.md" {
		t.Errorf("got %q", got)
	}
}
