package bookcompiler

import (
	"strings"
)

// titleScanLines bounds how far into a chapter a duplicated title is looked for.
const titleScanLines = 5

var quoteNormalizer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'", "‚", "'",
)

func normalizeQuotes(s string) string {
	return quoteNormalizer.Replace(s)
}

// StripDuplicateLeadingTitle removes an echoed chapter title from the start
// of content, together with the blank lines after it. The title may appear
// as-is or as a Markdown heading.
func StripDuplicateLeadingTitle(content, title string) string {
	want := strings.TrimSpace(normalizeQuotes(title))
	if want == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines) && i < titleScanLines; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if !isTitleLine(line, want) {
			return content
		}
		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		kept := append(lines[:i:i], lines[j:]...)
		return strings.Join(kept, "\n")
	}
	return content
}

func isTitleLine(line, title string) bool {
	line = normalizeQuotes(line)
	if line == title {
		return true
	}
	hashes := len(line) - len(strings.TrimLeft(line, "#"))
	if hashes < 1 || hashes > 6 {
		return false
	}
	return strings.TrimSpace(line[hashes:]) == title
}

// BlockKind tells prose renderers how to present a block.
type BlockKind int

const (
	Paragraph BlockKind = iota
	SubHeading
)

// Block is one paragraph or sub-heading of a chapter.
type Block struct {
	Kind BlockKind
	Text string
}

// Lines splits the block on single newlines.
func (b Block) Lines() []string {
	return strings.Split(b.Text, "\n")
}

// SplitBlocks splits chapter content on blank lines.
func SplitBlocks(content string) []Block {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var blocks []Block
	for _, p := range strings.Split(content, "\n\n") {
		text := strings.TrimSpace(p)
		if text == "" {
			continue
		}
		kind := Paragraph
		if isSubHeading(text) {
			kind = SubHeading
		}
		blocks = append(blocks, Block{Kind: kind, Text: text})
	}
	return blocks
}

// isSubHeading matches the "The ... Changes ..." section titles some prompts
// produce. It is a narrow rule and matches nothing else.
func isSubHeading(text string) bool {
	return strings.HasPrefix(text, "The ") && strings.Contains(text, "Changes")
}
