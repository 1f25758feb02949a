package bookster

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparseableChapters is returned when no strategy recovers chapters from a reply.
var ErrUnparseableChapters = errors.New("could not parse chapter data")

var (
	fencePattern    = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)```")
	trailingComma   = regexp.MustCompile(`,\s*([}\]])`)
	chapterHeadings = regexp.MustCompile(`(?im)^[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*)?[ \t]*chapter[ \t]+(\d+)[ \t]*[:.\-–—][ \t]*(.+?)[ \t]*(?:\*\*)?[ \t]*$`)

	// Array passes, strictest first.
	arrayPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)^\s*(\[.*\])\s*$`),
		regexp.MustCompile(`(?s)(\[\s*\{.*\}\s*\])`),
		regexp.MustCompile(`(?s)(\[.*\])`),
	}

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "«", `"`, "»", `"`,
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
	)
)

// chapterStrategy is one rung of the parsing ladder.
type chapterStrategy struct {
	name  string
	parse func(text string, limit int) ([]Chapter, error)
}

// chapterStrategies are tried in order; the first success wins.
var chapterStrategies = []chapterStrategy{
	{name: "fenced", parse: parseFenced},
	{name: "array", parse: parseArray},
	{name: "repaired", parse: parseRepaired},
	{name: "headings", parse: parseHeadings},
}

// ParseChapters extracts chapters from an LLM reply. limit caps the heading
// heuristic. The returned chapters have ids and only the first is expanded.
func ParseChapters(text string, limit int) ([]Chapter, string, error) {
	for _, s := range chapterStrategies {
		chapters, err := s.parse(text, limit)
		if err != nil || len(chapters) == 0 {
			continue
		}
		return finalizeChapters(chapters), s.name, nil
	}
	return nil, "", ErrUnparseableChapters
}

func finalizeChapters(chapters []Chapter) []Chapter {
	for i := range chapters {
		if chapters[i].ID == "" {
			chapters[i].ID = strconv.Itoa(i + 1)
		}
		chapters[i].IsExpanded = i == 0
	}
	return chapters
}

func fencedBlocks(text string) []string {
	var blocks []string
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body)
		}
	}
	return blocks
}

func parseFenced(text string, _ int) ([]Chapter, error) {
	for _, block := range fencedBlocks(text) {
		if chapters, err := decodeChapters(block); err == nil {
			return chapters, nil
		}
	}
	return nil, errors.New("no fenced JSON array")
}

// arrayCandidates returns the strings the array passes match, strictest first,
// followed by every bracket-balanced array.
func arrayCandidates(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, re := range arrayPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			add(m[1])
		}
	}
	for _, a := range balancedArrays(text) {
		add(a)
	}
	return out
}

func parseArray(text string, _ int) ([]Chapter, error) {
	for _, candidate := range arrayCandidates(text) {
		if chapters, err := decodeChapters(candidate); err == nil {
			return chapters, nil
		}
	}
	return nil, errors.New("no JSON array")
}

func parseRepaired(text string, _ int) ([]Chapter, error) {
	candidates := fencedBlocks(text)
	for _, block := range candidates {
		candidates = append(candidates, arrayCandidates(block)...)
	}
	candidates = append(candidates, arrayCandidates(quoteReplacer.Replace(text))...)
	candidates = append(candidates, arrayCandidates(text)...)

	for _, candidate := range candidates {
		if chapters, err := decodeChapters(repairJSON(candidate)); err == nil {
			return chapters, nil
		}
	}
	return nil, errors.New("repair failed")
}

// repairJSON normalises smart quotes and drops trailing commas.
func repairJSON(s string) string {
	s = quoteReplacer.Replace(s)
	return trailingComma.ReplaceAllString(s, "$1")
}

func parseHeadings(text string, limit int) ([]Chapter, error) {
	var chapters []Chapter
	for _, m := range chapterHeadings.FindAllStringSubmatch(text, -1) {
		title := strings.TrimSpace(strings.Trim(m[2], "*#"))
		if title == "" {
			continue
		}
		chapters = append(chapters, Chapter{Title: title})
		if limit > 0 && len(chapters) == limit {
			break
		}
	}
	if len(chapters) == 0 {
		return nil, errors.New("no chapter headings")
	}
	return chapters, nil
}

// balancedArrays returns every top-level [...] whose brackets balance, in
// order of appearance. Brackets inside JSON strings are ignored.
func balancedArrays(text string) []string {
	var arrays []string
	start := strings.IndexByte(text, '[')
	for start >= 0 {
		end := balancedEnd(text, start)
		if end < 0 {
			next := strings.IndexByte(text[start+1:], '[')
			if next < 0 {
				break
			}
			start += next + 1
			continue
		}
		arrays = append(arrays, text[start:end])
		next := strings.IndexByte(text[end:], '[')
		if next < 0 {
			break
		}
		start = end + next
	}
	return arrays
}

// balancedEnd returns the index just past the ']' closing the array that opens
// at start, or -1 when the brackets do not balance.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				if c == ']' {
					return i + 1
				}
				return -1
			}
		}
	}
	return -1
}

// decodeChapters parses a JSON array and coerces each element into a Chapter.
// Elements without a usable title are dropped.
func decodeChapters(s string) ([]Chapter, error) {
	var items []map[string]any
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}

	chapters := make([]Chapter, 0, len(items))
	for _, item := range items {
		title := stringField(item, "title", "name", "chapterTitle")
		if title == "" {
			continue
		}
		chapters = append(chapters, Chapter{
			ID:      stringField(item, "id"),
			Title:   title,
			Content: stringField(item, "content", "description", "summary"),
		})
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("array holds no chapters")
	}
	return chapters, nil
}

func stringField(item map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
