package bookster

import (
	"fmt"
	"strconv"
	"strings"
)

// creditExhaustedPhrase is the marker the Anthropic API uses when an account
// has no balance left.
const creditExhaustedPhrase = "credit balance is too low"

// IsCreditExhausted reports whether err is a quota/credit exhaustion failure.
func IsCreditExhausted(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), creditExhaustedPhrase)
}

var demoChapterThemes = []string{
	"Getting Started",
	"Core Ideas",
	"Putting It Into Practice",
	"Common Pitfalls",
	"Going Further",
	"Case Studies",
	"Tools and Resources",
	"Looking Ahead",
}

// demoChapters synthesises n placeholder chapters for a book.
func demoChapters(details BookDetails, n int) []Chapter {
	chapters := make([]Chapter, n)
	for i := range chapters {
		k := i + 1
		theme := demoChapterThemes[i%len(demoChapterThemes)]
		chapters[i] = Chapter{
			ID:    strconv.Itoa(k),
			Title: fmt.Sprintf("Demo Chapter %d: %s", k, theme),
			Content: fmt.Sprintf("This is demo content for chapter %d of %q. "+
				"The AI service is currently unavailable, so this placeholder outline "+
				"lets you continue through the book builder.", k, details.Title),
			IsExpanded: i == 0,
		}
	}
	return chapters
}

// demoChapterContent is returned by RegenerateChapter when credits run out.
func demoChapterContent(title string, details BookDetails) string {
	audience := details.TargetAudience
	if audience == "" {
		audience = "general readers"
	}
	paragraphs := []string{
		fmt.Sprintf("[Demo Content] This is placeholder text for the chapter %q.", title),
		fmt.Sprintf("The AI writing service is unavailable because the account's credit balance is too low. "+
			"When it is available again, this chapter will be written for %s.", audience),
		"Until then you can edit this text by hand, change the template, or export the book to check its layout.",
	}
	return strings.Join(paragraphs, "\n\n")
}
