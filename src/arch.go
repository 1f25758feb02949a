package bookster

import (
	"errors"
	"strconv"
	"time"
)

const (
	// DefaultChapterCount is used when BookDetails.NumberOfChapters is not set.
	DefaultChapterCount = 5
	// MaxChapterCount is the largest outline a caller may request.
	MaxChapterCount = 50
)

// Config holds the LLM settings for a Generator.
type Config struct {
	APIKey           string
	Model            string
	Timeout          time.Duration
	StoreTimeout     time.Duration
	OutlineMaxTokens int64
	ChapterMaxTokens int64
}

// DefaultConfig returns the call budgets used by the web application.
func DefaultConfig() Config {
	return Config{
		Model:            "claude-3-5-sonnet-latest",
		Timeout:          90 * time.Second,
		StoreTimeout:     5 * time.Second,
		OutlineMaxTokens: 4000,
		ChapterMaxTokens: 2000,
	}
}

// BookDetails is the free-form description of a book a user wants drafted.
type BookDetails struct {
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle,omitempty"`
	Description      string `json:"description"`
	TargetAudience   string `json:"targetAudience"`
	ToneStyle        string `json:"toneStyle"`
	Mission          string `json:"mission"`
	Author           string `json:"author"`
	NumberOfChapters int    `json:"numberOfChapters,omitempty"`
}

// ErrMissingField reports a BookDetails value without a title or description.
var ErrMissingField = errors.New("missing required field")

// ErrTooManyChapters reports a NumberOfChapters above MaxChapterCount.
var ErrTooManyChapters = errors.New("numberOfChapters must be at most " + strconv.Itoa(MaxChapterCount))

// Validate checks the fields the prompts cannot do without.
func (d BookDetails) Validate() error {
	if d.Title == "" {
		return fieldError("title")
	}
	if d.Description == "" {
		return fieldError("description")
	}
	if d.NumberOfChapters > MaxChapterCount {
		return ErrTooManyChapters
	}
	return nil
}

func fieldError(field string) error {
	return &missingFieldError{field: field}
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string { return e.field + " is required" }
func (e *missingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// ChapterCount returns the requested number of chapters, capped at
// MaxChapterCount, or DefaultChapterCount.
func (d BookDetails) ChapterCount() int {
	switch {
	case d.NumberOfChapters > MaxChapterCount:
		return MaxChapterCount
	case d.NumberOfChapters > 0:
		return d.NumberOfChapters
	}
	return DefaultChapterCount
}

// Vars returns the variable bag substituted into prompt templates. Every key is present.
func (d BookDetails) Vars() map[string]string {
	return map[string]string{
		"title":            d.Title,
		"subtitle":         d.Subtitle,
		"description":      d.Description,
		"targetAudience":   d.TargetAudience,
		"toneStyle":        d.ToneStyle,
		"mission":          d.Mission,
		"author":           d.Author,
		"numberOfChapters": strconv.Itoa(d.ChapterCount()),
	}
}

// Chapter is one drafted chapter as returned to the wizard.
type Chapter struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	IsExpanded bool   `json:"isExpanded"`
}
