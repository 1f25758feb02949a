package bookster

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

// PromptKind names one of the editable prompt templates.
type PromptKind string

const (
	PromptBookOutline       PromptKind = "book_outline"
	PromptChapterGeneration PromptKind = "chapter_generation"
)

// Key returns the config-store key holding overrides for the kind.
func (k PromptKind) Key() string {
	return "prompt_" + string(k)
}

// ParsePromptKind accepts either the kind or its store key.
func ParsePromptKind(s string) (PromptKind, bool) {
	s = strings.TrimPrefix(s, "prompt_")
	switch PromptKind(s) {
	case PromptBookOutline, PromptChapterGeneration:
		return PromptKind(s), true
	}
	return "", false
}

const systemPrompt = `You are an experienced non-fiction and fiction author and editor.
You write clear, well structured books for the audience you are given.
Do this without asking for confirmation or direction.`

const fallbackOutlinePrompt = `Create a chapter outline for a book with the following details.

Title: {title}
Subtitle: {subtitle}
Description: {description}
Target audience: {targetAudience}
Tone and style: {toneStyle}
Mission: {mission}
Author: {author}

Write exactly {numberOfChapters} chapters. For each chapter give a title and a
two to three sentence summary of what the chapter covers.

Respond with ONLY a JSON array and no other text, in this exact shape:
[
  {"title": "Chapter title", "content": "Chapter summary"}
]`

const fallbackChapterPrompt = `Write the full text of the chapter "{chapterTitle}" for the book "{title}".

Book description: {description}
Target audience: {targetAudience}
Tone and style: {toneStyle}
Mission: {mission}

Write in plain prose. Separate paragraphs with a blank line.
Do not repeat the chapter title at the start of the text.`

// FallbackTemplate returns the built-in template for kind.
func FallbackTemplate(kind PromptKind) string {
	if kind == PromptChapterGeneration {
		return fallbackChapterPrompt
	}
	return fallbackOutlinePrompt
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// RenderPrompt substitutes every {key} found in vars. Placeholders without a
// matching key are kept as written. Substitution is a single pass, so values
// containing braces are never expanded again.
func RenderPrompt(template string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		if val, ok := vars[match[1:len(match)-1]]; ok {
			return val
		}
		return match
	})
}

// storedPrompt is the shape an override must have in the config store.
type storedPrompt struct {
	Prompt *string `json:"prompt"`
}

// LoadPromptTemplate returns the stored override for kind or the built-in
// template. It never fails: a nil store, a missing key, a value of the wrong
// shape or an unreachable store all give the fallback.
func LoadPromptTemplate(ctx context.Context, store PromptStore, kind PromptKind, timeout time.Duration) string {
	fallback := FallbackTemplate(kind)
	if store == nil {
		return fallback
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	raw, err := store.Get(ctx, kind.Key())
	if err != nil {
		slog.Debug("prompt override unavailable, using built-in template", "key", kind.Key(), "error", err)
		return fallback
	}

	var sp storedPrompt
	if err := json.Unmarshal(raw, &sp); err != nil || sp.Prompt == nil || strings.TrimSpace(*sp.Prompt) == "" {
		slog.Warn("prompt override has unexpected shape, using built-in template", "key", kind.Key())
		return fallback
	}
	return *sp.Prompt
}

// EncodePrompt builds the stored value for a prompt override.
func EncodePrompt(prompt string) ([]byte, error) {
	return json.Marshal(storedPrompt{Prompt: &prompt})
}
