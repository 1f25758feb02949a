package bookster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type progressor interface {
	UpdateOutput(message string)
}

type nullProgressor struct{}

func (n nullProgressor) UpdateOutput(message string) {}

// Generator drafts chapter outlines and chapter text with a Completer.
type Generator struct {
	llm      Completer
	prompts  PromptStore
	cfg      Config
	progress progressor
}

// NewGenerator returns a Generator. prompts may be nil, in which case the
// built-in templates are always used.
func NewGenerator(llm Completer, prompts PromptStore, cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.OutlineMaxTokens <= 0 {
		cfg.OutlineMaxTokens = def.OutlineMaxTokens
	}
	if cfg.ChapterMaxTokens <= 0 {
		cfg.ChapterMaxTokens = def.ChapterMaxTokens
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	return &Generator{
		llm:      llm,
		prompts:  prompts,
		cfg:      cfg,
		progress: nullProgressor{},
	}
}

// SetProgress installs a sink for human-readable progress messages.
func (g *Generator) SetProgress(p progressor) {
	if p == nil {
		p = nullProgressor{}
	}
	g.progress = p
}

func (g *Generator) complete(ctx context.Context, maxTokens int64, prompt string) (string, error) {
	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}
	return g.llm.Complete(ctx, Completion{
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Prompt:    prompt,
	})
}

// GenerateChapters asks the model for a chapter outline. When the account is
// out of credits it returns demo chapters instead of an error.
func (g *Generator) GenerateChapters(ctx context.Context, details BookDetails) ([]Chapter, error) {
	if err := details.Validate(); err != nil {
		return nil, err
	}
	n := details.ChapterCount()

	tmpl := LoadPromptTemplate(ctx, g.prompts, PromptBookOutline, g.cfg.StoreTimeout)
	prompt := RenderPrompt(tmpl, details.Vars())

	g.progress.UpdateOutput(fmt.Sprintf("Requesting a %d chapter outline for %q", n, details.Title))
	response, err := g.complete(ctx, g.cfg.OutlineMaxTokens, prompt)
	if err != nil {
		if IsCreditExhausted(err) {
			slog.Warn("credit balance exhausted, returning demo chapters", "title", details.Title, "chapters", n)
			g.progress.UpdateOutput("AI credits exhausted, using demo chapters")
			return demoChapters(details, n), nil
		}
		return nil, fmt.Errorf("failed to generate chapters: %w", err)
	}

	chapters, strategy, err := ParseChapters(response, n)
	if err != nil {
		slog.Error("chapter outline could not be parsed", "title", details.Title, "response_len", len(response))
		return nil, fmt.Errorf("failed to generate chapters: %w", err)
	}
	slog.Debug("chapter outline parsed", "title", details.Title, "strategy", strategy, "chapters", len(chapters))
	g.progress.UpdateOutput(fmt.Sprintf("Parsed %d chapters", len(chapters)))
	return chapters, nil
}

// RegenerateChapter writes the full text of one chapter.
func (g *Generator) RegenerateChapter(ctx context.Context, title string, details BookDetails) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fieldError("chapter title")
	}
	if err := details.Validate(); err != nil {
		return "", err
	}

	vars := details.Vars()
	vars["chapterTitle"] = title
	tmpl := LoadPromptTemplate(ctx, g.prompts, PromptChapterGeneration, g.cfg.StoreTimeout)
	prompt := RenderPrompt(tmpl, vars)

	g.progress.UpdateOutput(fmt.Sprintf("Working on: %s", title))
	response, err := g.complete(ctx, g.cfg.ChapterMaxTokens, prompt)
	if err != nil {
		if IsCreditExhausted(err) {
			slog.Warn("credit balance exhausted, returning demo chapter", "chapter", title)
			return demoChapterContent(title, details), nil
		}
		return "", fmt.Errorf("failed to regenerate chapter: %w", err)
	}
	return strings.TrimSpace(response), nil
}
