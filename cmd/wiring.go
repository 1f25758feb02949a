package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opd-ai/bookster/bookcompiler"
	"github.com/opd-ai/bookster/config"
	bookster "github.com/opd-ai/bookster/src"
)

// newPromptStore opens the configured prompt store behind a short-lived cache.
// The returned close function releases the backing connection.
func newPromptStore(ctx context.Context, pc config.PromptsConfig) (*bookster.CachedStore, func() error, error) {
	noop := func() error { return nil }
	var (
		store   bookster.PromptStore
		closeFn = noop
	)

	switch strings.ToLower(pc.Store) {
	case "", "memory":
		store = bookster.NewMemoryStore()
	case "file":
		fs, err := bookster.NewFileStore(pc.File)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = fs, fs.Close
	case "redis":
		rs, err := bookster.NewRedisStore(ctx, pc.Redis.Addr, pc.Redis.Password, pc.Redis.DB, pc.Redis.Prefix)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = rs, rs.Close
	case "postgres":
		ps, err := bookster.NewPostgresStore(ctx, pc.Postgres.DSN, pc.Postgres.Table)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = ps, ps.Close
	case "http":
		if pc.HTTP.BaseURL == "" {
			return nil, nil, fmt.Errorf("prompts.http.base_url is required for the http store")
		}
		store = bookster.NewHTTPStore(pc.HTTP.BaseURL, pc.HTTP.Token, pc.HTTP.RetryCount)
	default:
		return nil, nil, fmt.Errorf("unknown prompt store %q", pc.Store)
	}

	cached := bookster.NewCachedStore(store, pc.CacheTTL)
	if fs, ok := store.(*bookster.FileStore); ok {
		if err := fs.Watch(cached.Invalidate); err != nil {
			slog.Warn("prompt file will not be reloaded on change", "file", pc.File, "error", err)
		}
	}
	slog.Debug("prompt store ready", "store", pc.Store)
	return cached, closeFn, nil
}

func newGenerator(c *config.Config, prompts bookster.PromptStore) (*bookster.Generator, error) {
	if c.LLM.APIKey == "" {
		return nil, fmt.Errorf("no API key: set CLAUDE_API_KEY or llm.api_key")
	}
	client := bookster.NewClaudeClient(c.LLM.APIKey, c.LLM.Model)
	return bookster.NewGenerator(client, prompts, bookster.Config{
		APIKey:           c.LLM.APIKey,
		Model:            c.LLM.Model,
		Timeout:          c.LLM.Timeout,
		StoreTimeout:     c.Prompts.Timeout,
		OutlineMaxTokens: c.LLM.OutlineMaxTokens,
		ChapterMaxTokens: c.LLM.ChapterMaxTokens,
	}), nil
}

func newCompiler(ec config.ExportConfig) *bookcompiler.BookCompiler {
	return bookcompiler.NewBookCompiler(ec.Dir, bookcompiler.NewChromePDF(ec.BrowserPath, ec.PDFTimeout))
}
