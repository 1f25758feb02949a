package bookcompiler

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CompileAll writes the book in every requested format concurrently. Results
// are in the order of formats. The first failure cancels the rest.
func (bc *BookCompiler) CompileAll(ctx context.Context, formats []Format, book Book, opts ExportOptions) ([]*Result, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	for _, f := range formats {
		if _, err := ParseFormat(string(f)); err != nil {
			return nil, err
		}
	}

	results := make([]*Result, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		i, f := i, f
		g.Go(func() error {
			res, err := bc.Compile(ctx, f, book, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
