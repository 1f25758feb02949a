package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookster/bookcompiler"
)

type exportArgs struct {
	bookFile    string
	format      string
	outputDir   string
	cover       bool
	toc         bool
	pageNumbers bool
}

var expArgs exportArgs

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a book file",
	Long: `Export a book JSON file as pdf, epub, docx, markdown or html.
Use --format all to write every format at once.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&expArgs.bookFile, "book", "b", "", "JSON file with the book data")
	f.StringVarP(&expArgs.format, "format", "f", "pdf", "pdf, epub, docx, markdown, html or all")
	f.StringVarP(&expArgs.outputDir, "output-path", "o", "", "output directory (default export.dir)")
	f.BoolVar(&expArgs.cover, "cover", true, "include the cover")
	f.BoolVar(&expArgs.toc, "toc", true, "include the table of contents")
	f.BoolVar(&expArgs.pageNumbers, "page-numbers", true, "include page numbers")
	RootCmd.AddCommand(exportCmd)
}

func parseFormats(s string) ([]bookcompiler.Format, error) {
	if strings.EqualFold(strings.TrimSpace(s), "all") {
		return bookcompiler.Formats, nil
	}
	var formats []bookcompiler.Format
	for _, part := range strings.Split(s, ",") {
		f, err := bookcompiler.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	if expArgs.bookFile == "" {
		return fmt.Errorf("--book is required")
	}
	data, err := os.ReadFile(expArgs.bookFile)
	if err != nil {
		return fmt.Errorf("failed to read book: %w", err)
	}
	var book bookcompiler.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return fmt.Errorf("failed to parse book %s: %w", expArgs.bookFile, err)
	}
	formats, err := parseFormats(expArgs.format)
	if err != nil {
		return err
	}

	ec := cfg.Export
	if expArgs.outputDir != "" {
		ec.Dir = expArgs.outputDir
	}
	compiler := newCompiler(ec)
	opts := bookcompiler.ExportOptions{
		IncludeCover:           expArgs.cover,
		IncludeTableOfContents: expArgs.toc,
		IncludePageNumbers:     expArgs.pageNumbers,
	}

	results, err := compiler.CompileAll(cmd.Context(), formats, book, opts)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, res := range results {
		name, note := res.DownloadAs, ""
		if res.Fallback {
			// Keep clear of the plain html export of the same book.
			name = strings.TrimSuffix(name, ".html") + "_print.html"
			note = " (no browser: printable html)"
		}
		final := filepath.Join(ec.Dir, name)
		if err := os.Rename(res.Path, final); err != nil {
			return fmt.Errorf("failed to name export: %w", err)
		}
		fmt.Fprintf(out, "%s\t%s%s\n", res.Format, final, note)
	}
	return nil
}
