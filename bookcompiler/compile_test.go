package bookcompiler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubPrinter struct {
	data  []byte
	err   error
	calls int
	got   []byte
}

func (s *stubPrinter) Print(ctx context.Context, document []byte, _ ExportOptions) ([]byte, error) {
	s.calls++
	s.got = document
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.data, s.err
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCompileWritesUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	bc := NewBookCompiler(dir, nil)
	ctx := context.Background()

	a, err := bc.Compile(ctx, FormatMarkdown, sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	b, err := bc.Compile(ctx, FormatMarkdown, sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	if a.FileName == b.FileName {
		t.Error("two exports of the same title share a file name")
	}
	if !strings.HasSuffix(a.FileName, ".md") || a.ContentType != "text/markdown; charset=utf-8" {
		t.Errorf("result = %+v", a)
	}
	if a.DownloadAs != "Gardening_for_Beginners.md" {
		t.Errorf("download name = %q", a.DownloadAs)
	}
	names := listDir(t, dir)
	if len(names) != 2 {
		t.Errorf("export dir holds %v", names)
	}
	for _, n := range names {
		if strings.HasPrefix(n, ".export-") {
			t.Errorf("temporary file %s left behind", n)
		}
	}

	f, err := bc.Open(a.FileName)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if len(data) != a.Size || !strings.HasPrefix(string(data), "# Gardening for Beginners") {
		t.Error("written file does not match the result")
	}
}

func TestCompilePDF(t *testing.T) {
	dir := t.TempDir()
	printer := &stubPrinter{data: []byte("%PDF-1.4 fake")}
	bc := NewBookCompiler(dir, printer)

	res, err := bc.Compile(context.Background(), FormatPDF, sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Fallback || !strings.HasSuffix(res.FileName, ".pdf") || res.ContentType != "application/pdf" {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(string(printer.got), `class="chapter"`) || strings.Contains(string(printer.got), "print-instructions") {
		t.Error("printer did not receive the plain html document")
	}
	data, _ := os.ReadFile(res.Path)
	if string(data) != "%PDF-1.4 fake" {
		t.Errorf("pdf file = %q", data)
	}
}

func TestCompilePDFFallsBackToPrintableHTML(t *testing.T) {
	tests := []struct {
		name    string
		printer PDFPrinter
	}{
		{"no printer", nil},
		{"browser missing", &stubPrinter{err: ErrBrowserUnavailable}},
		{"render timeout", &stubPrinter{err: context.DeadlineExceeded}},
		{"real printer without browser", NewChromePDF(filepath.Join(t.TempDir(), "no-chrome"), time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			bc := NewBookCompiler(dir, tt.printer)
			res, err := bc.Compile(context.Background(), FormatPDF, sampleBook(), allOptions)
			if err != nil {
				t.Fatalf("fallback must not fail the export: %v", err)
			}
			if !res.Fallback || !strings.HasSuffix(res.FileName, ".html") || res.Format != FormatPDF {
				t.Errorf("result = %+v", res)
			}
			if res.DownloadAs != "Gardening_for_Beginners.html" {
				t.Errorf("download name = %q", res.DownloadAs)
			}
			data, err := os.ReadFile(filepath.Join(dir, res.FileName))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(data), "print-instructions") {
				t.Error("fallback is not the printable html")
			}
		})
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bc := NewBookCompiler(t.TempDir(), &stubPrinter{})
	if _, err := bc.Compile(ctx, FormatPDF, sampleBook(), allOptions); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCompileRejectsInputBeforeRendering(t *testing.T) {
	dir := t.TempDir()
	printer := &stubPrinter{data: []byte("%PDF")}
	bc := NewBookCompiler(dir, printer)

	_, err := bc.Compile(context.Background(), FormatPDF, Book{Chapters: sampleBook().Chapters}, allOptions)
	var inputErr *InputError
	if !errors.As(err, &inputErr) || inputErr.Field != "title" {
		t.Fatalf("err = %v", err)
	}
	_, err = bc.Compile(context.Background(), Format("odt"), sampleBook(), allOptions)
	if !errors.As(err, &inputErr) || inputErr.Field != "format" {
		t.Fatalf("err = %v", err)
	}
	if printer.calls != 0 {
		t.Error("renderer ran for invalid input")
	}
	if names := listDir(t, dir); len(names) != 0 {
		t.Errorf("files written for invalid input: %v", names)
	}
}

func TestCompileUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	bc := NewBookCompiler(filepath.Join(blocker, "exports"), nil)
	_, err := bc.Compile(context.Background(), FormatHTML, sampleBook(), allOptions)
	if err == nil {
		t.Fatal("expected an error")
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		t.Error("resource failure reported as input error")
	}
}

func TestCompileAll(t *testing.T) {
	dir := t.TempDir()
	bc := NewBookCompiler(dir, &stubPrinter{err: ErrBrowserUnavailable})

	results, err := bc.CompileAll(context.Background(), Formats, sampleBook(), allOptions)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(Formats) {
		t.Fatalf("%d results", len(results))
	}
	for i, res := range results {
		if res.Format != Formats[i] {
			t.Errorf("result %d format = %s, want %s", i, res.Format, Formats[i])
		}
	}
	if names := listDir(t, dir); len(names) != len(Formats) {
		t.Errorf("export dir holds %v", names)
	}

	if _, err := bc.CompileAll(context.Background(), []Format{FormatHTML, "rtf"}, sampleBook(), allOptions); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestOpenRejectsPaths(t *testing.T) {
	bc := NewBookCompiler(t.TempDir(), nil)
	for _, name := range []string{"", "../etc/passwd", "a/b.pdf", ".export-123"} {
		_, err := bc.Open(name)
		var inputErr *InputError
		if !errors.As(err, &inputErr) {
			t.Errorf("Open(%q) err = %v", name, err)
		}
	}
	if _, err := bc.Open("missing.pdf"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not exist", err)
	}
}

func TestChromePDFFindBrowser(t *testing.T) {
	missing := NewChromePDF(filepath.Join(t.TempDir(), "chrome"), 0)
	if _, err := missing.FindBrowser(); !errors.Is(err, ErrBrowserUnavailable) {
		t.Errorf("err = %v", err)
	}
	if missing.Timeout != DefaultPDFTimeout {
		t.Errorf("timeout = %v", missing.Timeout)
	}

	fake := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := NewChromePDF(fake, time.Second).FindBrowser()
	if err != nil || found != fake {
		t.Errorf("FindBrowser = %q, %v", found, err)
	}
}
