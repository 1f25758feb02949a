package bookcompiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Result describes one written export.
type Result struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	Path        string `json:"-"`
	Format      Format `json:"format"`
	Title       string `json:"title"`
	DownloadAs  string `json:"downloadAs"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	// Fallback is set when a PDF was requested but printable HTML was written.
	Fallback bool `json:"fallback"`
}

// BookCompiler renders books and writes them into OutputDir under generated
// names.
type BookCompiler struct {
	OutputDir string
	pdf       PDFPrinter
	newID     func() string
}

// NewBookCompiler creates a new instance of BookCompiler. pdf may be nil, in
// which case PDF requests always produce printable HTML.
func NewBookCompiler(outputDir string, pdf PDFPrinter) *BookCompiler {
	return &BookCompiler{
		OutputDir: outputDir,
		pdf:       pdf,
		newID:     func() string { return uuid.NewString() },
	}
}

// Compile validates book, renders it and writes the file atomically.
func (bc *BookCompiler) Compile(ctx context.Context, format Format, book Book, opts ExportOptions) (*Result, error) {
	format, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}
	if err := ValidateBook(book); err != nil {
		return nil, err
	}

	data, ext, fallback, err := bc.render(ctx, format, book, opts)
	if err != nil {
		return nil, err
	}

	id := bc.newID()
	name := id + ext
	path, err := bc.writeFile(name, data)
	if err != nil {
		return nil, err
	}
	slog.Info("export written", "format", format, "file", name, "bytes", len(data), "fallback", fallback)
	return &Result{
		ID:          id,
		FileName:    name,
		Path:        path,
		Format:      format,
		Title:       book.Title,
		DownloadAs:  DownloadName(book.Title, ext),
		ContentType: ContentType(name),
		Size:        len(data),
		Fallback:    fallback,
	}, nil
}

func (bc *BookCompiler) render(ctx context.Context, format Format, book Book, opts ExportOptions) ([]byte, string, bool, error) {
	if format != FormatPDF {
		data, err := Render(format, book, opts)
		return data, format.Extension(), false, err
	}

	m := prepareBook(book)
	document, err := buildHTML(m, opts)
	if err != nil {
		return nil, "", false, err
	}
	if bc.pdf != nil {
		pdf, err := bc.pdf.Print(ctx, []byte(document), opts)
		if err == nil {
			return pdf, FormatPDF.Extension(), false, nil
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, "", false, ctx.Err()
		}
		slog.Warn("pdf rendering failed, writing printable html", "title", book.Title, "error", err)
	} else {
		slog.Warn("no pdf printer configured, writing printable html", "title", book.Title)
	}

	printable, err := addPrintBanner(document)
	if err != nil {
		return nil, "", false, fmt.Errorf("render printable html: %w", err)
	}
	return printable, FormatHTML.Extension(), true, nil
}

// writeFile writes data to a temporary file in OutputDir and renames it into
// place so readers never see a partial export.
func (bc *BookCompiler) writeFile(name string, data []byte) (string, error) {
	if err := os.MkdirAll(bc.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(bc.OutputDir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("write export file: %w", err)
	}
	path := filepath.Join(bc.OutputDir, name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("move export file: %w", err)
	}
	return path, nil
}

// Open opens a previously written export. name must be a bare file name.
func (bc *BookCompiler) Open(name string) (*os.File, error) {
	if !validName(name) {
		return nil, &InputError{Field: "file", Message: "invalid file name"}
	}
	return os.Open(filepath.Join(bc.OutputDir, name))
}

// Remove deletes a previously written export. A missing file is not an error.
func (bc *BookCompiler) Remove(name string) error {
	if !validName(name) {
		return &InputError{Field: "file", Message: "invalid file name"}
	}
	err := os.Remove(filepath.Join(bc.OutputDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove export: %w", err)
	}
	return nil
}

func validName(name string) bool {
	return name != "" && filepath.Base(name) == name && name[0] != '.'
}
