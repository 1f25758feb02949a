package bookcompiler

import (
	"fmt"
)

// renderFunc renders a prepared book. It must not depend on anything but its
// arguments so repeated calls produce identical bytes.
type renderFunc func(m *manuscript, opts ExportOptions) ([]byte, error)

var renderers = map[Format]renderFunc{
	FormatHTML: func(m *manuscript, opts ExportOptions) ([]byte, error) {
		document, err := buildHTML(m, opts)
		return []byte(document), err
	},
	FormatMarkdown: func(m *manuscript, opts ExportOptions) ([]byte, error) {
		return []byte(buildMarkdown(m, opts)), nil
	},
	FormatEPUB: buildEPUB,
	FormatDOCX: buildDOCX,
}

// Render produces one of the formats that need no external process. PDF goes
// through a BookCompiler.
func Render(format Format, book Book, opts ExportOptions) ([]byte, error) {
	render, ok := renderers[format]
	if !ok {
		if format == FormatPDF {
			return nil, fmt.Errorf("pdf output requires a browser; use BookCompiler")
		}
		return nil, &InputError{Field: "format", Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	out, err := render(prepareBook(book), opts)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return out, nil
}
