package bookcompiler

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const printBannerCSS = `.print-instructions {
  font-family: Arial, Helvetica, sans-serif;
  background: #fff8dc;
  border: 2px solid #e0c068;
  border-radius: 6px;
  color: #333333;
  margin: 1em auto;
  max-width: 8.5in;
  padding: 1em 1.5em;
}
.print-instructions h2 {
  color: #8a6d00;
  margin-top: 0;
}
@media print {
  .print-instructions {
    display: none !important;
  }
}
`

const printBanner = `<div class="print-instructions" role="note">
<h2>Save this book as a PDF</h2>
<p>PDF rendering is not available on the server, so this printable version was generated instead.</p>
<ol>
<li>Open your browser's print dialog (Ctrl+P, or Cmd+P on a Mac).</li>
<li>Choose "Save as PDF" as the destination.</li>
<li>Set the paper size to A4 and enable "Background graphics".</li>
<li>Click Save. This box is not included in the printed pages.</li>
</ol>
</div>`

// addPrintBanner injects the on-screen print instructions into an HTML
// document produced by buildHTML.
func addPrintBanner(document string) ([]byte, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("head").AppendHtml("<style>\n" + printBannerCSS + "</style>")
	doc.Find("body").PrependHtml(printBanner)

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("render printable html: %w", err)
	}
	return []byte(out), nil
}

// RenderPrintableHTML renders the HTML document with manual print-to-PDF
// instructions. It is the PDF fallback.
func RenderPrintableHTML(book Book, opts ExportOptions) ([]byte, error) {
	if err := ValidateBook(book); err != nil {
		return nil, err
	}
	document, err := buildHTML(prepareBook(book), opts)
	if err != nil {
		return nil, err
	}
	return addPrintBanner(document)
}
