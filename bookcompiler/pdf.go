package bookcompiler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultPDFTimeout bounds page load plus PDF capture.
const DefaultPDFTimeout = 60 * time.Second

// ErrBrowserUnavailable is returned when no Chrome or Chromium binary is found.
var ErrBrowserUnavailable = errors.New("headless browser not available")

// PDFPrinter turns an HTML document into PDF bytes.
type PDFPrinter interface {
	Print(ctx context.Context, document []byte, opts ExportOptions) ([]byte, error)
}

// browserPaths are well-known install locations, tried in order.
var browserPaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/snap/bin/chromium",
	"/opt/google/chrome/chrome",
	"/headless-shell/headless-shell",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

var browserNames = []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome", "headless-shell"}

// ChromePDF prints with a headless Chrome started per call.
type ChromePDF struct {
	BrowserPath string
	Timeout     time.Duration
}

func NewChromePDF(browserPath string, timeout time.Duration) *ChromePDF {
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &ChromePDF{BrowserPath: browserPath, Timeout: timeout}
}

// FindBrowser returns the configured browser if it exists, otherwise the
// first browser found in the well-known paths or on PATH.
func (c *ChromePDF) FindBrowser() (string, error) {
	if c.BrowserPath != "" {
		if isExecutable(c.BrowserPath) {
			return c.BrowserPath, nil
		}
		return "", fmt.Errorf("%w: %s", ErrBrowserUnavailable, c.BrowserPath)
	}
	for _, p := range browserPaths {
		if isExecutable(p) {
			return p, nil
		}
	}
	for _, name := range browserNames {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", ErrBrowserUnavailable
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Print loads document from a temporary file and captures an A4 PDF with
// one inch margins.
func (c *ChromePDF) Print(ctx context.Context, document []byte, opts ExportOptions) ([]byte, error) {
	browser, err := c.FindBrowser()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp("", "bookster-*.html")
	if err != nil {
		return nil, fmt.Errorf("create temp html: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(document); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp html: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write temp html: %w", err)
	}
	abs, err := filepath.Abs(tmp.Name())
	if err != nil {
		return nil, err
	}
	fileURL := (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(browser),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(1).
				WithMarginBottom(1).
				WithMarginLeft(1).
				WithMarginRight(1)
			if opts.IncludePageNumbers {
				params = params.
					WithDisplayHeaderFooter(true).
					WithHeaderTemplate("<span></span>").
					WithFooterTemplate(`<div style="font-size:9px;width:100%;text-align:center;"><span class="pageNumber"></span></div>`)
			}
			buf, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}
