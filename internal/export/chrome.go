package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 in inches.
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// Chrome renders pages with a headless Chrome started per call.
type Chrome struct {
	execPath string
	timeout  time.Duration
}

// NewChrome returns a Chrome renderer. An empty execPath lets chromedp find
// the browser on PATH.
func NewChrome(execPath string) *Chrome {
	return &Chrome{execPath: execPath, timeout: 60 * time.Second}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(794, 1123),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}
	return opts
}

// Render loads html from a temporary file and prints or captures #resume.
func (c *Chrome) Render(ctx context.Context, html []byte, format Format) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "resume-export-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, c.timeout)
	defer cancelRun()

	var out []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("file://" + htmlPath),
		chromedp.WaitReady("#resume", chromedp.ByQuery),
	}
	switch format {
	case FormatPDF:
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			out, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4WidthInches).
				WithPaperHeight(a4HeightInches).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}))
	case FormatPNG:
		tasks = append(tasks, chromedp.Screenshot("#resume", &out, chromedp.ByQuery))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return nil, fmt.Errorf("chrome %s export: %w", format, err)
	}
	return out, nil
}

var _ Renderer = (*Chrome)(nil)
