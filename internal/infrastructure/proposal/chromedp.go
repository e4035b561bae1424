package proposal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0

	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// ChromedpConfig contains configuration for the chromedp renderer
type ChromedpConfig struct {
	// DefaultTimeout for rendering operations
	DefaultTimeout time.Duration
	// RemoteURL is the URL of a remote Chrome/Chromium instance.
	// If empty, chromedp launches a local browser.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox, required for Docker/root
	NoSandbox bool
	// Scale for rendering (default: 1.0)
	Scale  float64
	Logger *zap.Logger
}

// ChromedpRenderer renders HTML to PDF using the Chrome DevTools Protocol
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromedpRenderer creates a new chromedp-based PDF renderer
func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	if config == nil {
		config = &ChromedpConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	if config.Scale == 0 {
		config.Scale = defaultScale
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	renderer := &ChromedpRenderer{
		config: config,
		logger: logger,
	}
	renderer.initAllocator()

	return renderer, nil
}

func (r *ChromedpRenderer) initAllocator() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)

	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	}
}

// Render converts HTML content to an A4 PDF document
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	}
	if strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	startTime := time.Now()

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	html := buildCompleteHTML(req)
	params := r.buildPrintParams(req)

	var pdfData []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(params.marginTop).
				WithMarginRight(params.marginRight).
				WithMarginBottom(params.marginBottom).
				WithMarginLeft(params.marginLeft).
				WithScale(params.scale).
				WithLandscape(params.landscape).
				WithDisplayHeaderFooter(params.displayHeaderFooter).
				WithFooterTemplate(params.footerTemplate).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, NewRenderError(ErrCodeRenderTimeout,
				fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
		}
		if ctx.Err() == context.Canceled {
			return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
		}

		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chromedp execution failed: "+err.Error(), err)
	}

	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	renderDuration := time.Since(startTime)
	pageCount := estimatePageCount(pdfData)

	r.logger.Info("Proposal PDF rendered",
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", pageCount),
		zap.Duration("duration", renderDuration))

	return &RenderResult{
		PDFData:        pdfData,
		PageCount:      pageCount,
		RenderDuration: renderDuration,
	}, nil
}

type printParams struct {
	paperWidth          float64
	paperHeight         float64
	marginTop           float64
	marginRight         float64
	marginBottom        float64
	marginLeft          float64
	scale               float64
	landscape           bool
	displayHeaderFooter bool
	footerTemplate      string
}

func (r *ChromedpRenderer) buildPrintParams(req *RenderRequest) *printParams {
	margins := req.Margins
	if margins == (Margins{}) {
		margins = DefaultMargins()
	}

	params := &printParams{
		paperWidth:   mmToInches(a4WidthMM),
		paperHeight:  mmToInches(a4HeightMM),
		marginTop:    mmToInches(margins.Top),
		marginRight:  mmToInches(margins.Right),
		marginBottom: mmToInches(margins.Bottom),
		marginLeft:   mmToInches(margins.Left),
		scale:        r.config.Scale,
		landscape:    req.Landscape,
	}

	if req.FooterHTML != "" {
		params.displayHeaderFooter = true
		params.footerTemplate = req.FooterHTML
		if params.marginBottom < mmToInches(10) {
			params.marginBottom = mmToInches(10)
		}
	}

	return params
}

// buildCompleteHTML wraps bare fragments in a full document
func buildCompleteHTML(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	b.WriteString(`<meta charset="UTF-8">`)
	if req.Title != "" {
		b.WriteString("<title>")
		b.WriteString(req.Title)
		b.WriteString("</title>")
	}
	b.WriteString("</head><body>")
	b.WriteString(req.HTML)
	b.WriteString("</body></html>")

	return b.String()
}

// Close releases resources held by the renderer
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
