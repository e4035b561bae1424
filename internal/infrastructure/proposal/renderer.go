// Package proposal renders client proposal documents as PDF.
package proposal

import (
	"bytes"
	"context"
	"time"
)

// Margins are page margins in millimeters
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// DefaultMargins returns the standard proposal page margins
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 18, Left: 15}
}

// RenderRequest contains the parameters for rendering HTML to PDF
type RenderRequest struct {
	HTML       string
	Title      string
	FooterHTML string
	Landscape  bool
	Margins    Margins
	// Timeout overrides the renderer's default timeout
	Timeout time.Duration
}

// RenderResult contains the output from PDF rendering
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer defines the interface for rendering HTML to PDF
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// estimatePageCount counts page objects in the PDF stream.
// "/Type /Page" also matches the parent "/Type /Pages" object, so that
// count is subtracted back out.
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	parentCount := bytes.Count(pdfData, []byte("/Type /Pages"))
	count = count - parentCount
	return max(count, 1)
}
