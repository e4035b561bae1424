package proposal

import "embed"

//go:embed templates/*.html
var templateFS embed.FS

// DefaultTemplateName identifies the built-in A4 proposal template
const DefaultTemplateName = "proposal_a4"

// DefaultTemplateHTML returns the built-in A4 proposal template source
func DefaultTemplateHTML() (string, error) {
	content, err := templateFS.ReadFile("templates/proposal_a4.html")
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// DefaultFooterHTML is the Chrome print footer with page numbers.
// Chrome substitutes the pageNumber and totalPages spans at print time.
const DefaultFooterHTML = `<div style="width:100%;font-size:8px;color:#9ca3af;text-align:center;">
Page <span class="pageNumber"></span> of <span class="totalPages"></span>
</div>`
