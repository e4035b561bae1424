// Package proposal implements the application service that turns a project
// into a client-facing PDF proposal document.
package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/infrastructure/logger"
	"github.com/homeops/backend/internal/infrastructure/proposal"
	"github.com/homeops/backend/internal/infrastructure/telemetry"
)

// GeneratedProposal is a rendered proposal ready to be served as a download
type GeneratedProposal struct {
	Filename    string
	ContentType string
	PDFData     []byte
	PageCount   int
	GeneratedAt time.Time
}

// ProposalService renders proposal PDFs for projects. The client record is
// best-effort enrichment; a project whose client row has since been deleted
// still renders using the snapshotted client name. Metrics are optional.
type ProposalService struct {
	projectRepo plan.ProjectRepository
	clientRepo  partner.ClientRepository
	renderer    proposal.PDFRenderer
	engine      *proposal.TemplateEngine
	company     proposal.CompanyInfo
	metrics     *telemetry.BusinessMetrics
}

// NewProposalService creates a new ProposalService
func NewProposalService(
	projectRepo plan.ProjectRepository,
	clientRepo partner.ClientRepository,
	renderer proposal.PDFRenderer,
	company proposal.CompanyInfo,
	metrics *telemetry.BusinessMetrics,
) *ProposalService {
	return &ProposalService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
		renderer:    renderer,
		engine:      proposal.NewTemplateEngine(),
		company:     company,
		metrics:     metrics,
	}
}

// Generate renders the proposal PDF for a project
func (s *ProposalService) Generate(ctx context.Context, projectID uuid.UUID) (*GeneratedProposal, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "proposal", "generate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProjectID, projectID.String())

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	client, err := s.clientRepo.FindByID(ctx, project.ClientID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		logger.L(ctx).Warn("Rendering proposal without client record",
			zap.String("project_id", project.ID.String()),
			zap.String("client_id", project.ClientID.String()),
		)
		client = nil
	}

	doc := proposal.BuildDocument(project, client, s.company)

	templateHTML, err := proposal.DefaultTemplateHTML()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	html, err := s.engine.Render(proposal.DefaultTemplateName, templateHTML, doc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &proposal.RenderRequest{
		HTML:       html,
		Title:      doc.Title,
		FooterHTML: proposal.DefaultFooterHTML,
		Margins:    proposal.DefaultMargins(),
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordProposalRendered(ctx, result.RenderDuration)
	}

	logger.L(ctx).Info("Proposal rendered",
		zap.String("project_id", project.ID.String()),
		zap.Int("page_count", result.PageCount),
		zap.Duration("render_duration", result.RenderDuration),
	)

	return &GeneratedProposal{
		Filename:    proposalFilename(project),
		ContentType: "application/pdf",
		PDFData:     result.PDFData,
		PageCount:   result.PageCount,
		GeneratedAt: doc.GeneratedAt,
	}, nil
}

// proposalFilename derives a safe download name from the project name
func proposalFilename(p *plan.Project) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, p.Name)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "project"
	}
	return fmt.Sprintf("proposal-%s-%s.pdf", slug, time.Now().Format("2006-01-02"))
}
