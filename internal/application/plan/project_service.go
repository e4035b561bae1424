package plan

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/partner"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/infrastructure/logger"
	"github.com/homeops/backend/internal/infrastructure/telemetry"
)

// ProjectService handles project operations. Projects reference clients by
// ID and snapshot the client name at creation time, so later client renames
// do not rewrite history. The idempotency store and metrics are optional.
type ProjectService struct {
	projectRepo plan.ProjectRepository
	bsRepo      plan.BuildSystemRepository
	deviceRepo  catalog.DeviceRepository
	clientRepo  partner.ClientRepository
	idempotency shared.IdempotencyStore
	metrics     *telemetry.BusinessMetrics
}

// NewProjectService creates a new ProjectService
func NewProjectService(
	projectRepo plan.ProjectRepository,
	bsRepo plan.BuildSystemRepository,
	deviceRepo catalog.DeviceRepository,
	clientRepo partner.ClientRepository,
	idempotency shared.IdempotencyStore,
	metrics *telemetry.BusinessMetrics,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		bsRepo:      bsRepo,
		deviceRepo:  deviceRepo,
		clientRepo:  clientRepo,
		idempotency: idempotency,
		metrics:     metrics,
	}
}

// Create creates a draft project for a client, optionally with an initial tree
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrClientID, req.ClientID.String())

	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = shared.NewDomainError("INVALID_CLIENT", "Client does not exist")
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !client.IsActive {
		err := shared.NewDomainError("INVALID_CLIENT", "Cannot create a project for an inactive client")
		telemetry.RecordError(span, err)
		return nil, err
	}

	project, err := plan.NewProject(req.Name, req.Description, client.ID, client.Name, req.CreatedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tree, err := s.buildTree(ctx, project.ID, req.Locations)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := project.ReplaceTree(tree); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordProjectCreated(ctx, project.Status.String())
		s.metrics.RecordProjectValue(ctx, project.Status.String(), project.TotalCost)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, project.ID.String(),
		telemetry.SpanAttrLocationCount, int64(tree.Size()),
		telemetry.SpanAttrTotalCost, project.TotalCost.String(),
	)

	response := ToProjectResponse(project)
	return &response, nil
}

// GetByID retrieves a project with its full tree and rollups
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProjectResponse(project)
	return &response, nil
}

// List retrieves projects with filtering and pagination, trees omitted.
// A client_id filter narrows the listing to one client's projects.
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) ([]ProjectSummary, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		projects []plan.Project
		err      error
	)
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
		projects, err = s.projectRepo.FindByClient(ctx, *filter.ClientID, domainFilter)
	} else {
		projects, err = s.projectRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.projectRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]ProjectSummary, 0, len(projects))
	for i := range projects {
		summaries = append(summaries, ToProjectSummary(&projects[i]))
	}
	return summaries, total, nil
}

// Update renames a project and replaces its whole location tree. Terminal
// projects reject tree changes.
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProjectID, id.String())

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	name := project.Name
	description := project.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := project.Rename(name, description); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tree, err := s.buildTree(ctx, project.ID, req.Locations)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := project.ReplaceTree(tree); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToProjectResponse(project)
	return &response, nil
}

// UpdateStatus moves a project along its lifecycle
func (s *ProjectService) UpdateStatus(ctx context.Context, id uuid.UUID, req UpdateStatusRequest) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "update_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrProjectStatus, req.Status,
	)

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := project.TransitionTo(plan.ProjectStatus(req.Status)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToProjectResponse(project)
	return &response, nil
}

// Clone copies a project and its whole tree as a new draft for the same
// client. A non-empty idempotency key rejects replayed requests.
func (s *ProjectService) Clone(ctx context.Context, id uuid.UUID, req CloneRequest, idempotencyKey string) (*ProjectResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "clone")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrProjectID, id.String())

	if err := claimIdempotencyKey(ctx, s.idempotency, idempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	clone, err := project.Clone(req.Name, req.CreatedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, clone); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordProjectCreated(ctx, clone.Status.String())
		s.metrics.RecordProjectValue(ctx, clone.Status.String(), clone.TotalCost)
	}

	response := ToProjectResponse(clone)
	return &response, nil
}

// Import copies an active build system's tree into a project, mapping
// source root locations onto target locations by name. A non-empty
// idempotency key rejects replayed requests.
func (s *ProjectService) Import(ctx context.Context, id uuid.UUID, req ImportRequest, idempotencyKey string) (*ImportResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "project", "import")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrProjectID, id.String(),
		telemetry.SpanAttrBuildSystemID, req.BuildSystemID.String(),
	)

	if err := claimIdempotencyKey(ctx, s.idempotency, idempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bs, err := s.bsRepo.FindByID(ctx, req.BuildSystemID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			err = shared.NewDomainError("INVALID_INPUT", "Build system does not exist")
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	mapping := make(map[uuid.UUID]string, len(req.LocationMapping))
	for _, entry := range req.LocationMapping {
		mapping[entry.SourceLocationID] = entry.TargetLocationName
	}

	result, err := project.ImportBuildSystem(bs, mapping)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, project); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPlanImport(ctx)
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLocationCount, int64(result.ImportedLocations),
		telemetry.SpanAttrTotalCost, result.NewTotal.String(),
	)

	return &ImportResponse{
		ImportedLocations: result.ImportedLocations,
		CostDelta:         result.CostDelta,
		NewTotal:          result.NewTotal,
	}, nil
}

// Delete removes a project, its locations, and its line items
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.projectRepo.Delete(ctx, id)
}

func (s *ProjectService) buildTree(ctx context.Context, aggregateID uuid.UUID, locations []LocationRequest) (*plan.Tree, error) {
	devices, err := resolveDevices(ctx, s.deviceRepo, locations)
	if err != nil {
		return nil, err
	}
	return plan.BuildTree(aggregateID, plan.KindProject, toLocationInputs(locations), devices)
}

// save reconciles the cached total against the tree about to be persisted
// and aborts the write on a mismatch
func (s *ProjectService) save(ctx context.Context, p *plan.Project) error {
	if m := plan.Reconcile(p.Tree(), p.TotalCost, plan.ReconcileEpsilon); m != nil {
		logger.L(ctx).Error("Aborting project save on total cost mismatch",
			zap.String("project_id", p.ID.String()),
			zap.String("expected", m.Expected.String()),
			zap.String("actual", m.Actual.String()),
			zap.String("delta", m.Delta.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordCostMismatch(ctx, string(plan.KindProject), p.ID)
		}
		return shared.ErrTotalMismatch
	}
	return s.projectRepo.Save(ctx, p)
}
