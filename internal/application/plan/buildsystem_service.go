// Package plan implements application services for build system templates
// and client projects, the aggregates that own location trees.
package plan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homeops/backend/internal/domain/catalog"
	"github.com/homeops/backend/internal/domain/plan"
	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/infrastructure/logger"
	"github.com/homeops/backend/internal/infrastructure/telemetry"
)

// idempotencyTTL bounds how long a clone or import key blocks replays
const idempotencyTTL = 24 * time.Hour

// BuildSystemService handles build system template operations.
// The idempotency store and metrics are optional; a nil store disables
// replay protection and nil metrics disable counters.
type BuildSystemService struct {
	bsRepo      plan.BuildSystemRepository
	deviceRepo  catalog.DeviceRepository
	idempotency shared.IdempotencyStore
	metrics     *telemetry.BusinessMetrics
}

// NewBuildSystemService creates a new BuildSystemService
func NewBuildSystemService(
	bsRepo plan.BuildSystemRepository,
	deviceRepo catalog.DeviceRepository,
	idempotency shared.IdempotencyStore,
	metrics *telemetry.BusinessMetrics,
) *BuildSystemService {
	return &BuildSystemService{
		bsRepo:      bsRepo,
		deviceRepo:  deviceRepo,
		idempotency: idempotency,
		metrics:     metrics,
	}
}

// Create creates a build system template, optionally with an initial tree
func (s *BuildSystemService) Create(ctx context.Context, req CreateBuildSystemRequest) (*BuildSystemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "build_system", "create")
	defer span.End()

	bs, err := plan.NewBuildSystem(req.Name, req.Description, req.CreatedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tree, err := s.buildTree(ctx, bs.ID, req.Locations)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	bs.ReplaceTree(tree)

	if err := s.save(ctx, bs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrBuildSystemID, bs.ID.String(),
		telemetry.SpanAttrLocationCount, int64(tree.Size()),
		telemetry.SpanAttrTotalCost, bs.TotalCost.String(),
	)

	response := ToBuildSystemResponse(bs)
	return &response, nil
}

// GetByID retrieves a build system with its full tree and rollups
func (s *BuildSystemService) GetByID(ctx context.Context, id uuid.UUID) (*BuildSystemResponse, error) {
	bs, err := s.bsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToBuildSystemResponse(bs)
	return &response, nil
}

// List retrieves build systems with filtering and pagination, trees omitted
func (s *BuildSystemService) List(ctx context.Context, filter BuildSystemListFilter) ([]BuildSystemSummary, int64, error) {
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
	if filter.IsActive != nil {
		domainFilter.Filters["is_active"] = *filter.IsActive
	}

	systems, err := s.bsRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.bsRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]BuildSystemSummary, 0, len(systems))
	for i := range systems {
		summaries = append(summaries, ToBuildSystemSummary(&systems[i]))
	}
	return summaries, total, nil
}

// Update renames a build system and replaces its whole location tree
func (s *BuildSystemService) Update(ctx context.Context, id uuid.UUID, req UpdateBuildSystemRequest) (*BuildSystemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "build_system", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBuildSystemID, id.String())

	bs, err := s.bsRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	name := bs.Name
	description := bs.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := bs.Rename(name, description); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tree, err := s.buildTree(ctx, bs.ID, req.Locations)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	bs.ReplaceTree(tree)

	if err := s.save(ctx, bs); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToBuildSystemResponse(bs)
	return &response, nil
}

// Activate makes a build system available for cloning and import
func (s *BuildSystemService) Activate(ctx context.Context, id uuid.UUID) (*BuildSystemResponse, error) {
	return s.transition(ctx, id, (*plan.BuildSystem).Activate)
}

// Deactivate retires a build system from cloning and import
func (s *BuildSystemService) Deactivate(ctx context.Context, id uuid.UUID) (*BuildSystemResponse, error) {
	return s.transition(ctx, id, (*plan.BuildSystem).Deactivate)
}

// Clone copies a build system and its whole tree under a new name.
// A non-empty idempotency key rejects replayed requests.
func (s *BuildSystemService) Clone(ctx context.Context, id uuid.UUID, req CloneRequest, idempotencyKey string) (*BuildSystemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "build_system", "clone")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrBuildSystemID, id.String())

	if err := s.claimIdempotencyKey(ctx, idempotencyKey); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	bs, err := s.bsRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	clone, err := bs.Clone(req.Name, req.CreatedBy)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.save(ctx, clone); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	response := ToBuildSystemResponse(clone)
	return &response, nil
}

// Delete removes a build system, its locations, and its line items
func (s *BuildSystemService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.bsRepo.Delete(ctx, id)
}

func (s *BuildSystemService) transition(ctx context.Context, id uuid.UUID, op func(*plan.BuildSystem) error) (*BuildSystemResponse, error) {
	bs, err := s.bsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := op(bs); err != nil {
		return nil, err
	}

	if err := s.save(ctx, bs); err != nil {
		return nil, err
	}

	response := ToBuildSystemResponse(bs)
	return &response, nil
}

// buildTree resolves every referenced device and validates the submitted
// tree. A validation failure surfaces every violation at once and nothing
// is persisted.
func (s *BuildSystemService) buildTree(ctx context.Context, aggregateID uuid.UUID, locations []LocationRequest) (*plan.Tree, error) {
	devices, err := resolveDevices(ctx, s.deviceRepo, locations)
	if err != nil {
		return nil, err
	}
	return plan.BuildTree(aggregateID, plan.KindBuildSystem, toLocationInputs(locations), devices)
}

// save reconciles the cached total against the tree about to be persisted
// and aborts the write on a mismatch. The repository replaces the aggregate
// and its tree in one transaction, so a reader never observes a total that
// disagrees with the stored tree.
func (s *BuildSystemService) save(ctx context.Context, bs *plan.BuildSystem) error {
	if m := plan.Reconcile(bs.Tree(), bs.TotalCost, plan.ReconcileEpsilon); m != nil {
		logger.L(ctx).Error("Aborting build system save on total cost mismatch",
			zap.String("build_system_id", bs.ID.String()),
			zap.String("expected", m.Expected.String()),
			zap.String("actual", m.Actual.String()),
			zap.String("delta", m.Delta.String()),
		)
		if s.metrics != nil {
			s.metrics.RecordCostMismatch(ctx, string(plan.KindBuildSystem), bs.ID)
		}
		return shared.ErrTotalMismatch
	}
	return s.bsRepo.Save(ctx, bs)
}

func (s *BuildSystemService) claimIdempotencyKey(ctx context.Context, key string) error {
	return claimIdempotencyKey(ctx, s.idempotency, key)
}

func claimIdempotencyKey(ctx context.Context, store shared.IdempotencyStore, key string) error {
	if key == "" || store == nil {
		return nil
	}
	fresh, err := store.MarkProcessed(ctx, key, idempotencyTTL)
	if err != nil {
		return err
	}
	if !fresh {
		return shared.NewDomainError("DUPLICATE_REQUEST", "A request with this idempotency key was already processed")
	}
	return nil
}

// resolveDevices loads catalog data for every device referenced by the
// submitted tree. Missing and inactive devices are not errors here; tree
// validation reports them per line item with a path.
func resolveDevices(ctx context.Context, repo catalog.DeviceRepository, locations []LocationRequest) (map[uuid.UUID]plan.DeviceInfo, error) {
	ids := collectDeviceIDs(locations)
	devices := make(map[uuid.UUID]plan.DeviceInfo, len(ids))
	if len(ids) == 0 {
		return devices, nil
	}

	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		d := &found[i]
		devices[d.ID] = plan.DeviceInfo{
			ID:           d.ID,
			Name:         d.Name,
			Code:         d.Code,
			SellingPrice: d.SellingPrice,
			IsActive:     d.IsActive(),
		}
	}
	return devices, nil
}
