package plan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeops/backend/internal/domain/plan"
)

// LineItemRequest is a submitted device line within a location. A nil
// UnitPrice snapshots the catalog selling price at build time.
// Quantity is deliberately unchecked at the binding layer: tree validation
// reports a bad quantity with the location path and item index, which a
// binding failure cannot name.
type LineItemRequest struct {
	DeviceID  uuid.UUID        `json:"device_id" binding:"required"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// LocationRequest is a submitted location with optional nested sub-locations
type LocationRequest struct {
	Name         string            `json:"name" binding:"required,max=100"`
	Description  string            `json:"description,omitempty"`
	Devices      []LineItemRequest `json:"devices,omitempty" binding:"omitempty,dive"`
	SubLocations []LocationRequest `json:"sub_locations,omitempty" binding:"omitempty,dive"`
}

// CreateBuildSystemRequest is the request to create a build system template
type CreateBuildSystemRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Description string            `json:"description,omitempty"`
	Locations   []LocationRequest `json:"locations,omitempty" binding:"omitempty,dive"`
	CreatedBy   *uuid.UUID        `json:"-"`
}

// UpdateBuildSystemRequest replaces a build system's metadata and whole
// location tree. Locations always describe the complete new tree; an empty
// list clears it.
type UpdateBuildSystemRequest struct {
	Name        *string           `json:"name,omitempty" binding:"omitempty,max=200"`
	Description *string           `json:"description,omitempty"`
	Locations   []LocationRequest `json:"locations" binding:"omitempty,dive"`
}

// CreateProjectRequest is the request to create a project for a client
type CreateProjectRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Description string            `json:"description,omitempty"`
	ClientID    uuid.UUID         `json:"client_id" binding:"required"`
	Locations   []LocationRequest `json:"locations,omitempty" binding:"omitempty,dive"`
	CreatedBy   *uuid.UUID        `json:"-"`
}

// UpdateProjectRequest replaces a project's metadata and whole location tree
type UpdateProjectRequest struct {
	Name        *string           `json:"name,omitempty" binding:"omitempty,max=200"`
	Description *string           `json:"description,omitempty"`
	Locations   []LocationRequest `json:"locations" binding:"omitempty,dive"`
}

// CloneRequest is the request to clone an aggregate under a new name
type CloneRequest struct {
	Name      string     `json:"name" binding:"required,max=200"`
	CreatedBy *uuid.UUID `json:"-"`
}

// LocationMappingEntry redirects one build system root location to a named
// project location during import
type LocationMappingEntry struct {
	SourceLocationID   uuid.UUID `json:"source_location_id" binding:"required"`
	TargetLocationName string    `json:"target_location_name" binding:"required,max=100"`
}

// ImportRequest is the request to import a build system into a project
type ImportRequest struct {
	BuildSystemID   uuid.UUID              `json:"build_system_id" binding:"required"`
	LocationMapping []LocationMappingEntry `json:"location_mapping,omitempty" binding:"omitempty,dive"`
}

// UpdateStatusRequest is the request to move a project to a new status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ACTIVE COMPLETED CANCELLED"`
}

// BuildSystemListFilter is the filter for listing build systems
type BuildSystemListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
}

// ProjectListFilter is the filter for listing projects
type ProjectListFilter struct {
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string     `form:"search"`
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED CANCELLED"`
	ClientID *uuid.UUID `form:"client_id"`
}

// LineItemResponse is a persisted device line
type LineItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	DeviceID   uuid.UUID       `json:"device_id"`
	DeviceName string          `json:"device_name"`
	DeviceCode string          `json:"device_code"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Amount     decimal.Decimal `json:"amount"`
}

// LocationResponse is a location node with its cost and device count
// rollups. OwnCost covers the location's own line items; SubtreeCost and
// SubtreeDeviceCount include every descendant.
type LocationResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Depth              int                `json:"depth"`
	SortOrder          int                `json:"sort_order"`
	OwnCost            decimal.Decimal    `json:"own_cost"`
	SubtreeCost        decimal.Decimal    `json:"subtree_cost"`
	DeviceCount        int                `json:"device_count"`
	SubtreeDeviceCount int                `json:"subtree_device_count"`
	Devices            []LineItemResponse `json:"devices"`
	SubLocations       []LocationResponse `json:"sub_locations"`
}

// BuildSystemResponse is the full build system view including its tree
type BuildSystemResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	IsActive    bool               `json:"is_active"`
	TotalCost   decimal.Decimal    `json:"total_cost"`
	DeviceCount int                `json:"device_count"`
	Locations   []LocationResponse `json:"locations"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// BuildSystemSummary is the list view of a build system, tree omitted
type BuildSystemSummary struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	IsActive    bool            `json:"is_active"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProjectResponse is the full project view including its tree
type ProjectResponse struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	ClientID    uuid.UUID          `json:"client_id"`
	ClientName  string             `json:"client_name"`
	Status      string             `json:"status"`
	TotalCost   decimal.Decimal    `json:"total_cost"`
	DeviceCount int                `json:"device_count"`
	Locations   []LocationResponse `json:"locations"`
	Version     int                `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ProjectSummary is the list view of a project, tree omitted
type ProjectSummary struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	ClientID   uuid.UUID       `json:"client_id"`
	ClientName string          `json:"client_name"`
	Status     string          `json:"status"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ImportResponse reports the outcome of importing a build system
type ImportResponse struct {
	ImportedLocations int             `json:"imported_locations"`
	CostDelta         decimal.Decimal `json:"cost_delta"`
	NewTotal          decimal.Decimal `json:"new_total"`
}

func toLocationInputs(reqs []LocationRequest) []plan.LocationInput {
	inputs := make([]plan.LocationInput, 0, len(reqs))
	for _, r := range reqs {
		items := make([]plan.LineItemInput, 0, len(r.Devices))
		for _, d := range r.Devices {
			items = append(items, plan.LineItemInput{
				DeviceID:  d.DeviceID,
				Quantity:  d.Quantity,
				UnitPrice: d.UnitPrice,
			})
		}
		inputs = append(inputs, plan.LocationInput{
			Name:         r.Name,
			Description:  r.Description,
			Devices:      items,
			SubLocations: toLocationInputs(r.SubLocations),
		})
	}
	return inputs
}

func collectDeviceIDs(reqs []LocationRequest) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	var walk func(rs []LocationRequest)
	walk = func(rs []LocationRequest) {
		for _, r := range rs {
			for _, d := range r.Devices {
				if _, ok := seen[d.DeviceID]; !ok {
					seen[d.DeviceID] = struct{}{}
					ids = append(ids, d.DeviceID)
				}
			}
			walk(r.SubLocations)
		}
	}
	walk(reqs)
	return ids
}

// ToLocationResponse converts a location subtree to its response form with
// cost and device-count rollups computed on the way down
func ToLocationResponse(l *plan.Location) LocationResponse {
	items := make([]LineItemResponse, 0, len(l.Items))
	for i := range l.Items {
		item := &l.Items[i]
		items = append(items, LineItemResponse{
			ID:         item.ID,
			DeviceID:   item.DeviceID,
			DeviceName: item.DeviceName,
			DeviceCode: item.DeviceCode,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Amount:     item.Amount,
		})
	}
	children := make([]LocationResponse, 0, len(l.Children))
	for _, c := range l.Children {
		children = append(children, ToLocationResponse(c))
	}
	return LocationResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Description:        l.Description,
		Depth:              l.Depth,
		SortOrder:          l.SortOrder,
		OwnCost:            plan.LocationCost(l),
		SubtreeCost:        plan.SubtreeCost(l),
		DeviceCount:        plan.DeviceCount(l),
		SubtreeDeviceCount: plan.SubtreeDeviceCount(l),
		Devices:            items,
		SubLocations:       children,
	}
}

func toLocationResponses(roots []*plan.Location) []LocationResponse {
	out := make([]LocationResponse, 0, len(roots))
	for _, r := range roots {
		out = append(out, ToLocationResponse(r))
	}
	return out
}

// ToBuildSystemResponse converts a build system to its full response form
func ToBuildSystemResponse(bs *plan.BuildSystem) BuildSystemResponse {
	return BuildSystemResponse{
		ID:          bs.ID,
		Name:        bs.Name,
		Description: bs.Description,
		IsActive:    bs.IsActive,
		TotalCost:   bs.TotalCost,
		DeviceCount: plan.TreeDeviceCount(bs.Tree()),
		Locations:   toLocationResponses(bs.Locations),
		Version:     bs.Version,
		CreatedAt:   bs.CreatedAt,
		UpdatedAt:   bs.UpdatedAt,
	}
}

// ToBuildSystemSummary converts a build system to its list form
func ToBuildSystemSummary(bs *plan.BuildSystem) BuildSystemSummary {
	return BuildSystemSummary{
		ID:          bs.ID,
		Name:        bs.Name,
		Description: bs.Description,
		IsActive:    bs.IsActive,
		TotalCost:   bs.TotalCost,
		CreatedAt:   bs.CreatedAt,
		UpdatedAt:   bs.UpdatedAt,
	}
}

// ToProjectResponse converts a project to its full response form
func ToProjectResponse(p *plan.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ClientID:    p.ClientID,
		ClientName:  p.ClientName,
		Status:      p.Status.String(),
		TotalCost:   p.TotalCost,
		DeviceCount: plan.TreeDeviceCount(p.Tree()),
		Locations:   toLocationResponses(p.Locations),
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectSummary converts a project to its list form
func ToProjectSummary(p *plan.Project) ProjectSummary {
	return ProjectSummary{
		ID:         p.ID,
		Name:       p.Name,
		ClientID:   p.ClientID,
		ClientName: p.ClientName,
		Status:     p.Status.String(),
		TotalCost:  p.TotalCost,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
