package plan

import (
	"time"

	"github.com/homeops/backend/internal/domain/shared"
	"github.com/homeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTreeDepth is the maximum nesting depth of a location tree:
// a root location and one level of sub-locations. The cost algorithms
// are depth-agnostic; only tree construction enforces this cap.
const MaxTreeDepth = 2

// MaxLocationNameLength is the maximum length of a location name
const MaxLocationNameLength = 100

// AggregateKind identifies which kind of aggregate root owns a location tree
type AggregateKind string

const (
	KindBuildSystem AggregateKind = "BUILD_SYSTEM"
	KindProject     AggregateKind = "PROJECT"
)

// IsValid checks if the kind is a known AggregateKind
func (k AggregateKind) IsValid() bool {
	return k == KindBuildSystem || k == KindProject
}

// LineItem is a device line item attached to a location.
// UnitPrice is snapshotted when the item is added and never re-read
// from the catalog; Amount always equals Quantity * UnitPrice.
type LineItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeviceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeviceName string          `gorm:"type:varchar(200);not null"`
	DeviceCode string          `gorm:"type:varchar(50)"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "line_items"
}

// NewLineItem creates a new device line item for a location
func NewLineItem(locationID, deviceID uuid.UUID, deviceName, deviceCode string, quantity int, unitPrice valueobject.Money) (*LineItem, error) {
	if deviceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEVICE", "Device ID cannot be empty")
	}
	if deviceName == "" {
		return nil, shared.NewDomainError("INVALID_DEVICE_NAME", "Device name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	price := unitPrice.Amount()

	return &LineItem{
		ID:         uuid.New(),
		LocationID: locationID,
		DeviceID:   deviceID,
		DeviceName: deviceName,
		DeviceCode: deviceCode,
		Quantity:   quantity,
		UnitPrice:  price,
		Amount:     price.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// UpdateQuantity updates the quantity and recomputes the amount
func (i *LineItem) UpdateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	i.Quantity = quantity
	i.Amount = i.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	i.UpdatedAt = time.Now()
	return nil
}

// UpdateUnitPrice updates the snapshotted unit price and recomputes the amount
func (i *LineItem) UpdateUnitPrice(unitPrice valueobject.Money) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	i.UnitPrice = unitPrice.Amount()
	i.Amount = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	i.UpdatedAt = time.Now()
	return nil
}

// copyFor returns a deep copy of the item owned by a different location,
// with a fresh identity and the price preserved verbatim
func (i *LineItem) copyFor(locationID uuid.UUID) *LineItem {
	now := time.Now()
	return &LineItem{
		ID:         uuid.New(),
		LocationID: locationID,
		DeviceID:   i.DeviceID,
		DeviceName: i.DeviceName,
		DeviceCode: i.DeviceCode,
		Quantity:   i.Quantity,
		UnitPrice:  i.UnitPrice,
		Amount:     i.Amount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Location is a named node in an aggregate's hierarchy. Children are
// reconstructed from parent references by AssembleTree; GORM only maps
// the flat row and the owned line items.
type Location struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey"`
	AggregateID   uuid.UUID     `gorm:"type:uuid;not null;index:idx_locations_aggregate"`
	AggregateKind AggregateKind `gorm:"type:varchar(20);not null;index:idx_locations_aggregate"`
	ParentID      *uuid.UUID    `gorm:"type:uuid;index"`
	Depth         int           `gorm:"not null;default:0"`
	SortOrder     int           `gorm:"not null;default:0"`
	Name          string        `gorm:"type:varchar(100);not null"`
	Description   string        `gorm:"type:text"`
	Items         []LineItem    `gorm:"foreignKey:LocationID"`
	Children      []*Location   `gorm:"-"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// NewLocation creates a new root location for an aggregate
func NewLocation(aggregateID uuid.UUID, kind AggregateKind, name, description string) (*Location, error) {
	if err := validateLocationName(name); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown aggregate kind")
	}

	now := time.Now()
	return &Location{
		ID:            uuid.New(),
		AggregateID:   aggregateID,
		AggregateKind: kind,
		Depth:         0,
		Name:          name,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NewChildLocation creates a new sub-location under a parent
func NewChildLocation(parent *Location, name, description string) (*Location, error) {
	if parent == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Parent location is required")
	}
	if parent.Depth >= MaxTreeDepth-1 {
		return nil, shared.NewDomainError("MAX_DEPTH_EXCEEDED", "Location nesting cannot exceed the maximum depth")
	}
	if err := validateLocationName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	child := &Location{
		ID:            uuid.New(),
		AggregateID:   parent.AggregateID,
		AggregateKind: parent.AggregateKind,
		ParentID:      &parent.ID,
		Depth:         parent.Depth + 1,
		SortOrder:     len(parent.Children),
		Name:          name,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	parent.Children = append(parent.Children, child)
	return child, nil
}

// IsRoot returns true if this is a root location
func (l *Location) IsRoot() bool {
	return l.ParentID == nil
}

// FindChild returns the direct child with the given name
func (l *Location) FindChild(name string) (*Location, bool) {
	for _, c := range l.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddItem attaches a line item to this location
func (l *Location) AddItem(deviceID uuid.UUID, deviceName, deviceCode string, quantity int, unitPrice valueobject.Money) (*LineItem, error) {
	item, err := NewLineItem(l.ID, deviceID, deviceName, deviceCode, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, *item)
	l.UpdatedAt = time.Now()
	return item, nil
}

// copyInto deep-copies this location's items and children into dst.
// dst keeps its own identity and name; the source rows are never shared.
func (l *Location) copyInto(dst *Location) int {
	copied := 1
	for idx := range l.Items {
		dst.Items = append(dst.Items, *l.Items[idx].copyFor(dst.ID))
	}
	for _, child := range l.Children {
		target, ok := dst.FindChild(child.Name)
		if !ok {
			target = child.cloneUnder(dst.AggregateID, dst.AggregateKind, &dst.ID, dst.Depth+1)
			target.SortOrder = len(dst.Children)
			dst.Children = append(dst.Children, target)
			copied += child.subtreeSize()
			continue
		}
		copied += child.copyInto(target)
	}
	dst.UpdatedAt = time.Now()
	return copied
}

// cloneUnder returns a deep copy of this location subtree with fresh
// identities, re-homed under the given aggregate and parent
func (l *Location) cloneUnder(aggregateID uuid.UUID, kind AggregateKind, parentID *uuid.UUID, depth int) *Location {
	now := time.Now()
	clone := &Location{
		ID:            uuid.New(),
		AggregateID:   aggregateID,
		AggregateKind: kind,
		ParentID:      parentID,
		Depth:         depth,
		SortOrder:     l.SortOrder,
		Name:          l.Name,
		Description:   l.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for idx := range l.Items {
		clone.Items = append(clone.Items, *l.Items[idx].copyFor(clone.ID))
	}
	for _, child := range l.Children {
		clone.Children = append(clone.Children, child.cloneUnder(aggregateID, kind, &clone.ID, depth+1))
	}
	return clone
}

// subtreeSize returns the number of locations in this subtree including itself
func (l *Location) subtreeSize() int {
	n := 1
	for _, c := range l.Children {
		n += c.subtreeSize()
	}
	return n
}

func validateLocationName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Location name cannot be empty")
	}
	if len(name) > MaxLocationNameLength {
		return shared.NewDomainError("INVALID_NAME", "Location name cannot exceed 100 characters")
	}
	return nil
}
