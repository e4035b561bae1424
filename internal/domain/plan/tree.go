package plan

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	"github.com/homeops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Violation describes a single rule broken by a submitted tree
type Violation struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a submitted tree, not
// just the first, so callers can show all errors at once
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("tree validation failed: %s: %s", e.Violations[0].Path, e.Violations[0].Message)
	}
	return fmt.Sprintf("tree validation failed with %d violations", len(e.Violations))
}

func (e *ValidationError) add(path, code, message string) {
	e.Violations = append(e.Violations, Violation{Path: path, Code: code, Message: message})
}

// DeviceInfo is the slice of catalog data tree construction needs.
// The caller resolves devices up front so the domain stays free of I/O.
type DeviceInfo struct {
	ID           uuid.UUID
	Name         string
	Code         string
	SellingPrice decimal.Decimal
	IsActive     bool
}

// LineItemInput is a submitted device line item. UnitPrice nil means
// snapshot the catalog selling price at build time.
type LineItemInput struct {
	DeviceID  uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
}

// LocationInput is a submitted location definition, optionally nested
type LocationInput struct {
	Name         string
	Description  string
	Devices      []LineItemInput
	SubLocations []LocationInput
}

// Tree is an immutable view over an aggregate's root locations
type Tree struct {
	Roots []*Location
}

// BuildTree validates an ordered sequence of root location definitions and
// constructs the location tree for an aggregate. Every violated rule is
// collected; when any rule is broken the returned error is a
// *ValidationError listing all of them and no tree is produced.
func BuildTree(aggregateID uuid.UUID, kind AggregateKind, inputs []LocationInput, devices map[uuid.UUID]DeviceInfo) (*Tree, error) {
	verr := &ValidationError{}
	roots := make([]*Location, 0, len(inputs))

	seen := make(map[string]bool, len(inputs))
	for idx, in := range inputs {
		path := in.Name
		if path == "" {
			path = fmt.Sprintf("locations[%d]", idx)
		}
		if in.Name != "" && seen[in.Name] {
			verr.add(path, "DUPLICATE_NAME", "Sibling locations must have unique names")
		}
		seen[in.Name] = true

		root := buildLocation(aggregateID, kind, nil, 0, idx, in, path, devices, verr)
		if root != nil {
			roots = append(roots, root)
		}
	}

	if len(verr.Violations) > 0 {
		return nil, verr
	}
	return &Tree{Roots: roots}, nil
}

func buildLocation(aggregateID uuid.UUID, kind AggregateKind, parentID *uuid.UUID, depth, order int, in LocationInput, path string, devices map[uuid.UUID]DeviceInfo, verr *ValidationError) *Location {
	if in.Name == "" {
		verr.add(path, "INVALID_NAME", "Location name cannot be empty")
	} else if len(in.Name) > MaxLocationNameLength {
		verr.add(path, "INVALID_NAME", "Location name cannot exceed 100 characters")
	}
	if depth >= MaxTreeDepth {
		verr.add(path, "MAX_DEPTH_EXCEEDED", "Location nesting cannot exceed the maximum depth")
		return nil
	}

	loc, err := newUncheckedLocation(aggregateID, kind, parentID, depth, order, in.Name, in.Description)
	if err != nil {
		return nil
	}

	for di, dev := range in.Devices {
		dpath := fmt.Sprintf("%s/devices[%d]", path, di)
		info, ok := devices[dev.DeviceID]
		if !ok {
			verr.add(dpath, "DEVICE_NOT_FOUND", "Referenced device does not exist")
			continue
		}
		if !info.IsActive {
			verr.add(dpath, "DEVICE_INACTIVE", "Referenced device is not active")
			continue
		}
		for _, existing := range loc.Items {
			if existing.DeviceID == dev.DeviceID {
				verr.add(dpath, "DUPLICATE_DEVICE", "Device already listed in this location")
			}
		}
		if dev.Quantity < 1 {
			verr.add(dpath, "INVALID_QUANTITY", "Quantity must be at least 1")
			continue
		}
		price := info.SellingPrice
		if dev.UnitPrice != nil {
			price = *dev.UnitPrice
		}
		if price.IsNegative() {
			verr.add(dpath, "INVALID_PRICE", "Unit price cannot be negative")
			continue
		}
		if _, err := loc.AddItem(dev.DeviceID, info.Name, info.Code, dev.Quantity, valueobject.NewMoneyUSD(price)); err != nil {
			verr.add(dpath, "INVALID_ITEM", err.Error())
		}
	}

	seen := make(map[string]bool, len(in.SubLocations))
	for si, sub := range in.SubLocations {
		spath := path + "/" + sub.Name
		if sub.Name == "" {
			spath = fmt.Sprintf("%s/subLocations[%d]", path, si)
		}
		if sub.Name != "" && seen[sub.Name] {
			verr.add(spath, "DUPLICATE_NAME", "Sibling locations must have unique names")
		}
		seen[sub.Name] = true

		child := buildLocation(aggregateID, kind, &loc.ID, depth+1, si, sub, spath, devices, verr)
		if child != nil {
			loc.Children = append(loc.Children, child)
		}
	}

	return loc
}

// newUncheckedLocation builds a location node without name validation;
// BuildTree reports name violations itself so it can keep collecting.
func newUncheckedLocation(aggregateID uuid.UUID, kind AggregateKind, parentID *uuid.UUID, depth, order int, name, description string) (*Location, error) {
	loc, err := NewLocation(aggregateID, kind, "placeholder", description)
	if err != nil {
		return nil, err
	}
	loc.Name = name
	loc.ParentID = parentID
	loc.Depth = depth
	loc.SortOrder = order
	return loc, nil
}

// Flatten returns the tree's locations depth-first, parent before child,
// paired with their depth. The sequence is a pure function of the tree:
// it is finite, restartable, and holds no iterator state.
func (t *Tree) Flatten() iter.Seq2[*Location, int] {
	return func(yield func(*Location, int) bool) {
		for _, root := range t.Roots {
			if !walk(root, yield) {
				return
			}
		}
	}
}

func walk(l *Location, yield func(*Location, int) bool) bool {
	if !yield(l, l.Depth) {
		return false
	}
	for _, c := range l.Children {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// FindByPath resolves a location by walking child names from the roots.
// It returns false if any segment is missing.
func (t *Tree) FindByPath(names ...string) (*Location, bool) {
	if len(names) == 0 {
		return nil, false
	}
	var current *Location
	for _, root := range t.Roots {
		if root.Name == names[0] {
			current = root
			break
		}
	}
	if current == nil {
		return nil, false
	}
	for _, name := range names[1:] {
		next, ok := current.FindChild(name)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Size returns the number of locations in the tree
func (t *Tree) Size() int {
	n := 0
	for _, root := range t.Roots {
		n += root.subtreeSize()
	}
	return n
}

// Path returns the slash-joined name path from the root to the given
// location, or just its name if it is a root
func (t *Tree) Path(loc *Location) string {
	if loc.ParentID == nil {
		return loc.Name
	}
	for parent := range t.Flatten() {
		if parent.ID == *loc.ParentID {
			return t.Path(parent) + "/" + loc.Name
		}
	}
	return loc.Name
}

// AssembleTree reconstructs a tree from flat location rows as loaded from
// storage. Children are attached by parent reference and ordered by
// SortOrder; depth markers are rewritten from actual tree position so a
// drifted stored level can never survive a read.
func AssembleTree(rows []*Location) *Tree {
	byID := make(map[uuid.UUID]*Location, len(rows))
	for _, row := range rows {
		row.Children = nil
		byID[row.ID] = row
	}

	var roots []*Location
	for _, row := range rows {
		if row.ParentID == nil {
			roots = append(roots, row)
			continue
		}
		parent, ok := byID[*row.ParentID]
		if !ok {
			// Orphaned row; surface it as a root rather than dropping data
			roots = append(roots, row)
			continue
		}
		parent.Children = append(parent.Children, row)
	}

	sortLocations(roots)
	for _, row := range rows {
		sortLocations(row.Children)
	}

	tree := &Tree{Roots: roots}
	for _, root := range roots {
		rewriteDepth(root, 0)
	}
	return tree
}

func sortLocations(ls []*Location) {
	sort.SliceStable(ls, func(i, j int) bool {
		if ls[i].SortOrder != ls[j].SortOrder {
			return ls[i].SortOrder < ls[j].SortOrder
		}
		return strings.Compare(ls[i].Name, ls[j].Name) < 0
	})
}

func rewriteDepth(l *Location, depth int) {
	l.Depth = depth
	for _, c := range l.Children {
		rewriteDepth(c, depth+1)
	}
}
