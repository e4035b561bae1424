package persistence

import (
	"github.com/google/uuid"
	"github.com/homeops/backend/internal/domain/plan"
	"gorm.io/gorm"
)

// saveLocationTree replaces the stored location tree of an aggregate with the
// given roots. Rows are inserted parent-before-child so foreign keys hold.
// Must run inside a transaction together with the aggregate row update.
func saveLocationTree(tx *gorm.DB, aggregateID uuid.UUID, kind plan.AggregateKind, roots []*plan.Location) error {
	if err := deleteLocationTree(tx, aggregateID, kind); err != nil {
		return err
	}

	tree := &plan.Tree{Roots: roots}
	for loc := range tree.Flatten() {
		if err := tx.Create(loc).Error; err != nil {
			return err
		}
	}
	return nil
}

// deleteLocationTree removes all locations and line items of an aggregate
func deleteLocationTree(tx *gorm.DB, aggregateID uuid.UUID, kind plan.AggregateKind) error {
	if err := tx.Exec(
		"DELETE FROM line_items WHERE location_id IN (SELECT id FROM locations WHERE aggregate_id = ? AND aggregate_kind = ?)",
		aggregateID, kind,
	).Error; err != nil {
		return err
	}
	return tx.Where("aggregate_id = ? AND aggregate_kind = ?", aggregateID, kind).
		Delete(&plan.Location{}).Error
}

// loadLocationTree loads the flat location rows of an aggregate and
// reassembles them into a tree
func loadLocationTree(db *gorm.DB, aggregateID uuid.UUID, kind plan.AggregateKind) (*plan.Tree, error) {
	var rows []*plan.Location
	if err := db.
		Preload("Items").
		Where("aggregate_id = ? AND aggregate_kind = ?", aggregateID, kind).
		Order("depth ASC, sort_order ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return plan.AssembleTree(rows), nil
}
