package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tenantScope restricts a query to one tenant
func tenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// poScope restricts a tenant-scoped query to a set of purchase orders
func poScope(tenantID uuid.UUID, poIDs ...uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Scopes(tenantScope(tenantID))
		if len(poIDs) == 1 {
			return db.Where("po_id = ?", poIDs[0])
		}
		return db.Where("po_id IN ?", poIDs)
	}
}

// poBatchSize bounds the order ids bound into one IN clause. It stays well
// below the sqlite and postgres bind parameter limits.
const poBatchSize = 500

// findInPOBatches runs load for consecutive slices of at most poBatchSize
// order ids and concatenates the results. Rows of one order always come from
// the same batch, so per-order ordering is kept.
func findInPOBatches[T any](poIDs []uuid.UUID, load func(batch []uuid.UUID) ([]T, error)) ([]T, error) {
	out := make([]T, 0)
	for start := 0; start < len(poIDs); start += poBatchSize {
		end := min(start+poBatchSize, len(poIDs))
		rows, err := load(poIDs[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// orderByPosition preloads child rows in their stored order
func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
