package costing

import (
	"sort"

	"github.com/google/uuid"
)

// VersionHistory is the ordered list of versions of one subject
type VersionHistory []*CostingSheet

// NewVersionHistory sorts versions by revision number ascending
func NewVersionHistory(versions []*CostingSheet) VersionHistory {
	h := make(VersionHistory, len(versions))
	copy(h, versions)
	sort.SliceStable(h, func(i, j int) bool {
		return h[i].RevisionNo < h[j].RevisionNo
	})
	return h
}

// Active returns the highest revision, or nil for an empty history
func (h VersionHistory) Active() *CostingSheet {
	if len(h) == 0 {
		return nil
	}
	return h[len(h)-1]
}

// IsActive reports whether the given version is the active one
func (h VersionHistory) IsActive(id uuid.UUID) bool {
	active := h.Active()
	return active != nil && active.ID == id
}

// NextRevision returns max(revisionNo)+1
func (h VersionHistory) NextRevision() int {
	max := 0
	for _, v := range h {
		if v.RevisionNo > max {
			max = v.RevisionNo
		}
	}
	return max + 1
}

// Find returns the version with the given ID
func (h VersionHistory) Find(id uuid.UUID) *CostingSheet {
	for _, v := range h {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Append returns a new history with v added in revision order
func (h VersionHistory) Append(v *CostingSheet) VersionHistory {
	next := make([]*CostingSheet, 0, len(h)+1)
	next = append(next, h...)
	next = append(next, v)
	return NewVersionHistory(next)
}
