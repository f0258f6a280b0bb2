package costing

import (
	"strings"

	"github.com/erp/garment/internal/domain/shared"
)

// Segment groups costing lines by kind of cost
type Segment string

const (
	SegmentFabric  Segment = "FABRIC"
	SegmentTrim    Segment = "TRIM"
	SegmentLabor   Segment = "LABOR"
	SegmentPacking Segment = "PACKING"
	SegmentMisc    Segment = "MISC"
	SegmentFreight Segment = "FREIGHT"
	SegmentDuty    Segment = "DUTY"
)

// AllSegments lists segments in sheet order
var AllSegments = []Segment{
	SegmentFabric,
	SegmentTrim,
	SegmentLabor,
	SegmentPacking,
	SegmentMisc,
	SegmentFreight,
	SegmentDuty,
}

// IsValid checks if the segment is known
func (s Segment) IsValid() bool {
	for _, seg := range AllSegments {
		if s == seg {
			return true
		}
	}
	return false
}

// String returns the string representation of Segment
func (s Segment) String() string {
	return string(s)
}

// ParseSegment accepts segment names case-insensitively
func ParseSegment(v string) (Segment, error) {
	s := Segment(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", shared.NewDomainError(shared.ErrInvalidSegment.Code, "Unknown costing segment: "+v)
	}
	return s, nil
}
