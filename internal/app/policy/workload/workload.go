// internal/app/policy/workload/workload.go

// Package workload validates membership workload ratios against the
// group-wide consistency invariant: a ratio, when present, is a
// percentage share in (0, 100] with at most one decimal digit, and the
// non-nil ratios of a group's active memberships must sum to exactly
// 100 after every accepted mutation.
//
// All arithmetic runs in integer tenths so one-decimal values compare
// exactly; "sums to 100" means the tenths add up to 1000.
//
// A Check is only meaningful when the check-then-write sequence is
// serialized per group (grouplock.Lock); two concurrent creations must
// not both observe the same pre-insert sum.
package workload

import (
	"context"
	"math"

	"github.com/dalemusser/kajishare/internal/domain/fault"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind classifies a workload violation.
type Kind int

const (
	RangeInvalid Kind = iota
	PrecisionInvalid
	SumInvalid
)

// Violation is a field-scoped validation failure. Rules are checked in
// order and the first failure wins.
type Violation struct {
	Kind  Kind
	Field string
}

// Err maps the violation to its domain fault sentinel.
func (v *Violation) Err() error {
	switch v.Kind {
	case RangeInvalid:
		return fault.ErrWorkloadRange
	case PrecisionInvalid:
		return fault.ErrWorkloadPrecision
	default:
		return fault.ErrWorkloadSum
	}
}

// RatioSummer is the one aggregate the checker needs. The memberships
// store satisfies it; tests use an in-memory fake.
type RatioSummer interface {
	SumWorkloadRatio(ctx context.Context, groupID primitive.ObjectID, excluding *primitive.ObjectID) (float64, error)
}

// tenths converts a one-decimal percentage to integer tenths.
// ok is false when the value carries more than one decimal digit.
func tenths(v float64) (int64, bool) {
	scaled := v * 10
	rounded := math.Round(scaled)
	return int64(rounded), math.Abs(scaled-rounded) < 1e-6
}

// Check validates a proposed ratio for a membership in the group. A nil
// ratio is always valid and contributes nothing to the sum. For an
// update, excluding must be the membership's own id so its prior value
// is left out of the "other memberships" sum before the proposed value
// is added. Returns (nil, nil) when the proposal is acceptable.
func Check(ctx context.Context, src RatioSummer, groupID primitive.ObjectID, ratio *float64, excluding *primitive.ObjectID) (*Violation, error) {
	if ratio == nil {
		return nil, nil
	}
	v := *ratio
	if v <= 0 || v > 100 {
		return &Violation{Kind: RangeInvalid, Field: "workload_ratio"}, nil
	}
	proposed, ok := tenths(v)
	if !ok {
		return &Violation{Kind: PrecisionInvalid, Field: "workload_ratio"}, nil
	}

	sum, err := src.SumWorkloadRatio(ctx, groupID, excluding)
	if err != nil {
		return nil, err
	}
	// Stored ratios have already passed the precision rule, so rounding
	// the aggregate to tenths only removes float drift.
	others := int64(math.Round(sum * 10))
	if others+proposed != 1000 {
		return &Violation{Kind: SumInvalid, Field: "workload_ratio"}, nil
	}
	return nil, nil
}
