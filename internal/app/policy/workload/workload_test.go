package workload_test

import (
	"context"
	"testing"

	"github.com/dalemusser/kajishare/internal/app/policy/workload"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeSummer returns a fixed sum and records the excluding argument.
type fakeSummer struct {
	sum       float64
	excluding *primitive.ObjectID
}

func (f *fakeSummer) SumWorkloadRatio(_ context.Context, _ primitive.ObjectID, excluding *primitive.ObjectID) (float64, error) {
	f.excluding = excluding
	return f.sum, nil
}

func ptr(v float64) *float64 { return &v }

func TestCheck_NilRatioAlwaysValid(t *testing.T) {
	src := &fakeSummer{sum: 100}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), nil, nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v != nil {
		t.Errorf("nil ratio: got violation %+v, want none", v)
	}
}

func TestCheck_Range(t *testing.T) {
	cases := []struct {
		name  string
		ratio float64
		bad   bool
	}{
		{"zero", 0, true},
		{"negative", -5, true},
		{"just above zero", 0.1, false},
		{"hundred", 100, false},
		{"above hundred", 100.1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// others sum chosen so the sum rule passes when range does
			src := &fakeSummer{sum: 100 - tc.ratio}
			v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(tc.ratio), nil)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if tc.bad {
				if v == nil || v.Kind != workload.RangeInvalid {
					t.Errorf("got %+v, want RangeInvalid", v)
				}
			} else if v != nil {
				t.Errorf("got violation %+v, want none", v)
			}
		})
	}
}

func TestCheck_Precision(t *testing.T) {
	src := &fakeSummer{sum: 66.7}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(33.33), nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v == nil || v.Kind != workload.PrecisionInvalid {
		t.Errorf("got %+v, want PrecisionInvalid", v)
	}
	if v.Err() != fault.ErrWorkloadPrecision {
		t.Errorf("Err: got %v, want ErrWorkloadPrecision", v.Err())
	}
}

func TestCheck_OneDecimalAccepted(t *testing.T) {
	src := &fakeSummer{sum: 66.7}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(33.3), nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v != nil {
		t.Errorf("33.3 against 66.7: got violation %+v, want none", v)
	}
}

// A group at 60+40 has no room: adding a member with ratio 10 must be
// refused as a sum violation.
func TestCheck_FullGroupRejectsNewRatio(t *testing.T) {
	src := &fakeSummer{sum: 100}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(10), nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v == nil || v.Kind != workload.SumInvalid {
		t.Errorf("got %+v, want SumInvalid", v)
	}
	if v.Err() != fault.ErrWorkloadSum {
		t.Errorf("Err: got %v, want ErrWorkloadSum", v.Err())
	}
}

func TestCheck_SumMustReachExactlyHundred(t *testing.T) {
	src := &fakeSummer{sum: 50}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(40), nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v == nil || v.Kind != workload.SumInvalid {
		t.Errorf("50+40: got %+v, want SumInvalid", v)
	}
}

// Updating a membership's own ratio must exclude its prior value from
// the sum of the others.
func TestCheck_UpdateExcludesSelf(t *testing.T) {
	selfID := primitive.NewObjectID()
	src := &fakeSummer{sum: 60} // the others, self's old value already excluded
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(40), &selfID)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v != nil {
		t.Errorf("got violation %+v, want none", v)
	}
	if src.excluding == nil || *src.excluding != selfID {
		t.Errorf("excluding: got %v, want %s", src.excluding, selfID.Hex())
	}
}

// One-decimal splits that drift under float addition must still sum
// cleanly in tenths: 33.3 + 33.3 + 33.4 == 100.
func TestCheck_TenthsAvoidFloatDrift(t *testing.T) {
	src := &fakeSummer{sum: 33.3 + 33.3}
	v, err := workload.Check(context.Background(), src, primitive.NewObjectID(), ptr(33.4), nil)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if v != nil {
		t.Errorf("33.3+33.3+33.4: got violation %+v, want none", v)
	}
}
