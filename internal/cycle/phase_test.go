package cycle

import (
	"fmt"
	"testing"
)

// TestClassifyStandardCycle checks the canonical 28/5 cycle band boundaries.
func TestClassifyStandardCycle(t *testing.T) {
	t.Parallel()

	const (
		cycleLength  = 28
		periodLength = 5
	)

	tests := []struct {
		name    string
		offsets []int
		want    Phase
	}{
		{"menstrual days 0-4", []int{0, 1, 2, 3, 4}, PhaseMenstrual},
		{"follicular days 5-8", []int{5, 6, 7, 8}, PhaseFollicular},
		{"fertile days 9-13", []int{9, 10, 11, 12, 13}, PhaseFertile},
		{"ovulation day 14", []int{14}, PhaseOvulation},
		{"luteal days 15-27", []int{15, 20, 27}, PhaseLuteal},
		{"outside cycle window", []int{-1, 28, 100}, PhaseUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			for _, offset := range tt.offsets {
				if got := Classify(offset, cycleLength, periodLength); got != tt.want {
					t.Errorf("Classify(%d, %d, %d) = %v, want %v", offset, cycleLength, periodLength, got, tt.want)
				}
			}
		})
	}
}

// TestClassifyPartition verifies that for sufficiently long cycles every
// in-range offset maps to exactly one non-unknown phase with no gaps.
func TestClassifyPartition(t *testing.T) {
	t.Parallel()

	for _, periodLength := range []int{3, 5, 7} {
		periodLength := periodLength
		for cycleLength := 2*periodLength + 11; cycleLength <= 2*periodLength+20; cycleLength++ {
			cycleLength := cycleLength
			name := fmt.Sprintf("cycle=%d period=%d", cycleLength, periodLength)
			t.Run(name, func(t *testing.T) {
				t.Parallel()
				counts := make(map[Phase]int)
				for offset := 0; offset < cycleLength; offset++ {
					phase := Classify(offset, cycleLength, periodLength)
					if phase == PhaseUnknown {
						t.Fatalf("offset %d classified as unknown inside [0, %d)", offset, cycleLength)
					}
					if !phase.Valid() {
						t.Fatalf("offset %d produced invalid phase %q", offset, phase)
					}
					counts[phase]++
				}
				total := 0
				for _, n := range counts {
					total += n
				}
				if total != cycleLength {
					t.Errorf("phases cover %d offsets, want %d", total, cycleLength)
				}
				if counts[PhaseOvulation] != 1 {
					t.Errorf("expected exactly one ovulation day, got %d", counts[PhaseOvulation])
				}
			})
		}
	}
}

// TestClassifyShortCycleCollapse documents the rule-order behavior for short
// cycles where the follicular band collapses: rule order wins, the result is
// still deterministic and gap-free.
func TestClassifyShortCycleCollapse(t *testing.T) {
	t.Parallel()

	// cycle=14 → ov=7, ov-5=2 < periodLength=5: no follicular days at all.
	const (
		cycleLength  = 14
		periodLength = 5
	)

	follicular := 0
	for offset := 0; offset < cycleLength; offset++ {
		phase := Classify(offset, cycleLength, periodLength)
		if phase == PhaseFollicular {
			follicular++
		}
		if phase == PhaseUnknown {
			t.Fatalf("offset %d unexpectedly unknown", offset)
		}
	}
	if follicular != 0 {
		t.Errorf("expected the follicular band to collapse, got %d follicular days", follicular)
	}

	// Days 5-6 fall straight into the fertile band.
	if got := Classify(5, cycleLength, periodLength); got != PhaseFertile {
		t.Errorf("Classify(5, 14, 5) = %v, want fertile", got)
	}
	if got := Classify(7, cycleLength, periodLength); got != PhaseOvulation {
		t.Errorf("Classify(7, 14, 5) = %v, want ovulation", got)
	}
}

// TestClassifyDeterministic verifies repeated calls with identical inputs
// always agree.
func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	for offset := -2; offset < 32; offset++ {
		first := Classify(offset, 30, 6)
		for i := 0; i < 10; i++ {
			if got := Classify(offset, 30, 6); got != first {
				t.Fatalf("Classify(%d, 30, 6) changed between calls: %v then %v", offset, first, got)
			}
		}
	}
}

func TestOvulationOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cycleLength int
		want        int
	}{
		{28, 14},
		{29, 14},
		{30, 15},
		{21, 10},
	}
	for _, tt := range tests {
		if got := OvulationOffset(tt.cycleLength); got != tt.want {
			t.Errorf("OvulationOffset(%d) = %d, want %d", tt.cycleLength, got, tt.want)
		}
	}
}
