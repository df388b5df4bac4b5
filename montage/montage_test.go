package montage

import (
	"errors"
	"testing"
)

func TestSortChannels(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"contact order", []string{"A10", "A2", "A1"}, []string{"A1", "A2", "A10"}},
		{"mixed leads", []string{"B1", "A2", "A1"}, []string{"A1", "A2", "B1"}},
		{"no digits", []string{"EKG", "A1"}, []string{"A1", "EKG"}},
		{"primed lead", []string{"A1", "A'2", "A'1"}, []string{"A'1", "A'2", "A1"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortChannels(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("SortChannels(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("SortChannels(%v) = %v, want %v", tt.in, got, tt.want)
				}
			}
		})
	}
}

func TestNewPlanPairsAdjacentContacts(t *testing.T) {
	p := NewPlan([]string{"A1", "A2", "A3", "B1"})

	want := []Pair{
		{First: 0, Second: 1, Name: "A1_2"},
		{First: 1, Second: 2, Name: "A2_3"},
	}
	got := p.Pairs()
	if len(got) != len(want) {
		t.Fatalf("Pairs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pairs()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
}

func TestNewPlanTracksUnsortedIndices(t *testing.T) {
	p := NewPlan([]string{"A2", "B1", "A1"})

	pairs := p.Pairs()
	if len(pairs) != 1 {
		t.Fatalf("Pairs() = %v, want one pair", pairs)
	}
	if pairs[0].First != 2 || pairs[0].Second != 0 || pairs[0].Name != "A1_2" {
		t.Fatalf("pair = %+v, want First=2 Second=0 Name=A1_2", pairs[0])
	}
}

func TestNewPlanSkipsGapsAndLeadBoundaries(t *testing.T) {
	p := NewPlan([]string{"A1", "A3", "B1", "B2"})

	names := p.Names()
	if len(names) != 1 || names[0] != "B1_2" {
		t.Fatalf("Names() = %v, want [B1_2]", names)
	}
}

func TestNewPlanSeparatesPrimedLeads(t *testing.T) {
	p := NewPlan([]string{"A'1", "A'2", "A1", "A2"})

	names := p.Names()
	want := []string{"A'1_2", "A1_2"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestNewPlanExcludesDigitlessChannels(t *testing.T) {
	p := NewPlan([]string{"A1", "EKG", "A2"})

	excluded := p.Excluded()
	if len(excluded) != 1 || excluded[0] != "EKG" {
		t.Fatalf("Excluded() = %v, want [EKG]", excluded)
	}

	// A1 and A2 become adjacent once EKG is set aside.
	names := p.Names()
	if len(names) != 1 || names[0] != "A1_2" {
		t.Fatalf("Names() = %v, want [A1_2]", names)
	}
}

func TestNewPlanDoubleDigitContacts(t *testing.T) {
	p := NewPlan([]string{"A9", "A10"})

	names := p.Names()
	if len(names) != 1 || names[0] != "A9_10" {
		t.Fatalf("Names() = %v, want [A9_10]", names)
	}
}

func TestApply(t *testing.T) {
	p := NewPlan([]string{"A1", "A2", "A3"})

	block := [][]float64{
		{1, 2},
		{10, 20},
		{100, 200},
	}
	out, err := p.Apply(block)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}

	want := [][]float64{
		{-9, -18},
		{-90, -180},
	}
	if len(out) != len(want) {
		t.Fatalf("len(Apply) = %d, want %d", len(out), len(want))
	}
	for i := range want {
		for j := range want[i] {
			if out[i][j] != want[i][j] {
				t.Fatalf("out[%d][%d] = %g, want %g", i, j, out[i][j], want[i][j])
			}
		}
	}
}

func TestApplyChannelCountMismatch(t *testing.T) {
	p := NewPlan([]string{"A1", "A2"})

	_, err := p.Apply([][]float64{{1}})
	if !errors.Is(err, ErrChannelCount) {
		t.Fatalf("Apply error = %v, want ErrChannelCount", err)
	}
}

func TestApplyLengthMismatch(t *testing.T) {
	p := NewPlan([]string{"A1", "A2"})

	_, err := p.Apply([][]float64{{1, 2}, {1}})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Apply error = %v, want ErrLengthMismatch", err)
	}
}

func TestApplyNoPairs(t *testing.T) {
	p := NewPlan([]string{"EKG", "EMG"})

	out, err := p.Apply([][]float64{{1}, {2}})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("len(Apply) = %d, want 0", len(out))
	}
}

func TestPairsReturnsCopy(t *testing.T) {
	p := NewPlan([]string{"A1", "A2"})

	p.Pairs()[0].Name = "mutated"
	if got := p.Pairs()[0].Name; got != "A1_2" {
		t.Fatalf("Pairs()[0].Name = %q after caller mutation, want A1_2", got)
	}
}
