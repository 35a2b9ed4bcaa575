package ordering_test

import (
	"testing"

	"github.com/qgramjoin/simjoin/pkg/ordering"
)

func TestBuildRanksByAscendingFrequency(t *testing.T) {
	left := [][]string{{"ab", "bc"}}
	right := [][]string{{"bc", "bc"}}
	o := ordering.Build(left, right)

	// "bc" occurs 3 times combined, "ab" occurs once -> ab must get a
	// smaller id than bc.
	vecAB := o.Vector([]string{"ab"})
	vecBC := o.Vector([]string{"bc"})
	if !(vecAB[0] < vecBC[0]) {
		t.Errorf("expected id(ab) < id(bc), got %d >= %d", vecAB[0], vecBC[0])
	}
}

func TestVectorSortedAscendingWithDuplicates(t *testing.T) {
	o := ordering.Build([][]string{{"x", "y", "z"}}, nil)
	vec := o.Vector([]string{"z", "x", "x", "y"})
	for i := 1; i < len(vec); i++ {
		if vec[i-1] > vec[i] {
			t.Fatalf("vector not sorted ascending: %v", vec)
		}
	}
	if len(vec) != 4 {
		t.Errorf("expected duplicates retained, got %v", vec)
	}
}

func TestSizeCountsDistinctGrams(t *testing.T) {
	o := ordering.Build([][]string{{"a", "b"}}, [][]string{{"b", "c"}})
	if o.Size() != 3 {
		t.Errorf("Size() = %d, want 3", o.Size())
	}
}

func TestDeterministicTieBreakIsLexicographic(t *testing.T) {
	// "a" and "b" both occur once combined -> tie broken lexicographically.
	o := ordering.Build([][]string{{"b", "a"}}, nil)
	vecA := o.Vector([]string{"a"})
	vecB := o.Vector([]string{"b"})
	if !(vecA[0] < vecB[0]) {
		t.Errorf("expected id(a) < id(b) on frequency tie, got %d >= %d", vecA[0], vecB[0])
	}
}
