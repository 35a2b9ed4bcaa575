package index_test

import (
	"testing"

	"github.com/qgramjoin/simjoin/pkg/index"
)

func TestPrefixLenClampsToVectorSize(t *testing.T) {
	if got := index.PrefixLen(2, 1, 2); got != 2 {
		t.Errorf("PrefixLen(q=2,tau=1,m=2) = %d, want 2 (p = min(3,2))", got)
	}
	if got := index.PrefixLen(2, 3, 100); got != 7 {
		t.Errorf("PrefixLen(q=2,tau=3,m=100) = %d, want 7", got)
	}
}

func TestBuildPostsWithinPrefixOnly(t *testing.T) {
	// qval=2, tau=0 -> prefix length = min(1, m).
	vectors := [][]int32{
		{10, 20, 30}, // row 0, prefix = [10]
		{10, 20},     // row 1, prefix = [10]
		{20, 30},     // row 2, prefix = [20]
	}
	idx := index.Build(vectors, 2, 0)

	p10 := idx.Postings(10)
	if len(p10) != 2 || p10[0] != 0 || p10[1] != 1 {
		t.Errorf("Postings(10) = %v, want [0 1]", p10)
	}
	p20 := idx.Postings(20)
	if len(p20) != 1 || p20[0] != 2 {
		t.Errorf("Postings(20) = %v, want [2]", p20)
	}
	if idx.Postings(30) != nil {
		t.Errorf("Postings(30) = %v, want nil (outside every prefix)", idx.Postings(30))
	}
}

func TestBuildDedupsRepeatedTokenWithinOneRowsPrefix(t *testing.T) {
	// Row's ordered vector has token 5 twice, both inside the prefix.
	vectors := [][]int32{{5, 5, 9}}
	idx := index.Build(vectors, 2, 1) // prefix length = min(3, 3) = 3

	p5 := idx.Postings(5)
	if len(p5) != 1 {
		t.Errorf("Postings(5) = %v, want exactly one entry for row 0", p5)
	}
}

func TestSizeVectorRecordsFullLength(t *testing.T) {
	vectors := [][]int32{{1, 2, 3, 4}, {1}}
	idx := index.Build(vectors, 2, 0)
	if idx.Size(0) != 4 {
		t.Errorf("Size(0) = %d, want 4", idx.Size(0))
	}
	if idx.Size(1) != 1 {
		t.Errorf("Size(1) = %d, want 1", idx.Size(1))
	}
	if idx.NumRows() != 2 {
		t.Errorf("NumRows() = %d, want 2", idx.NumRows())
	}
}
