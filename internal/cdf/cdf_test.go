package cdf

import "testing"

// TestUniformMonotonic checks the CDF invariant from spec.md §3: slot 0 >=
// slot 1 >= ... >= slot N-1 = 0 for a freshly initialized table.
func TestUniformMonotonic(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 9, 12, 13} {
		c := uniform(n)
		if len(c) != n+1 {
			t.Fatalf("uniform(%d): len = %d, want %d", n, len(c), n+1)
		}
		for i := 1; i < n-1; i++ {
			if c[i-1] < c[i] {
				t.Errorf("uniform(%d): slot %d (%d) < slot %d (%d), not monotonic", n, i-1, c[i-1], i, c[i])
			}
		}
		if c[n-1] != 0 {
			t.Errorf("uniform(%d): last real slot = %d, want 0", n, c[n-1])
		}
		if c[n] != 0 {
			t.Errorf("uniform(%d): adaptation counter = %d, want 0 at init", n, c[n])
		}
	}
}

// TestForQIndexShape checks every table in a fresh Context has the
// symbol-count shape the tile encoder indexes it with.
func TestForQIndexShape(t *testing.T) {
	c := ForQIndex(128)

	if len(c.MVJoint) != 5 {
		t.Errorf("MVJoint len = %d, want 5 (4-ary + counter)", len(c.MVJoint))
	}
	if len(c.Partition) != partitionLevels {
		t.Errorf("Partition len = %d, want %d", len(c.Partition), partitionLevels)
	}
	for bl, level := range c.Partition {
		for ctx, p := range level {
			if len(p) != 10 {
				t.Errorf("Partition[%d][%d] len = %d, want 10 (9-ary + counter)", bl, ctx, len(p))
			}
		}
	}
	for a := range c.KfYMode {
		for l := range c.KfYMode[a] {
			if len(c.KfYMode[a][l]) != 13 {
				t.Errorf("KfYMode[%d][%d] len = %d, want 13", a, l, len(c.KfYMode[a][l]))
			}
		}
	}
	if len(c.TxbSkip) != 13 {
		t.Errorf("TxbSkip count = %d, want 13", len(c.TxbSkip))
	}
	if len(c.BaseTok) != 42 {
		t.Errorf("BaseTok count = %d, want 42", len(c.BaseTok))
	}
	for comp := 0; comp < 2; comp++ {
		if len(c.MVComp[comp].Classes) != 11 {
			t.Errorf("MVComp[%d].Classes len = %d, want 11 (10-ary + counter)", comp, len(c.MVComp[comp].Classes))
		}
		if len(c.MVComp[comp].ClassN) != 10 {
			t.Errorf("MVComp[%d].ClassN count = %d, want 10", comp, len(c.MVComp[comp].ClassN))
		}
	}
}

// TestForQIndexIndependentInstances ensures two Contexts don't share
// backing arrays — mutating one (as adaptation does) must not leak into
// the other, since each coded frame gets its own Context (spec.md §4.4).
func TestForQIndexIndependentInstances(t *testing.T) {
	a := ForQIndex(64)
	b := ForQIndex(64)
	a.Skip[0][0] = 999
	if b.Skip[0][0] == 999 {
		t.Fatal("two ForQIndex Contexts share backing storage")
	}
}
