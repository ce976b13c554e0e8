package rect

import "testing"

func TestRectangleAccessors(t *testing.T) {
	re := New(2, 3, 10, 20)
	if re.Width() != 9 || re.Height() != 18 {
		t.Fatalf("got width=%d height=%d", re.Width(), re.Height())
	}
	if re.Hcenter() != 6 || re.Vcenter() != 11 {
		t.Fatalf("got hcenter=%d vcenter=%d", re.Hcenter(), re.Vcenter())
	}
}

func TestRectangleInvariantPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for inverted rectangle")
		}
	}()
	New(10, 0, 0, 0)
}

func TestRectangleMutatorsPreserveInvariant(t *testing.T) {
	re := New(0, 0, 10, 10)
	re.AddPoint(-5, 20)
	if re.Left() != 0 || re.Right() != 20 || re.Top() != -5 {
		t.Fatalf("unexpected bounds after AddPoint: %+v", re)
	}
	if re.Left() > re.Right() || re.Top() > re.Bottom() {
		t.Fatalf("invariant violated: %+v", re)
	}
}

func TestPrecedesReadingOrder(t *testing.T) {
	a := New(0, 0, 5, 5)
	b := New(6, 0, 10, 5)
	if !a.Precedes(b) {
		t.Fatalf("a should precede b")
	}
	if b.Precedes(a) {
		t.Fatalf("b should not precede a")
	}
}

func TestVOverlapPercent(t *testing.T) {
	a := New(0, 0, 5, 9) // height 10
	b := New(0, 5, 5, 14) // height 10, overlap rows 5..9 -> 5 rows -> 50%
	if p := a.VOverlapPercent(b); p != 50 {
		t.Fatalf("expected 50%%, got %d", p)
	}
}

func TestHypotiMatchesRoundedEuclidean(t *testing.T) {
	cases := []struct{ c1, c2, want int }{
		{3, 4, 5},
		{0, 0, 0},
		{1, 0, 1},
		{5, 12, 13},
	}
	for _, c := range cases {
		if got := Hypoti(c.c1, c.c2); got != c.want {
			t.Fatalf("Hypoti(%d,%d)=%d want %d", c.c1, c.c2, got, c.want)
		}
	}
}

func TestCsegmentEmptyMeansInvalid(t *testing.T) {
	c := EmptyCsegment()
	if c.Valid() {
		t.Fatalf("empty csegment should be invalid")
	}
	c.AddPoint(5)
	if !c.Valid() || c.Size() != 1 {
		t.Fatalf("unexpected segment after AddPoint: %+v", c)
	}
}
