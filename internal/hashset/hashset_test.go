package hashset

import "testing"

func intHash(i int) uint64 { return uint64(i) }
func intEq(a, b int) bool  { return a == b }

func newIntSet(capacity int) *Set[int] {
	return New(intHash, intEq, capacity)
}

func TestAddAndContains(t *testing.T) {
	s := newIntSet(4)
	if s.Contains(1) {
		t.Fatal("empty set should not contain 1")
	}
	if _, replaced := s.Add(1); replaced {
		t.Fatal("first add should not report a replacement")
	}
	if !s.Contains(1) {
		t.Fatal("expected set to contain 1 after Add")
	}
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
}

func TestAddReplacesEquivalentItem(t *testing.T) {
	s := newIntSet(4)
	s.Add(5)
	old, replaced := s.Add(5)
	if !replaced || old != 5 {
		t.Fatalf("Add replaced=%v old=%v, want true/5", replaced, old)
	}
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1 (re-add should not grow count)", s.Count())
	}
}

func TestRemove(t *testing.T) {
	s := newIntSet(4)
	s.Add(1)
	s.Add(2)
	s.Add(3)
	removed, ok := s.Remove(2)
	if !ok || removed != 2 {
		t.Fatalf("Remove(2) = %v, %v, want 2, true", removed, ok)
	}
	if s.Contains(2) {
		t.Fatal("expected 2 to be removed")
	}
	if !s.Contains(1) || !s.Contains(3) {
		t.Fatal("removal of 2 should not disturb 1 or 3")
	}
	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}
	if _, ok := s.Remove(99); ok {
		t.Fatal("Remove of absent item should report false")
	}
}

func TestRemoveCleansProbeChain(t *testing.T) {
	// force many collisions into a tiny table to exercise the backward-shift
	// cleanup after a removal
	s := New(func(int) uint64 { return 0 }, intEq, 1)
	for i := 0; i < 20; i++ {
		s.Add(i)
	}
	if s.Count() != 20 {
		t.Fatalf("Count = %d, want 20", s.Count())
	}
	s.Remove(5)
	for i := 0; i < 20; i++ {
		if i == 5 {
			if s.Contains(i) {
				t.Fatal("5 should have been removed")
			}
			continue
		}
		if !s.Contains(i) {
			t.Fatalf("item %d lost after removing 5 (probe chain cleanup bug)", i)
		}
	}
}

func TestGrowPreservesMembership(t *testing.T) {
	s := newIntSet(1)
	for i := 0; i < 500; i++ {
		s.Add(i)
	}
	if s.Count() != 500 {
		t.Fatalf("Count = %d, want 500", s.Count())
	}
	for i := 0; i < 500; i++ {
		if !s.Contains(i) {
			t.Fatalf("item %d missing after growth", i)
		}
	}
}

func TestClear(t *testing.T) {
	s := newIntSet(4)
	s.Add(1)
	s.Add(2)
	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("Count = %d after Clear, want 0", s.Count())
	}
	if s.Contains(1) || s.Contains(2) {
		t.Fatal("Clear should remove all items")
	}
}

func TestUnionMinusIntersect(t *testing.T) {
	a := newIntSet(8)
	b := newIntSet(8)
	for _, v := range []int{1, 2, 3} {
		a.Add(v)
	}
	for _, v := range []int{2, 3, 4} {
		b.Add(v)
	}

	union := newIntSet(8)
	union.Union(a)
	union.Union(b)
	for _, v := range []int{1, 2, 3, 4} {
		if !union.Contains(v) {
			t.Fatalf("union missing %d", v)
		}
	}

	minus := newIntSet(8)
	minus.Union(a)
	minus.Minus(b)
	if !minus.Contains(1) || minus.Contains(2) || minus.Contains(3) {
		t.Fatalf("minus result incorrect: %v", minus.All())
	}

	intersect := newIntSet(8)
	intersect.Union(a)
	intersect.Intersect(b)
	if intersect.Count() != 2 || !intersect.Contains(2) || !intersect.Contains(3) {
		t.Fatalf("intersect result incorrect: %v", intersect.All())
	}
}

func TestIntersects(t *testing.T) {
	a := newIntSet(8)
	b := newIntSet(8)
	a.Add(1)
	a.Add(2)
	if a.Intersects(b) {
		t.Fatal("disjoint sets should not intersect")
	}
	b.Add(2)
	if !a.Intersects(b) {
		t.Fatal("sets sharing item 2 should intersect")
	}
}

func TestAllAndApply(t *testing.T) {
	s := newIntSet(8)
	want := map[int]bool{1: true, 2: true, 3: true}
	for v := range want {
		s.Add(v)
	}
	got := map[int]bool{}
	for _, v := range s.All() {
		got[v] = true
	}
	if len(got) != len(want) {
		t.Fatalf("All() returned %d items, want %d", len(got), len(want))
	}
	sum := 0
	s.Apply(func(item int) { sum += item })
	if sum != 6 {
		t.Fatalf("Apply sum = %d, want 6", sum)
	}
}
