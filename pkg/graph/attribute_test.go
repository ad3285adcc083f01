package graph

import "testing"

func TestAttribute_FloatRoundTrip(t *testing.T) {
	a, err := NewAttribute("weight", ScopeNode, TypeF64, 1, 4)
	if err != nil {
		t.Fatalf("NewAttribute() error = %v", err)
	}
	if err := a.SetFloat64(2, []float64{3.14}); err != nil {
		t.Fatalf("SetFloat64() error = %v", err)
	}
	got, err := a.GetFloat64(2)
	if err != nil || got[0] != 3.14 {
		t.Fatalf("GetFloat64() = %v, %v; want [3.14], nil", got, err)
	}
}

func TestAttribute_VersionWrap(t *testing.T) {
	a, _ := NewAttribute("x", ScopeNode, TypeF64, 1, 1)
	a.version = maxVersion
	a.BumpVersion()
	if a.Version() != 1 {
		t.Fatalf("Version() after wrap = %d, want 1", a.Version())
	}
}

func TestAttribute_EnsureCapacityZeroFills(t *testing.T) {
	a, _ := NewAttribute("x", ScopeNode, TypeI32, 1, 2)
	_ = a.SetFloat64(1, []float64{7})
	a.EnsureCapacity(5)
	got, _ := a.GetFloat64(4)
	if got[0] != 0 {
		t.Fatalf("new region not zero-filled: got %v", got)
	}
	old, _ := a.GetFloat64(1)
	if old[0] != 7 {
		t.Fatalf("EnsureCapacity clobbered existing data: got %v", old)
	}
}

func TestAttribute_AutoCategorizeFrequency(t *testing.T) {
	a, _ := NewAttribute("label", ScopeNode, TypeString, 1, 5)
	vals := []string{"a", "b", "a", "c"}
	for i, v := range vals {
		s := v
		_ = a.SetString(i, []*string{&s})
	}
	// row 4 left nil: missing

	if err := a.AutoCategorize(SortFrequency); err != nil {
		t.Fatalf("AutoCategorize() error = %v", err)
	}
	if a.BaseType() != TypeCategory {
		t.Fatalf("BaseType() = %v, want TypeCategory", a.BaseType())
	}

	wantCodes := map[int]int32{0: 0, 1: 1, 2: 0, 3: 2, 4: MissingCategoryID}
	for i, want := range wantCodes {
		got, err := a.GetCategoryCode(i)
		if err != nil || got != want {
			t.Errorf("GetCategoryCode(%d) = %d, %v; want %d", i, got, err, want)
		}
	}

	if id, ok := a.Dictionary().IDFor("a"); !ok || id != 0 {
		t.Errorf(`dictionary id for "a" = %d, %v; want 0, true`, id, ok)
	}
}

func TestAttribute_CategorizeDecategorizeRoundTrip(t *testing.T) {
	a, _ := NewAttribute("label", ScopeNode, TypeString, 1, 3)
	for i, v := range []string{"x", "y", "x"} {
		s := v
		_ = a.SetString(i, []*string{&s})
	}
	if err := a.AutoCategorize(SortAlphabetical); err != nil {
		t.Fatalf("AutoCategorize() error = %v", err)
	}
	if err := a.Decategorize(""); err != nil {
		t.Fatalf("Decategorize() error = %v", err)
	}
	for i, want := range []string{"x", "y", "x"} {
		got, err := a.GetString(i)
		if err != nil || got[0] == nil || *got[0] != want {
			t.Errorf("GetString(%d) = %v, %v; want %q", i, got, err, want)
		}
	}
}

func TestMultiCategoryColumn_SetEntryGrowsAndShrinks(t *testing.T) {
	c := NewMultiCategoryColumn(3)
	if err := c.SetEntry(1, []int32{5, 6, 7}, nil); err != nil {
		t.Fatalf("SetEntry() error = %v", err)
	}
	ids, _ := c.Get(1)
	if len(ids) != 3 || ids[0] != 5 {
		t.Fatalf("Get(1) = %v, want [5 6 7]", ids)
	}
	if err := c.SetEntry(1, []int32{9}, nil); err != nil {
		t.Fatalf("SetEntry() shrink error = %v", err)
	}
	ids, _ = c.Get(1)
	if len(ids) != 1 || ids[0] != 9 {
		t.Fatalf("Get(1) after shrink = %v, want [9]", ids)
	}
	ids0, _ := c.Get(0)
	if len(ids0) != 0 {
		t.Fatalf("Get(0) = %v, want empty row untouched by row 1's resize", ids0)
	}
}
