package core

import (
	"math"
	"testing"
)

func TestDropDuplicates(t *testing.T) {
	ds := mustDataset(t,
		[]string{"name", "email"},
		[][]Cell{
			texts("Ann", "a@x.com"),
			texts("Bob", "b@x.com"),
			texts("Ann", "a@x.com"),
			{Text("Cy"), Null()},
			{Text("Cy"), Text("")},
			texts("Bob", "b@x.org"),
		},
	)

	out, removed := DropDuplicates(ds)

	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	want := []string{"Ann", "Bob", "Cy", "Bob"}
	if out.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", out.Len(), len(want))
	}
	for i, name := range want {
		if got := out.Rows[i][0].String(); got != name {
			t.Errorf("row %d = %q, want %q", i, got, name)
		}
	}
	// The first occurrence survives.
	if out.Rows[2][1].Kind != KindNull {
		t.Errorf("kept row 2 email kind = %v, want null", out.Rows[2][1].Kind)
	}
	if ds.Len() != 6 {
		t.Error("input dataset was modified")
	}
}

func TestDropDuplicates_NumberVsText(t *testing.T) {
	ds := mustDataset(t, []string{"v"}, [][]Cell{{Number(1)}, {Text("1")}, {Number(1)}})

	out, removed := DropDuplicates(ds)

	if removed != 1 || out.Len() != 2 {
		t.Errorf("removed = %d, len = %d; want 1, 2", removed, out.Len())
	}
}

func TestDropDuplicates_NoRows(t *testing.T) {
	out, removed := DropDuplicates(mustDataset(t, []string{"a"}, nil))
	if removed != 0 || out.Len() != 0 {
		t.Errorf("got removed=%d len=%d", removed, out.Len())
	}
}

func TestDropDuplicates_NaN(t *testing.T) {
	ds := mustDataset(t, []string{"v", "w"}, [][]Cell{
		{Number(math.NaN()), Text("a")},
		{Number(math.Float64frombits(0x7ff8000000000001)), Text("a")},
		{Number(math.NaN()), Text("b")},
	})

	out, removed := DropDuplicates(ds)

	if removed != 1 || out.Len() != 2 {
		t.Errorf("removed = %d, len = %d; want 1, 2", removed, out.Len())
	}
}
