package core

import (
	"reflect"
	"testing"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"First Name", "firstname"},
		{"first_name", "firstname"},
		{"E MAIL_Address", "emailaddress"},
		{"phone", "phone"},
		{"  ", ""},
		{"Prénom", "prénom"},
	}

	for _, tt := range tests {
		if got := NormalizeColumnName(tt.in); got != tt.want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeColumns(t *testing.T) {
	ds := mustDataset(t, []string{"First Name", "E_Mail"}, [][]Cell{texts("ann", "a@x.com")})

	out, warnings := NormalizeColumns(ds)

	if want := []string{"firstname", "email"}; !reflect.DeepEqual(out.Columns, want) {
		t.Errorf("Columns = %v, want %v", out.Columns, want)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !rowsEqual(out.Rows[0], ds.Rows[0]) {
		t.Error("cells changed")
	}
	if ds.Columns[0] != "First Name" {
		t.Error("input dataset was modified")
	}
}

func TestNormalizeColumns_Idempotent(t *testing.T) {
	ds := mustDataset(t, []string{"First Name", "Last_Name", "phone"}, [][]Cell{texts("a", "b", "c")})

	once, _ := NormalizeColumns(ds)
	twice, _ := NormalizeColumns(once)

	if !once.Equal(twice) {
		t.Errorf("second normalization changed the dataset: %v -> %v", once.Columns, twice.Columns)
	}
}

func TestNormalizeColumns_CollisionLastWriteWins(t *testing.T) {
	ds := mustDataset(t,
		[]string{"First Name", "id", "first_name"},
		[][]Cell{texts("early", "1", "late")},
	)

	out, warnings := NormalizeColumns(ds)

	if want := []string{"firstname", "id"}; !reflect.DeepEqual(out.Columns, want) {
		t.Fatalf("Columns = %v, want %v", out.Columns, want)
	}
	if got := out.Rows[0][0].Str; got != "late" {
		t.Errorf("collided column = %q, want data from the later column", got)
	}
	if len(warnings) != 1 || warnings[0].Code != WarnColumnCollision {
		t.Fatalf("warnings = %v, want one column_collision", warnings)
	}
	if want := []string{"First Name", "first_name"}; !reflect.DeepEqual(warnings[0].Columns, want) {
		t.Errorf("warning columns = %v, want %v", warnings[0].Columns, want)
	}
}

func TestNormalizeColumns_Empty(t *testing.T) {
	out, warnings := NormalizeColumns(Empty())
	if len(out.Columns) != 0 || len(out.Rows) != 0 || len(warnings) != 0 {
		t.Errorf("NormalizeColumns(Empty()) = %v, %v", out, warnings)
	}
}

func TestSelectColumns(t *testing.T) {
	ds := mustDataset(t,
		[]string{"id", "email", "phone", "notes"},
		[][]Cell{texts("1", "a@b.com", "555123", "x")},
	)

	tests := []struct {
		name         string
		want         []string
		wantColumns  []string
		wantWarnings []WarningCode
		wantMissing  []string
	}{
		{
			name:        "dataset order wins",
			want:        []string{"phone", "id"},
			wantColumns: []string{"id", "phone"},
		},
		{
			name:         "missing names reported",
			want:         []string{"email", "fax", "zip", "fax"},
			wantColumns:  []string{"email"},
			wantWarnings: []WarningCode{WarnColumnsMissing},
			wantMissing:  []string{"fax", "zip"},
		},
		{
			name:         "empty intersection",
			want:         []string{"fax"},
			wantColumns:  []string{},
			wantWarnings: []WarningCode{WarnColumnsMissing, WarnNoColumnsMatched},
			wantMissing:  []string{"fax"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, warnings := SelectColumns(ds, tt.want)

			if !reflect.DeepEqual(out.Columns, tt.wantColumns) {
				t.Errorf("Columns = %v, want %v", out.Columns, tt.wantColumns)
			}
			var codes []WarningCode
			for _, w := range warnings {
				codes = append(codes, w.Code)
			}
			if !reflect.DeepEqual(codes, tt.wantWarnings) {
				t.Errorf("warning codes = %v, want %v", codes, tt.wantWarnings)
			}
			if tt.wantMissing != nil && !reflect.DeepEqual(warnings[0].Columns, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", warnings[0].Columns, tt.wantMissing)
			}
		})
	}
}

func TestSelectColumns_EmptyIntersectionHasNoRows(t *testing.T) {
	ds := mustDataset(t, []string{"a"}, [][]Cell{texts("1"), texts("2")})

	out, _ := SelectColumns(ds, []string{"b"})

	if out.Len() != 0 || len(out.Columns) != 0 {
		t.Errorf("expected empty dataset, got %d columns, %d rows", len(out.Columns), out.Len())
	}
}
