package core

import (
	"strings"
	"testing"
)

func TestCheckPhone(t *testing.T) {
	tests := []struct {
		name       string
		in         Cell
		wantValue  string
		wantStatus OutcomeStatus
	}{
		{"international formatting stripped", Text("+1 (555) 123-4567"), "15551234567", Repaired},
		{"digits only unchanged", Text("5551234567"), "5551234567", Unchanged},
		{"minimum length", Text("555123"), "555123", Unchanged},
		{"maximum length", Text(strings.Repeat("9", MaxPhoneDigits)), strings.Repeat("9", MaxPhoneDigits), Unchanged},
		{"too short", Text("12"), "", Rejected},
		{"too long", Text(strings.Repeat("1", MaxPhoneDigits+1)), "", Rejected},
		{"letters only", Text("call me"), "", Rejected},
		{"numeric cell rendered without exponent", Number(5551234567), "5551234567", Repaired},
		{"fractional number too short", Number(5.5), "", Rejected},
		{"null rejected", Null(), "", Rejected},
		{"empty string unchanged", Text(""), "", Unchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckPhone(tt.in)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Value.String() != tt.wantValue {
				t.Errorf("value = %q, want %q", got.Value.String(), tt.wantValue)
			}
		})
	}
}

func TestCheckPhone_Idempotent(t *testing.T) {
	for _, in := range []Cell{Text("+44 20 7946 0958"), Text("12"), Number(4155550100), Null()} {
		first := CheckPhone(in)
		second := CheckPhone(first.Value)
		if second.Status != Unchanged {
			t.Errorf("CheckPhone(%v) second pass = %v, want unchanged", in, second.Status)
		}
	}
}

func TestValidPhone_RejectsPlus(t *testing.T) {
	if validPhone("+15551234567") {
		t.Error("validPhone should reject a retained plus sign")
	}
}
