package domain

import "testing"

func TestScopeString(t *testing.T) {
	s := Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	if got := s.String(); got != "openff-sage21-solvation" {
		t.Errorf("String() = %q, want %q", got, "openff-sage21-solvation")
	}
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		name       string
		serialized string
		want       Scope
		wantErr    bool
	}{
		{"valid", "openff-sage21-solvation", Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}, false},
		{"underscores", "lab_42-q3_2026-batch_001", Scope{Org: "lab_42", Campaign: "q3_2026", Project: "batch_001"}, false},
		{"two parts", "openff-sage21", Scope{}, true},
		{"four parts", "a-b-c-d", Scope{}, true},
		{"empty", "", Scope{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScope(tt.serialized)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseScope(%q) succeeded, want error", tt.serialized)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScope(%q) failed: %v", tt.serialized, err)
			}
			if got != tt.want {
				t.Errorf("ParseScope(%q) = %+v, want %+v", tt.serialized, got, tt.want)
			}
		})
	}
}

func TestScopeRoundTrip(t *testing.T) {
	want := Scope{Org: "openff", Campaign: "sage21", Project: "solvation"}
	got, err := ParseScope(want.String())
	if err != nil {
		t.Fatalf("failed to parse serialized scope: %v", err)
	}
	if got != want {
		t.Errorf("round trip changed scope: got %+v, want %+v", got, want)
	}
}

func TestScopeIsZero(t *testing.T) {
	if !(Scope{}).IsZero() {
		t.Error("empty scope should be zero")
	}
	if (Scope{Org: "openff"}).IsZero() {
		t.Error("partially set scope should not be zero")
	}
}
