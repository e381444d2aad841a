package planner

import (
	"errors"
	"testing"

	"github.com/rahul/pathwise/internal/goal"
)

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare", `[1]`, `[1]`, false},
		{"prose", "Sure! [1, 2] hope it helps", `[1, 2]`, false},
		{"fenced", "```json\n[{\"a\": [1]}]\n```", `[{"a": [1]}]`, false},
		{"none", "no array here", "", true},
		{"reversed", "] then [", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractArray(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePlan(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantIndex int // -2 means success
	}{
		{"ok", `[{"title":"a","description":"b","duration":"1 hour","priority":"Low","order":1}]`, -2},
		{"order zero accepted", `[{"title":"a","description":"b","duration":"1 hour","priority":"Low","order":0}]`, -2},
		{"order as text", `[{"title":"a","description":"b","duration":"1 hour","priority":"Low","order":"3"}]`, -2},
		{"empty array", `[]`, -1},
		{"not json", `[oops]`, -1},
		{"not objects", `[1, 2]`, -1},
		{"null element", `[null]`, 0},
		{"missing order", `[{"title":"a","description":"b","duration":"1 hour","priority":"Low"}]`, 0},
		{"empty title", `[{"title":"","description":"b","duration":"1 hour","priority":"Low","order":1}]`, 0},
		{"missing priority", `[{"title":"a","description":"b","duration":"1 hour","order":1}]`, 0},
		{"null description", `[{"title":"a","description":null,"duration":"1 hour","priority":"Low","order":1}]`, 0},
		{"bad order", `[{"title":"a","description":"b","duration":"1 hour","priority":"Low","order":"first"}]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts, err := DecodePlan([]byte(tt.in))
			if tt.wantIndex == -2 {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if len(drafts) != 1 {
					t.Fatalf("expected 1 draft, got %d", len(drafts))
				}
				return
			}
			var mal *MalformedPlanError
			if !errors.As(err, &mal) {
				t.Fatalf("expected MalformedPlanError, got %v", err)
			}
			if mal.Index != tt.wantIndex {
				t.Errorf("index = %d, want %d", mal.Index, tt.wantIndex)
			}
		})
	}
}

func TestDecodePlan_NormalizesPriority(t *testing.T) {
	drafts, err := DecodePlan([]byte(`[
		{"title":"a","description":"b","duration":"1 hour","priority":"high","order":1},
		{"title":"a","description":"b","duration":"1 hour","priority":7,"order":2}
	]`))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range drafts {
		if d.Priority != goal.PriorityMedium {
			t.Errorf("order %d: priority %q, want Medium", d.Order, d.Priority)
		}
	}
}
