package core

import (
	"strings"
	"testing"
)

func TestNewID_Unique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("NewID returned empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewID_TimeOrdered(t *testing.T) {
	// UUID v7 IDs sort lexicographically by creation time
	a := NewID()
	b := NewID()
	if strings.Compare(a.String(), b.String()) > 0 {
		t.Errorf("expected time-ordered IDs, got %s after %s", a, b)
	}
}

func TestParseQuestionID(t *testing.T) {
	if _, err := ParseQuestionID(""); err == nil {
		t.Error("expected error for empty question ID")
	}
	if _, err := ParseQuestionID("   "); err == nil {
		t.Error("expected error for whitespace question ID")
	}
	id, err := ParseQuestionID("q-2026-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "q-2026-001" {
		t.Errorf("expected q-2026-001, got %s", id)
	}
}
