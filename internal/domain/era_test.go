package domain

import (
	"testing"
)

func TestParseDirection(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test valid directions
	d, err := ParseDirection("past")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != DirectionPast {
		t.Errorf("Expected direction %s, got %s", DirectionPast, d)
	}

	d, err = ParseDirection("future")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if d != DirectionFuture {
		t.Errorf("Expected direction %s, got %s", DirectionFuture, d)
	}

	// Test invalid directions
	invalid := []string{"", "sideways", "PAST", "Future", "past "}
	for _, s := range invalid {
		if _, err := ParseDirection(s); err != ErrInvalidDirection {
			t.Errorf("Expected error %v for %q, got %v", ErrInvalidDirection, s, err)
		}
	}
}

func TestDirectionIsValid(t *testing.T) {
	t.Parallel() // Enable parallel execution
	if !DirectionPast.IsValid() {
		t.Error("Expected past to be valid")
	}
	if !DirectionFuture.IsValid() {
		t.Error("Expected future to be valid")
	}
	if Direction("sideways").IsValid() {
		t.Error("Expected sideways to be invalid")
	}
	if Direction("").IsValid() {
		t.Error("Expected empty direction to be invalid")
	}
}

func TestErasFor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	// Test past era set
	past, err := ErasFor(DirectionPast)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(past) != 6 {
		t.Errorf("Expected 6 past eras, got %d", len(past))
	}

	// Test future era set
	future, err := ErasFor(DirectionFuture)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(future) != 6 {
		t.Errorf("Expected 6 future eras, got %d", len(future))
	}

	// Test the two sets do not overlap
	seen := make(map[string]bool, len(past))
	for _, era := range past {
		if era == "" {
			t.Error("Expected non-empty past era label")
		}
		seen[era] = true
	}
	for _, era := range future {
		if era == "" {
			t.Error("Expected non-empty future era label")
		}
		if seen[era] {
			t.Errorf("Expected era %q to appear in one direction only", era)
		}
	}

	// Test invalid direction
	if _, err := ErasFor(Direction("sideways")); err != ErrInvalidDirection {
		t.Errorf("Expected error %v, got %v", ErrInvalidDirection, err)
	}
}

func TestErasForReturnsCopy(t *testing.T) {
	t.Parallel() // Enable parallel execution
	first, err := ErasFor(DirectionPast)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	first[0] = "mutated"

	second, err := ErasFor(DirectionPast)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if second[0] == "mutated" {
		t.Error("Expected ErasFor to return an independent copy")
	}
}
