package game

import (
	"errors"
	"testing"
)

func TestPitchOnlyFromFieldingSide(t *testing.T) {
	s := NewGameState() // top of 1st: away bats, home fields

	if err := ValidateTurn(&s, ActionPitch, SideHome); err != nil {
		t.Fatalf("home pitch in top half rejected: %v", err)
	}
	if err := ValidateTurn(&s, ActionPitch, SideAway); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("away pitch in top half: err = %v, want ErrIllegalAction", err)
	}

	s.TopOfInning = false
	if err := ValidateTurn(&s, ActionPitch, SideAway); err != nil {
		t.Fatalf("away pitch in bottom half rejected: %v", err)
	}
	if err := ValidateTurn(&s, ActionPitch, SideHome); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("home pitch in bottom half: err = %v, want ErrIllegalAction", err)
	}
}

func TestSwingOnlyFromBattingSide(t *testing.T) {
	s := NewGameState()

	if err := ValidateTurn(&s, ActionSwing, SideAway); err != nil {
		t.Fatalf("away swing in top half rejected: %v", err)
	}
	if err := ValidateTurn(&s, ActionSwing, SideHome); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("home swing in top half: err = %v, want ErrIllegalAction", err)
	}
}

func TestAdvisoryActionsAlwaysLegal(t *testing.T) {
	s := NewGameState()
	for _, action := range []ActionType{ActionSteal, ActionSubstitution, ActionChat} {
		for _, side := range []Side{SideHome, SideAway} {
			if err := ValidateTurn(&s, action, side); err != nil {
				t.Fatalf("%s from %s rejected: %v", action, side, err)
			}
		}
	}
}
