package game

import "errors"

var ErrIllegalAction = errors.New("illegal_action")
var ErrInvalidResult = errors.New("invalid_swing_result")

// ValidateTurn gates state-affecting actions on whose turn it is. A pitch
// belongs to the fielding side, a swing to the batting side. Steals,
// substitutions and chat are advisory and never rejected.
func ValidateTurn(s *GameState, action ActionType, playerSide Side) error {
	switch action {
	case ActionPitch:
		if playerSide != s.FieldingSide() {
			return ErrIllegalAction
		}
		return nil
	case ActionSwing:
		if playerSide != s.BattingSide() {
			return ErrIllegalAction
		}
		return nil
	case ActionSteal, ActionSubstitution, ActionChat:
		return nil
	default:
		return ErrIllegalAction
	}
}

func ValidateSwingResult(res SwingResult) error {
	switch res.Outcome {
	case OutcomeStrike, OutcomeBall:
		return nil
	case OutcomeHit:
		if res.Bases < 1 || res.Bases > 4 {
			return ErrInvalidResult
		}
		return nil
	case OutcomeOut:
		if res.Kind == "" {
			return ErrInvalidResult
		}
		return nil
	default:
		return ErrInvalidResult
	}
}
