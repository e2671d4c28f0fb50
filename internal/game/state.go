package game

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

type ActionType string

const (
	ActionPitch        ActionType = "pitch"
	ActionSwing        ActionType = "swing"
	ActionSteal        ActionType = "steal"
	ActionSubstitution ActionType = "substitution"
	ActionChat         ActionType = "chat"
)

// GameState is the canonical scoreboard for one match. Bases are indexed
// first, second, third.
type GameState struct {
	Inning         int     `json:"inning"`
	Outs           int     `json:"outs"`
	HomeScore      int     `json:"homeScore"`
	AwayScore      int     `json:"awayScore"`
	TopOfInning    bool    `json:"isTopOfInning"`
	Bases          [3]bool `json:"bases"`
	Balls          int     `json:"balls"`
	Strikes        int     `json:"strikes"`
	CurrentBatter  string  `json:"currentBatter"`
	CurrentPitcher string  `json:"currentPitcher"`
}

func NewGameState() GameState {
	return GameState{
		Inning:      1,
		TopOfInning: true,
	}
}

// BattingSide is derived from the half-inning: away bats in the top.
func (g *GameState) BattingSide() Side {
	if g.TopOfInning {
		return SideAway
	}
	return SideHome
}

func (g *GameState) FieldingSide() Side {
	return g.BattingSide().Opponent()
}

func (g *GameState) RunnersOn() int {
	n := 0
	for _, occupied := range g.Bases {
		if occupied {
			n++
		}
	}
	return n
}

type SwingOutcome string

const (
	OutcomeStrike SwingOutcome = "strike"
	OutcomeBall   SwingOutcome = "ball"
	OutcomeHit    SwingOutcome = "hit"
	OutcomeOut    SwingOutcome = "out"
)

// SwingResult is the resolved outcome of one pitch/swing exchange, supplied
// by the client and validated at the boundary. Bases is 1..4 for hits;
// Kind names the out (strikeout, flyout, groundout, ...).
type SwingResult struct {
	Outcome SwingOutcome `json:"outcome"`
	Bases   int          `json:"bases,omitempty"`
	Kind    string       `json:"kind,omitempty"`
}
