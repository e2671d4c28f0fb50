package game

// Transition reports what a swing result did to the state so the caller
// knows which frames to fan out.
type Transition struct {
	RunsScored    int
	Walk          bool
	OutRecorded   bool
	OutKind       string
	InningChanged bool
	GameEnded     bool
}

// Apply mutates s with one resolved swing result. Counts are allowed to hit
// their threshold (3 strikes, 4 balls, 3 outs) only inside this call; every
// threshold triggers its reset before Apply returns.
func Apply(s *GameState, res SwingResult) (Transition, error) {
	if err := ValidateSwingResult(res); err != nil {
		return Transition{}, err
	}
	var tr Transition
	switch res.Outcome {
	case OutcomeStrike:
		s.Strikes++
		if s.Strikes >= 3 {
			recordOut(s, "strikeout", &tr)
		}
	case OutcomeBall:
		s.Balls++
		if s.Balls >= 4 {
			applyWalk(s, &tr)
		}
	case OutcomeHit:
		applyHit(s, res.Bases, &tr)
	case OutcomeOut:
		recordOut(s, res.Kind, &tr)
	}
	return tr, nil
}

// applyWalk puts the batter on first without cascading forces for runners
// already aboard. Real baseball forces a runner ahead when the preceding
// base is occupied; this engine deliberately does not.
func applyWalk(s *GameState, tr *Transition) {
	s.Bases[0] = true
	s.Balls = 0
	s.Strikes = 0
	tr.Walk = true
}

func applyHit(s *GameState, bases int, tr *Transition) {
	for i := 2; i >= 0; i-- {
		if !s.Bases[i] {
			continue
		}
		s.Bases[i] = false
		if i+bases >= 3 {
			scoreRun(s, tr)
		} else {
			s.Bases[i+bases] = true
		}
	}
	if bases == 4 {
		scoreRun(s, tr)
	} else {
		s.Bases[bases-1] = true
	}
	s.Balls = 0
	s.Strikes = 0
}

func scoreRun(s *GameState, tr *Transition) {
	if s.BattingSide() == SideHome {
		s.HomeScore++
	} else {
		s.AwayScore++
	}
	tr.RunsScored++
}

func recordOut(s *GameState, kind string, tr *Transition) {
	s.Outs++
	s.Balls = 0
	s.Strikes = 0
	tr.OutRecorded = true
	tr.OutKind = kind
	if s.Outs >= 3 {
		endInning(s, tr)
	}
}

func endInning(s *GameState, tr *Transition) {
	s.Outs = 0
	s.Bases = [3]bool{}
	if !s.TopOfInning {
		s.Inning++
	}
	s.TopOfInning = !s.TopOfInning
	tr.InningChanged = true
	if s.Inning > 9 && s.HomeScore != s.AwayScore {
		tr.GameEnded = true
	}
}

// Winner is only meaningful once the transition reported GameEnded.
func (g *GameState) Winner() Side {
	if g.HomeScore > g.AwayScore {
		return SideHome
	}
	return SideAway
}
