package models

// ScoringType определяет, как начисляются очки в фазе.
type ScoringType string

const (
	ScoringFixed ScoringType = "fixed"
	ScoringPool  ScoringType = "pool"
)

// WinnerDraw is the sentinel stored as a fixture winner when the official
// result is a draw or no-result.
const WinnerDraw = "DRAW"

// MatchRange is an inclusive range of match numbers belonging to one phase.
type MatchRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r MatchRange) Contains(match int) bool {
	return match >= r.Start && match <= r.End
}

func (r MatchRange) Count() int {
	return r.End - r.Start + 1
}

// Phase представляет стадию турнира со своим дедлайном и правилами подсчёта.
type Phase struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	MatchRange MatchRange `json:"matchRange"`
	// Deadline is a local ISO timestamp ("2026-02-07T00:29:00") interpreted
	// in the tournament timezone.
	Deadline         string      `json:"deadline"`
	ScoringType      ScoringType `json:"scoringType"`
	PointsPerCorrect *float64    `json:"pointsPerCorrect,omitempty"`
	PoolSize         *float64    `json:"poolSize,omitempty"`
	DrawPoints       *float64    `json:"drawPoints,omitempty"`
}

// Fixture представляет матч турнира. Winner выставляется администратором
// после завершения матча и может корректироваться повторно.
type Fixture struct {
	Match        int     `json:"match"`
	Date         string  `json:"date"` // display date, e.g. "7 February"
	Team1        string  `json:"team1"`
	Team2        string  `json:"team2"`
	Venue        string  `json:"venue"`
	AIPrediction *string `json:"aiPrediction,omitempty"`
	Phase        string  `json:"phase"`
	Winner       string  `json:"winner,omitempty"` // team1, team2, DRAW or empty
}

type BonusQuestion struct {
	ID           string  `json:"id"`
	Question     string  `json:"question"`
	AIPrediction *string `json:"aiPrediction,omitempty"`
}

type TeamStyle struct {
	Primary   string  `json:"primary"`
	Secondary string  `json:"secondary"`
	Flag      *string `json:"flag,omitempty"`
}

type ScoringRules struct {
	LatePenaltyPerDay     float64 `json:"latePenaltyPerDay"`
	BonusPointsCap        float64 `json:"bonusPointsCap"`
	BonusPointsPerCorrect float64 `json:"bonusPointsPerCorrect"`
}

type FeatureFlags struct {
	ChipsEnabled          bool `json:"chipsEnabled"`
	BonusQuestionsEnabled bool `json:"bonusQuestionsEnabled"`
	AIPredictionsEnabled  bool `json:"aiPredictionsEnabled"`
	// DoubleUpPhases lists the phase ids where the Double Up chip may be
	// played. Knockout phases are wildcard-only.
	DoubleUpPhases []string `json:"doubleUpPhases"`
}

// TournamentConfig — неизменяемая конфигурация турнира. Загружается один раз
// при старте и передаётся явно во все вызовы движка.
type TournamentConfig struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	Timezone string `json:"timezone"` // IANA, e.g. "America/New_York"
	// FixtureStartTime is the default first-ball time in HH:mm local time.
	FixtureStartTime string `json:"fixtureStartTime"`

	Phases         []Phase              `json:"phases"`
	Fixtures       []Fixture            `json:"fixtures"`
	BonusQuestions []BonusQuestion      `json:"bonusQuestions"`
	Teams          map[string]TeamStyle `json:"teams"`
	Scoring        ScoringRules         `json:"scoring"`
	Features       FeatureFlags         `json:"features"`
}

func (c *TournamentConfig) PhaseByID(phaseID string) *Phase {
	for i := range c.Phases {
		if c.Phases[i].ID == phaseID {
			return &c.Phases[i]
		}
	}
	return nil
}

// PhaseForMatch returns the phase whose match range covers the given match
// number, or nil if no phase claims it.
func (c *TournamentConfig) PhaseForMatch(match int) *Phase {
	for i := range c.Phases {
		if c.Phases[i].MatchRange.Contains(match) {
			return &c.Phases[i]
		}
	}
	return nil
}

func (c *TournamentConfig) FixtureByMatch(match int) *Fixture {
	for i := range c.Fixtures {
		if c.Fixtures[i].Match == match {
			return &c.Fixtures[i]
		}
	}
	return nil
}

func (c *TournamentConfig) FixturesForPhase(phaseID string) []Fixture {
	fixtures := make([]Fixture, 0)
	for _, f := range c.Fixtures {
		if f.Phase == phaseID {
			fixtures = append(fixtures, f)
		}
	}
	return fixtures
}

// BonusPhaseID returns the id of the phase whose submissions carry bonus
// answers. Bonus questions are tied to the opening phase of the tournament.
func (c *TournamentConfig) BonusPhaseID() string {
	if len(c.Phases) == 0 {
		return ""
	}
	return c.Phases[0].ID
}

func (c *TournamentConfig) DoubleUpAllowed(phaseID string) bool {
	for _, id := range c.Features.DoubleUpPhases {
		if id == phaseID {
			return true
		}
	}
	return false
}

func (c *TournamentConfig) TeamStyleFor(team string) *TeamStyle {
	if style, ok := c.Teams[team]; ok {
		return &style
	}
	return nil
}
