package tournament

import "github.com/arsalan-rana/cricket-bracket/models"

// ChipType names the two one-use-per-phase chips.
type ChipType string

const (
	ChipDoubleUp ChipType = "doubleUp"
	ChipWildcard ChipType = "wildcard"
)

// ToggleWildcard flips a pick between the fixture's two teams. The wildcard
// is a toggle, not a free re-pick: team1 becomes team2 and vice versa, and
// with no existing pick the toggle lands on team2. Applying it twice returns
// the original pick.
func ToggleWildcard(fixture models.Fixture, currentPick string) string {
	switch currentPick {
	case fixture.Team1:
		return fixture.Team2
	case fixture.Team2:
		return fixture.Team1
	default:
		return fixture.Team2
	}
}
