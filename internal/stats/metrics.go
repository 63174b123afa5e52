package stats

import "math"

// Derived metrics are pure functions of (attacks, stars, totalWars) and
// are computed at read time, never stored.

// ExpectedAttacks is two attacks per war.
func ExpectedAttacks(totalWars int) int {
	return totalWars * 2
}

// MaxStars is the most stars attainable with the given attacks.
func MaxStars(attacks int) int {
	return attacks * MaxStarsPerAttack
}

// Participation is the share of expected attacks actually used, in percent.
func Participation(attacks, expectedAttacks int) float64 {
	if expectedAttacks <= 0 {
		return 0
	}
	return float64(attacks) / float64(expectedAttacks) * 100
}

// Effectiveness is the share of the maximum possible stars earned, in percent.
func Effectiveness(attacks, stars int) float64 {
	if attacks <= 0 {
		return 0
	}
	return float64(stars) / float64(MaxStars(attacks)) * 100
}

// Performance blends effectiveness (60%) and participation (40%).
func Performance(effectiveness, participation float64) float64 {
	return effectiveness*0.6 + participation*0.4
}

// Compute fills the derived fields of a row. Performance is blended from
// the unrounded inputs; all three percentages are rounded to two decimals
// for output.
func Compute(totalWars int, s StatWithPlayer) Row {
	expected := ExpectedAttacks(totalWars)
	participation := Participation(s.Attacks, expected)
	effectiveness := Effectiveness(s.Attacks, s.Stars)
	performance := Performance(effectiveness, participation)

	return Row{
		ID:              s.ID,
		PlayerID:        s.PlayerID,
		Name:            s.PlayerName,
		TownHall:        s.TownHall,
		Attacks:         s.Attacks,
		Stars:           s.Stars,
		ExpectedAttacks: expected,
		Participation:   round2(participation),
		Effectiveness:   round2(effectiveness),
		Performance:     round2(performance),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
