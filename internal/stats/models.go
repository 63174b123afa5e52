package stats

import "time"

const (
	// MaxPlayersPerPeriod caps a period's roster.
	MaxPlayersPerPeriod = 50
	// MaxStarsPerAttack bounds stars to attacks×3.
	MaxStarsPerAttack = 3
)

// Statistic is one player's attack/star tally within one period. The
// (period, player) pair is unique; deleting a statistic removes the player
// from that period only, never globally.
type Statistic struct {
	ID        int       `json:"id"`
	PeriodID  int       `json:"periodoId"`
	PlayerID  int       `json:"jugadorId"`
	Attacks   int       `json:"ataques"`
	Stars     int       `json:"estrellas"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatWithPlayer is a statistic joined with its player's name and town
// hall, as stored. Derived metrics live on Row.
type StatWithPlayer struct {
	Statistic
	PlayerName string `json:"-"`
	TownHall   int    `json:"-"`
}

// Row is one entry of the computed statistics view: stored values plus
// metrics derived at read time. Never persisted.
type Row struct {
	ID              int     `json:"id"`
	PlayerID        int     `json:"jugadorId"`
	Name            string  `json:"nombre"`
	TownHall        int     `json:"th"`
	Attacks         int     `json:"ataques"`
	Stars           int     `json:"estrellas"`
	ExpectedAttacks int     `json:"ataquesEsperados"`
	Participation   float64 `json:"participacion"`
	Effectiveness   float64 `json:"efectividad"`
	Performance     float64 `json:"desempeno"`
}

// ImportRow is one spreadsheet row as parsed by the client.
type ImportRow struct {
	Name     string `json:"nombre"`
	TownHall int    `json:"th"`
	Attacks  int    `json:"ataques"`
	Stars    int    `json:"estrellas"`
}
