package period

import "time"

// Period is one bounded competitive window (typically a month of wars).
// At most one period is active at a time; activating a new one
// deactivates all others in the same transaction.
type Period struct {
	ID        int        `json:"id"`
	Name      string     `json:"nombre"`
	Month     string     `json:"mes"`
	Year      int        `json:"año"`
	TotalWars int        `json:"totalGuerras"`
	StartDate time.Time  `json:"fechaInicio"`
	EndDate   *time.Time `json:"fechaFin,omitempty"`
	Active    bool       `json:"activo"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// SpanishMonth names t's month the way exported periods always have.
func SpanishMonth(t time.Time) string {
	return spanishMonths[t.Month()-1]
}
