package history

import "time"

// Field values and the packed actor format below are the log's observable
// contract; existing exported logs compare against these exact strings.
const (
	FieldAttacks    = "ataques"
	FieldStars      = "estrellas"
	FieldAddPlayer  = "agregar_jugador"
	FieldRegister   = "registro"
	FieldRoleChange = "cambio_rol"

	// SystemRegistrationActor is recorded for self-service registrations.
	SystemRegistrationActor = "Sistema (Registro público)"
)

// Entry is one append-only change record. PlayerName and ChangedBy are
// denormalized snapshots so the log stays readable after the referenced
// entities change or disappear. Role changes and registrations set both
// numeric values to 0 and pack their semantics into ChangedBy.
type Entry struct {
	ID          int       `json:"id"`
	StatisticID *int      `json:"estadisticaId,omitempty"`
	PlayerName  string    `json:"jugadorNombre"`
	Field       string    `json:"campoModificado"`
	OldValue    int       `json:"valorAnterior"`
	NewValue    int       `json:"valorNuevo"`
	ChangedBy   string    `json:"modificadoPor"`
	CreatedAt   time.Time `json:"fecha"`
}
