package query

// ---------- Paginación ----------

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Page es una paginación por offset. El motor de consultas no la usa; la
// aplican los repositorios al ejecutar el Scope.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica el límite por defecto y el máximo.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
