package domain

import (
	sharedDomain "github.com/davicafu/hexaquery/internal/shared/domain"
)

// ---------------- Implementaciones concretas ----------------

// Usuarios sin baneo (Active) o con baneo (!Active)
type ActiveCriteria struct {
	Active bool
}

func (c ActiveCriteria) ToConditions() []sharedDomain.Criterion {
	if c.Active {
		return []sharedDomain.Criterion{sharedDomain.IsNull("banned_at")}
	}
	return []sharedDomain.Criterion{sharedDomain.NotNull("banned_at")}
}

// Email terminado en @dominio, sin distinguir mayúsculas
type EmailDomainCriteria struct {
	Domain string
}

func (c EmailDomainCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "email", Op: sharedDomain.OpILike, Value: "%@" + c.Domain}}
}
