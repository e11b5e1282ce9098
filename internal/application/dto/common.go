package dto

// Límites de paginación por offset para catálogos (productos y bodegas).
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PageRequest paginación por offset leída del query string.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize acota Limit a [1, MaxPageLimit] (0 o negativo = DefaultPageLimit) y Offset a >= 0.
func (p *PageRequest) Normalize() {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageLimit
	case p.Limit > MaxPageLimit:
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable y apto para comparar en clientes.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
