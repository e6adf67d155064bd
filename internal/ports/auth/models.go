package auth

// Roles conocidos por la plataforma.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleAuditor = "auditor"
)

// Claims representa la información extraída del token.
// CityIDs acota a un admin a ciertas ciudades; vacío = sin restricción.
type Claims struct {
	UserID  string
	Email   string
	Role    string
	CityIDs []string
}

// CanManageCity indica si los claims permiten administrar la ciudad dada.
func (c Claims) CanManageCity(cityID string) bool {
	if c.Role != RoleAdmin {
		return false
	}
	if len(c.CityIDs) == 0 {
		return true
	}
	for _, id := range c.CityIDs {
		if id == cityID {
			return true
		}
	}
	return false
}
