package users

import "time"

// Role define los roles de la plataforma.
// @Enum user, admin, auditor
type Role string

const (
	RoleUser    Role = "user"    // encuestador: crea y llena formularios
	RoleAdmin   Role = "admin"   // administra ciudades y preguntas
	RoleAuditor Role = "auditor" // solo lectura: auditoría y export
)

func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleAuditor:
		return true
	}
	return false
}

// User representa una cuenta de la plataforma de censo.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role

	// CityIDs acota a un admin a ciertas ciudades; vacío = sin restricción.
	CityIDs []string

	CreatedAt time.Time
	UpdatedAt time.Time
}
