package model

import "time"

// User represents an account as stored in the `usuarios` table.  The
// password hash is never serialized.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	FirstName    – given name.
//	LastName     – family name.
//	Login        – unique, email-shaped login identifier.
//	PasswordHash – bcrypt hashed password.
//	Role         – account type (cliente, empleado, administrador).
//	Phone        – optional phone number.
//	Photo        – optional photo reference.
//	Active       – soft-delete marker.
type User struct {
	ID           uint64    `json:"usuario_id"`
	FirstName    string    `json:"nombre"`
	LastName     string    `json:"apellido"`
	Login        string    `json:"nombre_usuario"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"tipo_usuario"`
	Phone        *string   `json:"celular"`
	Photo        *string   `json:"foto"`
	Active       bool      `json:"activo"`
	CreatedAt    time.Time `json:"creado"`
	UpdatedAt    time.Time `json:"modificado"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
