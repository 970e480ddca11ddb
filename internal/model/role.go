package model

import "fmt"

// Role is the account type stored in usuarios.tipo_usuario.
type Role uint8

const (
	RoleCustomer Role = 1 // cliente
	RoleStaff    Role = 2 // empleado
	RoleAdmin    Role = 3 // administrador
)

// ParseRole converts the numeric column/claim value into a Role.
func ParseRole(n int) (Role, bool) {
	switch r := Role(n); r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return r, true
	}
	return 0, false
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(int(r))
	return ok
}

// IsStaff is true for employees and administrators.
func (r Role) IsStaff() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	case RoleCustomer:
		return false
	}
	return false
}

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "cliente"
	case RoleStaff:
		return "empleado"
	case RoleAdmin:
		return "administrador"
	}
	return fmt.Sprintf("rol(%d)", uint8(r))
}
