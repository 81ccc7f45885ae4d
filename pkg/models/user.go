package models

import (
	"golang.org/x/exp/slices"
)

type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

var Roles = []Role{RoleStaff, RoleAdmin}

func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// User is a system account of the registrar's office.
type User struct {
	DefaultModel
	Username     string `json:"username" gorm:"uniqueIndex;size:64" example:"registrar"`
	PasswordHash string `json:"-" gorm:"size:255"`
	Role         Role   `json:"role" gorm:"size:16" example:"staff"`
}
