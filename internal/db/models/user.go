package models

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type UserRole string

const (
	UserRoleEmployee UserRole = "employee"
	UserRoleManager  UserRole = "manager"
	UserRoleDirector UserRole = "director"
)

var userRoleNames = map[UserRole]string{
	UserRoleEmployee: "сотрудник",
	UserRoleManager:  "менеджер",
	UserRoleDirector: "управляющий",
}

var userRoleRanks = map[UserRole]int{
	UserRoleEmployee: 1,
	UserRoleManager:  2,
	UserRoleDirector: 3,
}

func (r UserRole) String() string {
	return string(r)
}

// Title is the role name shown in chats, e.g. "Менеджер".
func (r UserRole) Title() string {
	name, ok := userRoleNames[r]
	if !ok {
		return cases.Title(language.English).String(r.String())
	}
	return cases.Title(language.Russian).String(name)
}

// AtLeast reports whether r ranks the same as or above other.
func (r UserRole) AtLeast(other UserRole) bool {
	return userRoleRanks[r] >= userRoleRanks[other]
}

type User struct {
	ID         int      `json:"id" pg:",pk"`
	Login      string   `json:"login" pg:",notnull,unique"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	TelegramID int64    `json:"telegram_id" pg:",unique"`
	Role       UserRole `json:"role" pg:"type:UserRole,notnull,default:'employee'"`
	IsActive   bool     `json:"is_active" pg:",notnull,use_zero,default:true"`
}

func (u *User) HasRole(role UserRole) bool {
	return u != nil && u.Role.AtLeast(role)
}

// DisplayName renders "First (@login)" when a first name is known.
func (u *User) DisplayName() string {
	if u.FirstName == "" {
		return "@" + u.Login
	}
	return u.FirstName + " (@" + u.Login + ")"
}
