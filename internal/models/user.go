package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRoleCitizen  = "citizen"
	UserRoleOperator = "operator"
)

// User описывает гражданина или сотрудника, разбирающего обращения.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         *string   `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// IsOperator сообщает, может ли пользователь модерировать обращения.
func (u *User) IsOperator() bool {
	return u.Role == UserRoleOperator
}
