package model

// User is an account that can book stays or host properties.
type User struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	Avatar       string `db:"avatar" json:"avatar"`
	IsHost       bool   `db:"is_host" json:"isHost"`
}

// RegisterRequest is the request to create a user.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=128"`
	Avatar   string `json:"avatar" validate:"omitempty,max=2048"`
	IsHost   bool   `json:"isHost"`
}

// LoginRequest is the request to authenticate a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the authenticated user and a bearer token.
type LoginResponse struct {
	User
	Token string `json:"token"`
}

// UpdateUserRequest is a partial user update. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=256"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=2048"`
	IsHost   *bool   `json:"isHost"`
	Password *string `json:"password" validate:"omitempty,min=1,max=128"`
}

// Empty reports whether the update carries no fields.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Avatar == nil && r.IsHost == nil && r.Password == nil
}
