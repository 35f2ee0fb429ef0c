package dto

// UserCreateRequest provisions a student or instructor account from the admin
// panel. The role comes from the route, not the payload.
type UserCreateRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UserUpdateRequest mutates profile fields. Passwords are rejected here; they
// go through the dedicated password operations.
type UserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// UserResetPasswordRequest is the admin-side password reset payload.
type UserResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
