package dto

// Request payloads are explicit, statically-typed structs; unknown fields are
// simply not bound and missing required fields fail validation up front.

type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type SetRoleDTO struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type SetActiveDTO struct {
	Active *bool `json:"active" validate:"required"`
}

type DefaultAvatarDTO struct {
	URL string `json:"url" validate:"required,url"`
}

// Birthday travels as "2006-01-02".

type ContactCreateDTO struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=5,max=50"`
	Birthday  string `json:"birthday" validate:"required,datetime=2006-01-02"`
	Extra     string `json:"extra"`
}

type ContactUpdateDTO struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,min=5,max=50"`
	Birthday  *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Extra     *string `json:"extra"`
}

// Responses.

type UserOut struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	IsActive   bool   `json:"is_active"`
	IsVerified bool   `json:"is_verified"`
	Role       string `json:"role"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

type TokenOut struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
}

type ContactOut struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	Extra     string `json:"extra,omitempty"`
	OwnerID   uint   `json:"owner_id"`
}
