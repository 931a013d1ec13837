package dto

// LoginRequest acepta username o email como identificador.
type LoginRequest struct {
	Username string `json:"username" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// Identifier devuelve el identificador informado (username tiene prioridad).
func (r LoginRequest) Identifier() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

// LoginResponse par access/refresh más el contexto del usuario.
type LoginResponse struct {
	Access      string             `json:"access"`
	Refresh     string             `json:"refresh"`
	User        UserResponse       `json:"user"`
	Tenant      *TenantResponse    `json:"tenant"`
	Warehouse   *WarehouseResponse `json:"warehouse"`
	Permissions []string           `json:"permissions"`
}

// RefreshRequest entrada de POST /auth/jwt/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// RefreshResponse nuevo access.
type RefreshResponse struct {
	Access string `json:"access"`
}

// VerifyRequest entrada de POST /auth/jwt/verify.
type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyCodeRequest verificación de correo con código de 6 dígitos.
type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResendCodeRequest reenvío de código.
type ResendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ContactRequest formulario público de contacto.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}
