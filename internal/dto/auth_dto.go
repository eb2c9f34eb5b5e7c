package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarEmpresaRequest creates a tenant plus its first admin profile in a
// single transaction: if the perfil insert fails, the empresa is rolled back.
type RegistrarEmpresaRequest struct {
	NombreEmpresa string `json:"nombre_empresa" validate:"required,min=2,max=120"`
	EmailAdmin    string `json:"email_admin"    validate:"required,email"`
	PasswordAdmin string `json:"password_admin" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type CrearPerfilRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Nombre   string `json:"nombre"   validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"rol"      validate:"required,oneof=vendedor admin"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PerfilResponse struct {
	ID      string         `json:"id"`
	Email   string         `json:"email"`
	Nombre  string         `json:"nombre"`
	Rol     string         `json:"rol"`
	Activo  bool           `json:"activo"`
	Empresa EmpresaResumen `json:"empresa"`
}

type EmpresaResumen struct {
	ID         string `json:"id"`
	Nombre     string `json:"nombre"`
	PlanActivo bool   `json:"plan_activo"`
}

type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"` // seconds
	Perfil       PerfilResponse `json:"perfil"`
}
