package model

// SchoolData is the identity of the logged-in school as returned by the
// remote auth service.
type SchoolData struct {
	Username      string `json:"username"`
	SchoolName    string `json:"school_name"`
	PrincipalName string `json:"principal_name"`
	Board         string `json:"board"`
	Address       string `json:"address"`
	IsActive      bool   `json:"is_active"`
	AdminFlag     bool   `json:"is_admin,omitempty"`
}

// IsAdmin treats the built-in "admin" account as an administrator even when
// the service does not flag it.
func (s *SchoolData) IsAdmin() bool {
	return s.AdminFlag || s.Username == "admin"
}

// Session is the per-login context handed to handlers.
type Session struct {
	ID     string      `json:"session_id"`
	School *SchoolData `json:"school"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	School    *SchoolData `json:"school"`
	IsAdmin   bool        `json:"is_admin"`
}
