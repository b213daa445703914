package controllers

import (
	"net/http"

	"go-medicamp/logging"
	"go-medicamp/middleware"
	"go-medicamp/utils"
)

// AuthController issues and clears the session cookie
type AuthController struct {
	Tokens     *utils.TokenManager
	Production bool
}

// NewAuthController creates a new AuthController
func NewAuthController(tokens *utils.TokenManager, production bool) *AuthController {
	return &AuthController{Tokens: tokens, Production: production}
}

type tokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// IssueToken signs the email from the body into the token cookie
func (ac *AuthController) IssueToken(w http.ResponseWriter, r *http.Request) {
	var body tokenRequest
	if !decodeValid(w, r, &body) {
		return
	}

	token, err := ac.Tokens.GenerateJWT(body.Email)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to sign token")
		writeMessage(w, http.StatusInternalServerError, "Error generating token")
		return
	}

	cookie := ac.cookie(token)
	cookie.MaxAge = int(ac.Tokens.TTL().Seconds())
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the token cookie
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := ac.cookie("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// cookie builds the token cookie. Production serves a cross-site client, so
// the cookie must be Secure with SameSite=None.
func (ac *AuthController) cookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if ac.Production {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}
