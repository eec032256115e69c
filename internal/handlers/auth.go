package handlers

import (
	"net/http"
	"net/url"

	"github.com/diewo77/acme-dashboard/auth"
	"github.com/diewo77/acme-dashboard/httpx"
	"github.com/diewo77/acme-dashboard/internal/actions"
)

type AuthHandler struct {
	flow *actions.Controller
}

func NewAuthHandler(flow *actions.Controller) *AuthHandler {
	return &AuthHandler{flow: flow}
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "login.html", map[string]any{"Email": ""})
}

// Login checks credentials. Unexpected identity faults are not softened:
// they surface as a 500.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	values := formValues(r)
	out, err := h.flow.Authenticate(r.Context(), values)
	if err != nil {
		serverError(w, r, err)
		return
	}
	if out.Redirected() {
		auth.CreateSession(w, out.Subject)
	}
	submitted(w, r, out, "login.html", map[string]any{"Email": values.Get("email")})
}

func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "signup.html", map[string]any{
		"Values":  url.Values{},
		"Outcome": actions.Outcome{},
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	out := h.flow.Signup(r.Context(), formValues(r))
	submitted(w, r, out, "signup.html", nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, redirectResponse{Redirect: "/"})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
