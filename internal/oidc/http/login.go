package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/openid/internal/oidc/service"
	"github.com/aussiebroadwan/openid/pkg/authsdk"
	"github.com/aussiebroadwan/openid/pkg/slogx"
)

// LoginHandler is the built-in login collaborator: a username and password
// form that sets the session cookie /authorize reads.
type LoginHandler struct {
	UserService *service.UserService
	Cookies     *SessionCookies
	Pages       *Pages

	LoginPath   string
	DefaultPath string
}

// HandleGet renders the sign-in form.
//
//	@Summary		Sign-in page
//	@Tags			Session
//	@Produce		html
//	@Param			return_to	query		string	false	"Local path to continue to after signing in"
//	@Success		200			{string}	string	"Sign-in form"
//	@Router			/login [get]
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	returnTo, _ := safeReturnTo(r.URL.Query().Get("return_to"))
	h.render(w, r, http.StatusOK, LoginPage{ReturnTo: returnTo})
}

// HandlePost checks the credentials and starts a session.
//
//	@Summary		Sign in
//	@Tags			Session
//	@Accept			x-www-form-urlencoded
//	@Produce		html
//	@Param			username	formData	string	true	"Username"
//	@Param			password	formData	string	true	"Password"
//	@Param			return_to	formData	string	false	"Local path to continue to"
//	@Success		303			{string}	string	"Redirect to return_to"
//	@Failure		401			{string}	string	"Sign-in form with an error"
//	@Router			/login [post]
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	returnTo, ok := safeReturnTo(r.PostForm.Get("return_to"))
	if !ok {
		returnTo = ""
	}

	user, err := h.UserService.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Info("login failed", slog.String("username", username))
			h.render(w, r, http.StatusUnauthorized, LoginPage{
				ReturnTo: returnTo,
				Username: username,
				Error:    "Invalid username or password.",
			})
			return
		}
		log.Error("login failed", slogx.Err(err))
		authsdk.ErrServerError.WriteError(w)
		return
	}

	if err := h.Cookies.Set(w, user.Username); err != nil {
		log.Error("issue session", slogx.Err(err))
		authsdk.ErrServerError.WriteError(w)
		return
	}
	log.Info("login succeeded", slog.String("subject", user.Username))

	if returnTo == "" {
		returnTo = h.DefaultPath
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// HandleLogout clears the session.
//
//	@Summary		Sign out
//	@Tags			Session
//	@Accept			x-www-form-urlencoded
//	@Param			return_to	formData	string	false	"Local path to continue to"
//	@Success		303			{string}	string	"Redirect to return_to or the sign-in page"
//	@Router			/logout [post]
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)

	target := h.LoginPath
	if err := r.ParseForm(); err == nil {
		if returnTo, ok := safeReturnTo(r.PostForm.Get("return_to")); ok {
			target = returnTo
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *LoginHandler) render(w http.ResponseWriter, r *http.Request, status int, page LoginPage) {
	page.Action = h.LoginPath
	if err := h.Pages.RenderLogin(w, status, page); err != nil {
		slogx.FromContext(r.Context()).Error("render login page", slogx.Err(err))
	}
}
