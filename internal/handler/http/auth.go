package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/activity-report/internal/domain/auth"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/middleware"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/response"
	"github.com/cmlabs-hris/activity-report/internal/handler/http/view"
	"github.com/cmlabs-hris/activity-report/internal/pkg/jwt"
	"github.com/cmlabs-hris/activity-report/internal/pkg/validator"
)

type AuthHandler interface {
	LoginPage(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	APILogin(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService  jwt.Service
	authService auth.AuthService
	views       *view.Renderer
}

type loginPage struct {
	view.Page
	LoginID string
}

func NewAuthHandler(jwtService jwt.Service, authService auth.AuthService, views *view.Renderer) AuthHandler {
	return &AuthHandlerImpl{
		jwtService:  jwtService,
		authService: authService,
		views:       views,
	}
}

// LoginPage implements AuthHandler.
func (a *AuthHandlerImpl) LoginPage(w http.ResponseWriter, r *http.Request) {
	if role, ok := middleware.SessionRole(r, a.jwtService); ok {
		http.Redirect(w, r, role.HomePath(), http.StatusSeeOther)
		return
	}
	a.views.Render(w, http.StatusOK, "login", loginPage{Page: view.Page{Title: "ログイン"}})
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.views.Render(w, http.StatusBadRequest, "login", loginPage{Page: view.Page{Title: "ログイン"}})
		return
	}

	req := auth.LoginRequest{
		LoginID:  r.PostForm.Get("login_id"),
		Password: r.PostForm.Get("password"),
	}
	session, err := a.authService.Login(r.Context(), req)
	if err != nil {
		page := loginPage{Page: view.Page{Title: "ログイン"}, LoginID: req.LoginID}
		var validationErrs validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrs):
			page.Errors = validationErrs
		case errors.Is(err, auth.ErrInvalidCredentials):
			page.Errors = validator.ValidationErrors{{Field: "password", Message: "ログインIDまたはパスワードが正しくありません"}}
		default:
			a.views.Error(w, "", err)
			return
		}
		a.views.Render(w, http.StatusOK, "login", page)
		return
	}

	http.SetCookie(w, a.jwtService.SessionCookie(session.Token, session.ExpiresAt))
	http.Redirect(w, r, session.Redirect, http.StatusSeeOther)
}

// Logout implements AuthHandler.
func (a *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if token := jwt.TokenFromSessionCookie(r); token != "" {
		if err := a.authService.Logout(r.Context(), token); err != nil {
			slog.Error("Logout service error", "error", err)
		}
	}

	http.SetCookie(w, a.jwtService.ClearSessionCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// APILogin implements AuthHandler.
func (a *AuthHandlerImpl) APILogin(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	session, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, a.jwtService.SessionCookie(session.Token, session.ExpiresAt))
	response.SuccessWithMessage(w, "Login successful", session)
}
