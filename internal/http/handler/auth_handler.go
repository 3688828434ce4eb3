package handler

import (
	"net/http"

	"github.com/NaufalH27/inquran-be/internal/http/request"
	"github.com/NaufalH27/inquran-be/internal/http/response"
	"github.com/NaufalH27/inquran-be/internal/observability"
	"github.com/NaufalH27/inquran-be/internal/service"
)

type AuthHandler struct {
	auth service.AuthServiceInterface
}

func NewAuthHandler(auth service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req.Input())
	if err != nil {
		auditFailure(r, "auth.login", err, "login_type", req.LoginType)
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "auth.login", "outcome", "success", "user_id", res.User.ID, "session_id", res.Tokens.SessionID)
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req.Input())
	if err != nil {
		auditFailure(r, "auth.register", err)
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register", "outcome", "success", "user_id", res.User.ID, "session_id", res.Tokens.SessionID)
	response.JSON(w, r, http.StatusCreated, res)
}

func (h *AuthHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req request.GoogleLoginRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.LoginWithGoogle(r.Context(), req.Identity())
	if err != nil {
		auditFailure(r, "auth.google", err)
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "auth.google", "outcome", "success", "user_id", res.User.ID, "new_user", res.IsNewUser, "session_id", res.Tokens.SessionID)
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req request.RefreshRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Refresh(r.Context(), req.SessionID, req.RefreshToken)
	if err != nil {
		auditFailure(r, "auth.refresh", err, "session_id", req.SessionID)
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "auth.refresh", "outcome", "success", "user_id", res.User.ID, "previous_session_id", req.SessionID, "session_id", res.Tokens.SessionID)
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req request.LogoutRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Logout(r.Context(), req.SessionID)
	if err != nil {
		auditFailure(r, "auth.logout", err, "session_id", req.SessionID)
		writeError(w, r, err)
		return
	}
	observability.Audit(r, "auth.logout", "outcome", "success", "session_id", req.SessionID)
	response.JSON(w, r, http.StatusOK, res)
}

func auditFailure(r *http.Request, event string, err error, attrs ...any) {
	base := []any{"outcome", "failure", "reason", service.AuthFailureReason(err)}
	observability.Audit(r, event, append(base, attrs...)...)
}
