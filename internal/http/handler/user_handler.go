package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NaufalH27/inquran-be/internal/http/middleware"
	"github.com/NaufalH27/inquran-be/internal/http/request"
	"github.com/NaufalH27/inquran-be/internal/http/response"
	"github.com/NaufalH27/inquran-be/internal/security"
	"github.com/NaufalH27/inquran-be/internal/service"
)

type statusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type UserHandler struct {
	users    service.UserServiceInterface
	sessions service.SessionServiceInterface
}

func NewUserHandler(users service.UserServiceInterface, sessions service.SessionServiceInterface) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) UpdateFullName(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.UpdateFullNameRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.UpdateFullName(r.Context(), userID, req.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.UpdateProfileRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), userID, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

// UpdatePhoto accepts a multipart form with the image in the "photo" field.
func (h *UserHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(request.MaxPhotoBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, validationError([]request.FieldError{{Field: "photo", Message: "multipart form with a photo file is required"}}))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, r, validationError([]request.FieldError{{Field: "photo", Message: "is required"}}))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if errs := request.ValidatePhoto(contentType, header.Size); len(errs) > 0 {
		writeError(w, r, validationError(errs))
		return
	}
	user, err := h.users.UpdatePhoto(r.Context(), userID, photoUpload(header, file, contentType))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func photoUpload(header *multipart.FileHeader, file multipart.File, contentType string) service.PhotoUpload {
	return service.PhotoUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.ChangePasswordRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, statusMessage{Status: "OK", Message: "Password changed successfully"})
}

func (h *UserHandler) BindPassword(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.BindPasswordRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.BindPassword(r.Context(), userID, req.Input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) BindGoogle(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.BindGoogleRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.BindGoogle(r.Context(), userID, req.GoogleID, req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.FavoriteRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fav, err := h.users.AddFavorite(r.Context(), userID, *req.SurahNumber, *req.AyahNumber)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, fav)
}

func (h *UserHandler) DeleteFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req request.FavoriteRequest
	if err := request.Decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.DeleteFavorite(r.Context(), userID, *req.SurahNumber, *req.AyahNumber); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, statusMessage{Status: "OK", Message: "Favorite removed"})
}

func (h *UserHandler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, pageSize, err := request.ParsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.users.ListFavorites(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, res)
}

func (h *UserHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID, claims, ok := currentUser(w, r)
	if !ok {
		return
	}
	views, err := h.sessions.ListActiveSessions(r.Context(), userID, claims.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, views)
}

func (h *UserHandler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "session_id")
	if err := h.sessions.RevokeSession(r.Context(), userID, sessionID); err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, statusMessage{Status: "OK", Message: "Session revoked"})
}

// currentUser writes a 401 and reports false when the request carries no
// usable claims.
func currentUser(w http.ResponseWriter, r *http.Request) (uint, *security.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return 0, nil, false
	}
	userID, err := claims.UserID()
	if err != nil {
		response.Error(w, r, http.StatusUnauthorized, "invalid access token", nil)
		return 0, nil, false
	}
	return userID, claims, true
}
