package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/NaufalH27/inquran-be/internal/domain"
	"github.com/NaufalH27/inquran-be/internal/http/middleware"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"
	"github.com/NaufalH27/inquran-be/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

type stubAuthService struct {
	err        error
	lastLogin  service.LoginInput
	lastLogout string
}

func (s *stubAuthService) result() *service.AuthResult {
	return &service.AuthResult{
		Tokens: &service.TokenPair{AccessToken: "a", RefreshToken: "r", SessionID: "s"},
		User:   service.PublicUser{ID: 7},
	}
}

func (s *stubAuthService) Login(_ context.Context, in service.LoginInput) (*service.AuthResult, error) {
	s.lastLogin = in
	if s.err != nil {
		return nil, s.err
	}
	return s.result(), nil
}

func (s *stubAuthService) Register(context.Context, service.RegisterInput) (*service.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result(), nil
}

func (s *stubAuthService) LoginWithGoogle(context.Context, service.GoogleIdentity) (*service.GoogleAuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	res := s.result()
	return &service.GoogleAuthResult{Tokens: res.Tokens, User: res.User, IsNewUser: true}, nil
}

func (s *stubAuthService) Refresh(context.Context, string, string) (*service.AuthResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result(), nil
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) (*service.LogoutResult, error) {
	s.lastLogout = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return &service.LogoutResult{Status: "OK", Message: "Logged out successfully"}, nil
}

type errorBody struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rr.Body.String())
	}
	return body
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", validationError(nil), http.StatusBadRequest, "validation failed"},
		{"conflict", &service.ConflictError{Field: "username"}, http.StatusConflict, "username already exists"},
		{"authentication", &service.AuthenticationError{Reason: service.ErrBadCredentials, Message: "invalid credentials"}, http.StatusUnauthorized, "invalid credentials"},
		{"not found", &service.NotFoundError{Resource: "favorite"}, http.StatusNotFound, "favorite not found"},
		{"too large", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge, "request body too large"},
		{"internal", errors.New("db exploded"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			body := decodeError(t, rr)
			if body.Status != "error" || body.Code != tc.status || body.Message != tc.message {
				t.Fatalf("unexpected envelope %+v", body)
			}
			if strings.Contains(rr.Body.String(), "db exploded") {
				t.Fatalf("internal error detail leaked: %s", rr.Body.String())
			}
		})
	}
}

func TestAuthHandlerLoginBuildsTaggedIdentifier(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	rr := postJSON(h.Login, `{"loginType":"email","email":"a@x.com","password":"abc12345"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if svc.lastLogin.Identifier != service.EmailIdentifier("a@x.com") {
		t.Fatalf("unexpected identifier %+v", svc.lastLogin.Identifier)
	}
	if !strings.Contains(rr.Body.String(), `"sessionId":"s"`) {
		t.Fatalf("expected tokens in body, got %s", rr.Body.String())
	}
}

func TestAuthHandlerRejectsInvalidBodyBeforeService(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	rr := postJSON(h.Register, `{"username":"a","email":"bad","password":"short"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"field":"username"`) {
		t.Fatalf("expected field errors, got %s", rr.Body.String())
	}
}

func TestAuthHandlerStatusCodes(t *testing.T) {
	svc := &stubAuthService{}
	h := NewAuthHandler(svc)

	if rr := postJSON(h.Register, `{"username":"alice","email":"a@x.com","password":"abc12345"}`); rr.Code != http.StatusCreated {
		t.Fatalf("register expected 201, got %d", rr.Code)
	}
	if rr := postJSON(h.Google, `{"googleId":"g-1","email":"a@x.com"}`); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"isNewUser":true`) {
		t.Fatalf("google expected 200 with isNewUser, got %d %s", rr.Code, rr.Body.String())
	}
	if rr := postJSON(h.Refresh, `{"sessionId":"s","refreshToken":"r"}`); rr.Code != http.StatusOK {
		t.Fatalf("refresh expected 200, got %d", rr.Code)
	}
	rr := postJSON(h.Logout, `{"sessionId":"gone"}`)
	if rr.Code != http.StatusOK || svc.lastLogout != "gone" {
		t.Fatalf("logout expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"OK"`) {
		t.Fatalf("unexpected logout body %s", rr.Body.String())
	}
}

func TestAuthHandlerRefreshFailureUsesUniformMessage(t *testing.T) {
	svc := &stubAuthService{err: &service.AuthenticationError{Reason: service.ErrSessionUserNotFound, Message: "invalid or expired refresh token"}}
	h := NewAuthHandler(svc)

	rr := postJSON(h.Refresh, `{"sessionId":"s","refreshToken":"r"}`)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if body := decodeError(t, rr); body.Message != "invalid or expired refresh token" {
		t.Fatalf("unexpected message %q", body.Message)
	}
}

type stubUserService struct {
	service.UserServiceInterface
	upload    service.PhotoUpload
	uploadErr error
}

func (s *stubUserService) Profile(_ context.Context, userID uint) (*service.PublicUser, error) {
	return &service.PublicUser{ID: userID}, nil
}

func (s *stubUserService) UpdatePhoto(_ context.Context, userID uint, upload service.PhotoUpload) (*service.PublicUser, error) {
	data, _ := io.ReadAll(upload.Body)
	upload.Body = bytes.NewReader(data)
	s.upload = upload
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return &service.PublicUser{ID: userID}, nil
}

func (s *stubUserService) AddFavorite(_ context.Context, userID uint, surah, ayah int) (*domain.Favorite, error) {
	return &domain.Favorite{UserID: userID, SurahNumber: surah, AyahNumber: ayah}, nil
}

func (s *stubUserService) ListFavorites(context.Context, uint, int, int) (repository.PageResult[domain.Favorite], error) {
	return repository.PageResult[domain.Favorite]{Items: []domain.Favorite{}, Page: 1, PageSize: 20}, nil
}

type stubSessionService struct {
	current string
}

func (s *stubSessionService) ListActiveSessions(_ context.Context, _ uint, currentSessionID string) ([]service.SessionView, error) {
	s.current = currentSessionID
	return []service.SessionView{{ID: currentSessionID, IsCurrent: true}}, nil
}

func (s *stubSessionService) RevokeSession(context.Context, uint, string) error {
	return &service.NotFoundError{Resource: "session"}
}

func withClaims(req *http.Request, sub, jti string) *http.Request {
	claims := &security.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: sub, ID: jti}}
	return req.WithContext(context.WithValue(req.Context(), middleware.ClaimsContextKey, claims))
}

func TestUserHandlerRequiresClaims(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubSessionService{})
	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/user/profile/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Me(rr, withClaims(httptest.NewRequest(http.MethodGet, "/user/profile/me", nil), "9", "sid"))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"id":9`) {
		t.Fatalf("expected profile of user 9, got %d %s", rr.Code, rr.Body.String())
	}
}

func multipartPhoto(t *testing.T, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="photo"; filename="me.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUserHandlerUpdatePhoto(t *testing.T) {
	users := &stubUserService{}
	h := NewUserHandler(users, &stubSessionService{})

	body, ct := multipartPhoto(t, "image/png", []byte("png-bytes"))
	req := withClaims(httptest.NewRequest(http.MethodPatch, "/user/profile/me/photo", body), "3", "sid")
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.UpdatePhoto(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if users.upload.Filename != "me.png" || users.upload.ContentType != "image/png" || users.upload.Size != int64(len("png-bytes")) {
		t.Fatalf("unexpected upload %+v", users.upload)
	}
}

func TestUserHandlerUpdatePhotoRejectsType(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubSessionService{})

	body, ct := multipartPhoto(t, "application/pdf", []byte("%PDF"))
	req := withClaims(httptest.NewRequest(http.MethodPatch, "/user/profile/me/photo", body), "3", "sid")
	req.Header.Set("Content-Type", ct)
	rr := httptest.NewRecorder()
	h.UpdatePhoto(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUserHandlerUpdatePhotoRequiresMultipart(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubSessionService{})
	req := withClaims(httptest.NewRequest(http.MethodPatch, "/user/profile/me/photo", strings.NewReader(`{}`)), "3", "sid")
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.UpdatePhoto(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestUserHandlerFavorites(t *testing.T) {
	h := NewUserHandler(&stubUserService{}, &stubSessionService{})

	req := withClaims(httptest.NewRequest(http.MethodPost, "/user/favorite/add", strings.NewReader(`{"surah_number":2,"ayah_number":255}`)), "3", "sid")
	rr := httptest.NewRecorder()
	h.AddFavorite(rr, req)
	if rr.Code != http.StatusCreated || !strings.Contains(rr.Body.String(), `"ayah_number":255`) {
		t.Fatalf("expected 201 with favorite, got %d %s", rr.Code, rr.Body.String())
	}

	req = withClaims(httptest.NewRequest(http.MethodPost, "/user/favorite/add", strings.NewReader(`{"surah_number":115,"ayah_number":1}`)), "3", "sid")
	rr = httptest.NewRecorder()
	h.AddFavorite(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for surah 115, got %d", rr.Code)
	}

	req = withClaims(httptest.NewRequest(http.MethodGet, "/user/favorites?page=zero", nil), "3", "sid")
	rr = httptest.NewRecorder()
	h.ListFavorites(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page, got %d", rr.Code)
	}
}

func TestUserHandlerSessionsMarksCurrentFromJTI(t *testing.T) {
	sessions := &stubSessionService{}
	h := NewUserHandler(&stubUserService{}, sessions)

	rr := httptest.NewRecorder()
	h.Sessions(rr, withClaims(httptest.NewRequest(http.MethodGet, "/user/sessions", nil), "3", "sid-42"))
	if rr.Code != http.StatusOK || sessions.current != "sid-42" {
		t.Fatalf("expected jti to be passed as current session, got %d %q", rr.Code, sessions.current)
	}

	rr = httptest.NewRecorder()
	h.RevokeSession(rr, withClaims(httptest.NewRequest(http.MethodDelete, "/user/sessions/x", nil), "3", "sid-42"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign session, got %d", rr.Code)
	}
}
