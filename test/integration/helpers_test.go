package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NaufalH27/inquran-be/internal/config"
	"github.com/NaufalH27/inquran-be/internal/database"
	"github.com/NaufalH27/inquran-be/internal/health"
	"github.com/NaufalH27/inquran-be/internal/http/handler"
	"github.com/NaufalH27/inquran-be/internal/http/router"
	"github.com/NaufalH27/inquran-be/internal/repository"
	"github.com/NaufalH27/inquran-be/internal/security"
	"github.com/NaufalH27/inquran-be/internal/service"
	"github.com/NaufalH27/inquran-be/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

const (
	testAPIKey    = "integration-api-key"
	testJWTSecret = "integration-secret-0123456789abcdef"
)

type testServer struct {
	BaseURL string
	Client  *http.Client
	DB      *gorm.DB
	Redis   *miniredis.Miniredis
	Photos  *storage.DiskPhotoStore
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionID    string `json:"sessionId"`
}

type publicUser struct {
	ID          uint    `json:"id"`
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FullName    *string `json:"fullName"`
	PhotoURL    *string `json:"photoUrl"`
	GoogleID    *string `json:"googleId"`
	HasPassword bool    `json:"hasPassword"`
}

type authResponse struct {
	Tokens    tokenPair  `json:"tokens"`
	User      publicUser `json:"user"`
	IsNewUser bool       `json:"isNewUser"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "test",
		DatabaseDriver:    config.DriverSQLite,
		DatabaseURL:       filepath.Join(t.TempDir(), "integration.db") + "?_busy_timeout=5000",
		JWTIssuer:         "inquran",
		JWTAccessSecret:   testJWTSecret,
		JWTAccessTTL:      15 * time.Minute,
		BcryptCost:        bcrypt.MinCost,
		APIKey:            testAPIKey,
		NegativeLookupTTL: time.Minute,
		UploadDir:         t.TempDir(),
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	jwtMgr := security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAccessSecret)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	missing := service.NewRedisIdentifierLookupCache(redisClient, "auth:missing-identifier", cfg.NegativeLookupTTL)

	srv := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + srv.Listener.Addr().String()
	photos := storage.NewDiskPhotoStore(cfg.UploadDir, baseURL)

	tokens := service.NewTokenService(jwtMgr, hasher, sessions, cfg.JWTAccessTTL)
	authSvc := service.NewAuthService(users, sessions, tokens, hasher, missing, photos)
	userSvc := service.NewUserService(users, sessions, favorites, hasher, photos, missing)
	sessionSvc := service.NewSessionService(sessions)

	srv.Config.Handler = router.NewRouter(router.Dependencies{
		AuthHandler: handler.NewAuthHandler(authSvc),
		UserHandler: handler.NewUserHandler(userSvc, sessionSvc),
		JWTManager:  jwtMgr,
		APIKey:      cfg.APIKey,
		UploadDir:   photos.Dir(),
		Readiness:   health.NewProbeRunner(time.Second, 0, health.DBChecker(db), health.RedisChecker(redisClient)),
	})
	srv.Start()

	t.Cleanup(func() {
		srv.Close()
		_ = redisClient.Close()
		_ = database.Close(db)
	})
	return &testServer{BaseURL: srv.URL, Client: srv.Client(), DB: db, Redis: mr, Photos: photos}
}

// doJSON sends body as JSON with the API key attached and returns the raw
// response body. headers override the defaults.
func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(t, client, req)
}

func do(t *testing.T, client *http.Client, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", string(data), err)
	}
	return v
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func registerUser(t *testing.T, ts *testServer, username, email, password string) authResponse {
	t.Helper()
	resp, body := doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status=%d body=%s", username, resp.StatusCode, body)
	}
	return decode[authResponse](t, body)
}

func loginUsername(t *testing.T, ts *testServer, username, password string) (*http.Response, []byte) {
	t.Helper()
	return doJSON(t, ts.Client, http.MethodPost, ts.BaseURL+"/auth/login", map[string]string{
		"loginType": "username",
		"username":  username,
		"password":  password,
	}, nil)
}
