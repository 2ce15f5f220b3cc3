package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ceylonbites/ceylonbites/internal/auth"
	"github.com/ceylonbites/ceylonbites/internal/profiles"
	"github.com/ceylonbites/ceylonbites/internal/server/handler"
	"github.com/ceylonbites/ceylonbites/internal/verification"
)

type stubAuthProvider struct {
	mu         sync.Mutex
	identities map[string]*auth.Identity // by email
	passwords  map[string]string
	deleted    []uuid.UUID
	tokens     *auth.TokenIssuer
}

func newStubAuthProvider(tokens *auth.TokenIssuer) *stubAuthProvider {
	return &stubAuthProvider{
		identities: make(map[string]*auth.Identity),
		passwords:  make(map[string]string),
		tokens:     tokens,
	}
}

func (s *stubAuthProvider) SignUp(_ context.Context, email, password string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[email]; ok {
		return nil, auth.ErrDuplicateEmail
	}
	id := &auth.Identity{ID: uuid.New(), Email: email}
	s.identities[email] = id
	s.passwords[email] = password
	return id, nil
}

func (s *stubAuthProvider) SignInWithPassword(_ context.Context, email, password string) (*auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.identities[email]
	if !ok || s.passwords[email] != password {
		return nil, auth.ErrInvalidCredentials
	}
	token, expires, err := s.tokens.Issue(*id)
	if err != nil {
		return nil, err
	}
	return &auth.Session{Identity: *id, AccessToken: token, ExpiresAt: expires}, nil
}

func (s *stubAuthProvider) SignOut(context.Context) error { return nil }

func (s *stubAuthProvider) DeleteIdentity(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, identity := range s.identities {
		if identity.ID == id {
			delete(s.identities, email)
			delete(s.passwords, email)
		}
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubProfileCreator struct {
	mu        sync.Mutex
	usernames map[string]bool
	created   int
}

func (s *stubProfileCreator) Create(_ context.Context, p *profiles.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernames[p.Username] {
		return profiles.ErrUsernameTaken
	}
	if s.usernames == nil {
		s.usernames = make(map[string]bool)
	}
	s.usernames[p.Username] = true
	s.created++
	return nil
}

type stubEmailVerifier struct {
	mu        sync.Mutex
	issued    int
	resent    int
	verifyErr error
}

func (s *stubEmailVerifier) Issue(_ context.Context, userID uuid.UUID, email string) (*verification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return &verification.Record{UserID: userID, Email: email, Code: "123456"}, nil
}

func (s *stubEmailVerifier) Verify(context.Context, uuid.UUID, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verifyErr
}

func (s *stubEmailVerifier) Resend(_ context.Context, userID uuid.UUID, email string) (*verification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resent++
	return &verification.Record{UserID: userID, Email: email, Code: "654321"}, nil
}

type authFixture struct {
	router   *gin.Engine
	provider *stubAuthProvider
	profiles *stubProfileCreator
	verifier *stubEmailVerifier
	tokens   *auth.TokenIssuer
}

func setupAuthRouter(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenIssuer([]byte("test-secret"), "http://localhost:8080", time.Hour)
	provider := newStubAuthProvider(tokens)
	profileSvc := &stubProfileCreator{usernames: make(map[string]bool)}
	verifier := &stubEmailVerifier{}

	h := handler.NewAuthHandler(provider, profileSvc, verifier, tokens, zap.NewNop())
	r := gin.New()
	v1 := r.Group("/api/v1")
	h.Register(v1)

	return &authFixture{
		router:   r,
		provider: provider,
		profiles: profileSvc,
		verifier: verifier,
		tokens:   tokens,
	}
}

func postJSON(t *testing.T, router *gin.Engine, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signupBody(email, username string) map[string]any {
	return map[string]any{
		"email":     email,
		"password":  "hunter2hunter2",
		"username":  username,
		"full_name": "Kumari Perera",
	}
}

func TestSignUp_201(t *testing.T) {
	f := setupAuthRouter(t)

	w := postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if f.profiles.created != 1 {
		t.Errorf("profiles created = %d, want 1", f.profiles.created)
	}
	if f.verifier.issued != 1 {
		t.Errorf("verifications issued = %d, want 1", f.verifier.issued)
	}
}

func TestSignUp_409_duplicateEmail(t *testing.T) {
	f := setupAuthRouter(t)

	postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari"))
	w := postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari2"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestSignUp_usernameTakenRollsBackIdentity(t *testing.T) {
	f := setupAuthRouter(t)

	postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("first@example.com", "kumari"))
	w := postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("second@example.com", "kumari"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if len(f.provider.deleted) != 1 {
		t.Fatalf("rolled-back identities = %d, want 1", len(f.provider.deleted))
	}
	if _, ok := f.provider.identities["second@example.com"]; ok {
		t.Fatal("orphaned identity survived the rollback")
	}
}

func TestSignUp_400_shortPassword(t *testing.T) {
	f := setupAuthRouter(t)

	body := signupBody("kumari@example.com", "kumari")
	body["password"] = "short"
	w := postJSON(t, f.router, "/api/v1/auth/signup", "", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLogin_200(t *testing.T) {
	f := setupAuthRouter(t)
	postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari"))

	w := postJSON(t, f.router, "/api/v1/auth/login", "", map[string]any{
		"email":    "kumari@example.com",
		"password": "hunter2hunter2",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	token, _ := resp["access_token"].(string)
	if token == "" {
		t.Fatal("no access_token in response")
	}
	if _, err := f.tokens.Verify(token); err != nil {
		t.Fatalf("returned token does not verify: %v", err)
	}
}

func TestLogin_401_badPassword(t *testing.T) {
	f := setupAuthRouter(t)
	postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari"))

	w := postJSON(t, f.router, "/api/v1/auth/login", "", map[string]any{
		"email":    "kumari@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestVerifyEmail_requiresSession(t *testing.T) {
	f := setupAuthRouter(t)

	w := postJSON(t, f.router, "/api/v1/auth/verify-email", "", map[string]any{"code": "123456"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func loginToken(t *testing.T, f *authFixture) string {
	t.Helper()
	postJSON(t, f.router, "/api/v1/auth/signup", "", signupBody("kumari@example.com", "kumari"))
	w := postJSON(t, f.router, "/api/v1/auth/login", "", map[string]any{
		"email":    "kumari@example.com",
		"password": "hunter2hunter2",
	})
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	token, _ := resp["access_token"].(string)
	if token == "" {
		t.Fatal("login produced no token")
	}
	return token
}

func TestVerifyEmail_200(t *testing.T) {
	f := setupAuthRouter(t)
	token := loginToken(t, f)

	w := postJSON(t, f.router, "/api/v1/auth/verify-email", token, map[string]any{"code": "123456"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestVerifyEmail_400_mismatch(t *testing.T) {
	f := setupAuthRouter(t)
	token := loginToken(t, f)
	f.verifier.verifyErr = verification.ErrCodeMismatch

	w := postJSON(t, f.router, "/api/v1/auth/verify-email", token, map[string]any{"code": "000000"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestVerifyEmail_404_noVerification(t *testing.T) {
	f := setupAuthRouter(t)
	token := loginToken(t, f)
	f.verifier.verifyErr = verification.ErrNoVerification

	w := postJSON(t, f.router, "/api/v1/auth/verify-email", token, map[string]any{"code": "123456"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestResendVerification_200(t *testing.T) {
	f := setupAuthRouter(t)
	token := loginToken(t, f)

	w := postJSON(t, f.router, "/api/v1/auth/resend-verification", token, map[string]any{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if f.verifier.resent != 1 {
		t.Errorf("resends = %d, want 1", f.verifier.resent)
	}
}
