package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/model"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/storage"
)

type fakeAuth struct {
	schools   map[string]*model.SchoolData
	passwords map[string]string
	verifyErr error
}

func (f *fakeAuth) Login(_ context.Context, username, password string) (*model.SchoolData, error) {
	if pw, ok := f.passwords[username]; !ok || pw != password {
		return nil, &remote.APIError{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	s := *f.schools[username]
	return &s, nil
}

func (f *fakeAuth) Verify(_ context.Context, username string) (*model.SchoolData, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	s, ok := f.schools[username]
	if !ok {
		return nil, &remote.APIError{Status: http.StatusUnauthorized, Message: "Session verification failed"}
	}
	out := *s
	return &out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		JWTExpiry:           time.Hour,
		DefaultExamType:     "Unit Test",
		DefaultAcademicYear: "2025-26",
		DefaultDuration:     "1 Hour",
	}
}

func newTestSessionService(t *testing.T) (*SessionService, *fakeAuth, storage.BlobStore) {
	t.Helper()
	auth := &fakeAuth{
		schools: map[string]*model.SchoolData{
			"gv":    {Username: "gv", SchoolName: "Green Valley", Board: "CBSE", IsActive: true},
			"admin": {Username: "admin", SchoolName: "Head Office"},
		},
		passwords: map[string]string{"gv": "secret", "admin": "root"},
	}
	blobs := storage.NewMemoryBlobStore()
	return NewSessionService(testConfig(), auth, blobs, zerolog.Nop()), auth, blobs
}

func TestLoginAndHydrate(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "gv", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.ExpiresIn != 3600 || res.IsAdmin {
		t.Errorf("login response = %+v", res)
	}

	sess, err := svc.Hydrate(ctx, res.Token)
	if err != nil {
		t.Fatalf("Hydrate: %v", err)
	}
	if sess.School.SchoolName != "Green Valley" || sess.ID == "" {
		t.Errorf("session = %+v", sess)
	}

	admin, err := svc.Login(ctx, "admin", "root")
	if err != nil || !admin.IsAdmin {
		t.Errorf("admin login = %+v, %v", admin, err)
	}
}

func TestLoginRejected(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	_, err := svc.Login(context.Background(), "gv", "wrong")
	if remote.Message(err) != "Invalid username or password" {
		t.Errorf("err = %v", err)
	}
}

func TestHydrateRejectsBadTokens(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, "gv", "secret")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Hydrate(ctx, res.Token+"x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("tampered token err = %v", err)
	}

	other := NewSessionService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, nil, storage.NewMemoryBlobStore(), zerolog.Nop())
	if _, err := other.Hydrate(ctx, res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign secret err = %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Hydrate(ctx, res.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token err = %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newTestSessionService(t)
	ctx := context.Background()

	res, _ := svc.Login(ctx, "gv", "secret")
	sess, err := svc.Hydrate(ctx, res.Token)
	if err != nil {
		t.Fatal(err)
	}

	svc.Logout(ctx, sess)
	if _, err := svc.Hydrate(ctx, res.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err after logout = %v", err)
	}
}

func TestHydrateCorruptSession(t *testing.T) {
	svc, _, blobs := newTestSessionService(t)
	ctx := context.Background()

	res, _ := svc.Login(ctx, "gv", "secret")
	claims, err := svc.ValidateToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	key := config.CacheKey.SessionKey(claims.ID)
	if err := blobs.Set(ctx, key, []byte("{broken"), 0); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Hydrate(ctx, res.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v", err)
	}
	if _, err := blobs.Get(ctx, key); !errors.Is(err, storage.ErrBlobNotFound) {
		t.Error("corrupt session was not removed")
	}
}

func TestVerify(t *testing.T) {
	svc, auth, _ := newTestSessionService(t)
	ctx := context.Background()

	res, _ := svc.Login(ctx, "gv", "secret")
	sess, _ := svc.Hydrate(ctx, res.Token)

	auth.schools["gv"].SchoolName = "Green Valley Senior"
	school, err := svc.Verify(ctx, sess)
	if err != nil {
		t.Fatal(err)
	}
	if school.SchoolName != "Green Valley Senior" {
		t.Errorf("school = %+v", school)
	}
	again, err := svc.Hydrate(ctx, res.Token)
	if err != nil || again.School.SchoolName != "Green Valley Senior" {
		t.Errorf("stored school not refreshed: %+v, %v", again, err)
	}

	auth.verifyErr = remote.ErrNetwork
	if _, err := svc.Verify(ctx, sess); !errors.Is(err, remote.ErrNetwork) {
		t.Errorf("err = %v", err)
	}
	if _, err := svc.Hydrate(ctx, res.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Error("failed verification did not log out")
	}
}
