package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	svc, err := NewService(store, "test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_RequiresSecret(t *testing.T) {
	store := NewUserStore(filepath.Join(t.TempDir(), "users.json"))
	if _, err := NewService(store, ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, "Ada", "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Error("user ID not assigned")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("email not normalised: %q", user.Email)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	got, token, err := svc.Login(ctx, "ADA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID || token == "" {
		t.Errorf("login = %+v, token %q", got, token)
	}

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	for _, tt := range []struct{ name, email, password string }{
		{"", "a@b.c", "pw"},
		{"Ada", "", "pw"},
		{"Ada", "a@b.c", ""},
	} {
		if _, err := svc.Register(ctx, tt.name, tt.email, tt.password); err == nil {
			t.Errorf("Register(%q, %q, pw?) should fail", tt.name, tt.email)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, "Other Ada", "ada@example.com", "pw2"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate registration = %v, want ErrEmailTaken", err)
	}
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}

	id, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if id != user.ID {
		t.Errorf("subject = %q, want %q", id, user.ID)
	}

	if _, err := svc.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token = %v, want ErrInvalidToken", err)
	}
	if _, err := svc.VerifyToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}

	// Issue in the past, verify in the present.
	svc.now = func() time.Time { return time.Now().Add(-TokenTTL - time.Hour) }
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}
	svc.now = time.Now

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	user, err := svc.Register(ctx, "Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatal(err)
	}
	token, err := svc.IssueToken(user)
	if err != nil {
		t.Fatal(err)
	}

	other, err := NewService(NewUserStore(filepath.Join(t.TempDir(), "u.json")), "different-secret")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("cross-secret token = %v, want ErrInvalidToken", err)
	}
}

func TestUserStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "users.json")

	s1 := NewUserStore(path)
	user := &User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := s1.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	s2 := NewUserStore(path)
	got, err := s2.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("got %+v", got)
	}

	if _, err := s2.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail(missing) = %v, want ErrUserNotFound", err)
	}
}

func TestPublic_OmitsPassword(t *testing.T) {
	u := &User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "secret-hash"}
	pub := u.Public()
	for _, v := range pub {
		if s, ok := v.(string); ok && strings.Contains(s, "secret-hash") {
			t.Error("public view leaks password hash")
		}
	}
	if pub["id"] != "u1" || pub["email"] != "ada@example.com" {
		t.Errorf("public view = %v", pub)
	}
}
