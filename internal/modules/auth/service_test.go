package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloem-market/bloem-backend/internal/modules/user"
)

type memUserRepo struct {
	byEmail map[string]*user.User
}

func newMemUserRepo(users ...*user.User) *memUserRepo {
	r := &memUserRepo{byEmail: make(map[string]*user.User)}
	for _, u := range users {
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *user.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*user.User, error) {
	for _, u := range r.byEmail {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (r *memUserRepo) Update(_ context.Context, u *user.User) error {
	r.byEmail[u.Email] = u
	return nil
}

func testUser(t *testing.T, email, password string, role user.Role) *user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
}

const secret = "test-secret"

func TestLoginIssuesToken(t *testing.T) {
	u := testUser(t, "staff@bloem.test", "hunter22", user.RoleStaff)
	svc := NewService(newMemUserRepo(u), secret, time.Hour)

	token, err := svc.Login(context.Background(), u.Email, "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Subject != u.ID.String() {
		t.Errorf("subject = %q, want user id", claims.Subject)
	}
	if claims.Role != string(user.RoleStaff) {
		t.Errorf("role claim = %q, want staff", claims.Role)
	}
	if claims.ExpiresAt <= time.Now().Unix() {
		t.Error("token already expired")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	u := testUser(t, "user@bloem.test", "correct", user.RoleUser)
	svc := NewService(newMemUserRepo(u), secret, time.Hour)

	if _, err := svc.Login(context.Background(), u.Email, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@bloem.test", "correct"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestStaffMiddleware(t *testing.T) {
	staffUser := testUser(t, "staff@bloem.test", "pw", user.RoleStaff)
	plainUser := testUser(t, "user@bloem.test", "pw", user.RoleUser)
	svc := NewService(newMemUserRepo(staffUser, plainUser), secret, time.Hour)

	staffToken, err := svc.Login(context.Background(), staffUser.Email, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	userToken, err := svc.Login(context.Background(), plainUser.Email, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	handler := Chain(Authenticator(secret), RequireRole(string(user.RoleStaff)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"non-staff token", "Bearer " + userToken, http.StatusForbidden},
		{"staff token", "Bearer " + staffToken, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	u := testUser(t, "user@bloem.test", "pw", user.RoleUser)
	svc := NewService(newMemUserRepo(u), secret, -time.Minute)

	token, err := svc.Login(context.Background(), u.Email, "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	handler := Authenticator(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for expired token", rec.Code)
	}
}
