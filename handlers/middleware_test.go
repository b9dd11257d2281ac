package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/camden-git/attendancebackend/models"
)

type fakeOperatorRepo struct {
	operators map[uint]*models.Operator
}

func (r *fakeOperatorRepo) Create(operator *models.Operator) error { return nil }

func (r *fakeOperatorRepo) GetByUsername(username string) (*models.Operator, error) {
	for _, op := range r.operators {
		if op.Username == username {
			return op, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOperatorRepo) GetByID(id uint) (*models.Operator, error) {
	op, ok := r.operators[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return op, nil
}

func (r *fakeOperatorRepo) Count() (int64, error) { return int64(len(r.operators)), nil }

func signedToken(t *testing.T, key []byte, operatorID uint) string {
	t.Helper()
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(operatorID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tokenString
}

func TestAuthMiddlewareLoadsOperator(t *testing.T) {
	key := []byte("test-secret")
	repo := &fakeOperatorRepo{operators: map[uint]*models.Operator{
		3: {ID: 3, Username: "frontdesk"},
	}}

	var seen *models.Operator
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(OperatorContextKey).(*models.Operator)
	})

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, key, 3))
	rec := httptest.NewRecorder()
	AuthMiddleware(repo, key, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seen == nil || seen.ID != 3 || seen.Username != "frontdesk" {
		t.Fatalf("operator not loaded into context: %+v", seen)
	}
}

// a token signed with a different key must be reported as a signature
// failure; jwt wraps its parse errors, so the check has to unwrap
func TestAuthMiddlewareRejectsWrongKey(t *testing.T) {
	repo := &fakeOperatorRepo{operators: map[uint]*models.Operator{
		3: {ID: 3, Username: "frontdesk"},
	}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for a rejected token")
	})

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, []byte("other-secret"), 3))
	rec := httptest.NewRecorder()
	AuthMiddleware(repo, []byte("test-secret"), next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token signature") {
		t.Fatalf("expected the signature-specific message, got: %s", rec.Body.String())
	}
}

func TestAuthMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	repo := &fakeOperatorRepo{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a valid token")
	})

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		AuthMiddleware(repo, []byte("test-secret"), next).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthMiddlewareRejectsDeletedOperator(t *testing.T) {
	key := []byte("test-secret")
	repo := &fakeOperatorRepo{operators: map[uint]*models.Operator{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run for an unknown operator")
	})

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, key, 9))
	rec := httptest.NewRecorder()
	AuthMiddleware(repo, key, next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a deleted operator, got %d", rec.Code)
	}
}
