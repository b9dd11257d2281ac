package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/camden-git/attendancebackend/models"
	"github.com/camden-git/attendancebackend/repository"
)

const jwtExpirationHours = 24

type AuthHandler struct {
	OperatorRepo repository.OperatorRepositoryInterface
	JWTKey       []byte
}

func NewAuthHandler(operatorRepo repository.OperatorRepositoryInterface, jwtSecret string) *AuthHandler {
	return &AuthHandler{OperatorRepo: operatorRepo, JWTKey: []byte(jwtSecret)}
}

type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string          `json:"token"`
	Operator  models.Operator `json:"operator"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	operator, err := h.OperatorRepo.GetByUsername(payload.Username)
	if err != nil {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if !operator.CheckPassword(payload.Password) {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	expirationTime := time.Now().Add(jwtExpirationHours * time.Hour)
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(operator.ID),
		ExpiresAt: jwt.NewNumericDate(expirationTime),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    "attendancebackend",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(h.JWTKey)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	operatorForResponse := *operator
	operatorForResponse.PasswordHash = ""

	response := LoginResponse{
		Token:     tokenString,
		Operator:  operatorForResponse,
		ExpiresAt: expirationTime,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Logout is a no-op for JWT auth; the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully. Please discard your token."})
}

// CurrentOperator retrieves the authenticated operator from the request context.
// This handler should be protected by the AuthMiddleware.
func (h *AuthHandler) CurrentOperator(w http.ResponseWriter, r *http.Request) {
	operator, ok := r.Context().Value(OperatorContextKey).(*models.Operator)
	if !ok || operator == nil {
		http.Error(w, "Could not retrieve operator from context", http.StatusInternalServerError)
		return
	}

	operatorForResponse := *operator
	operatorForResponse.PasswordHash = ""

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(operatorForResponse)
}
