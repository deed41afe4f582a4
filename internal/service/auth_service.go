package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"surveyflow/internal/config"
	"surveyflow/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	adminTokenTTL       = 12 * time.Hour
	participantTokenTTL = 24 * time.Hour
)

// AuthService handles admin login and participant tokens
type AuthService struct {
	adminUsername     string
	adminPassword     string
	adminPasswordHash []byte
	jwtSecret         []byte
	now               func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) *AuthService {
	s := &AuthService{
		adminUsername: cfg.AdminUsername,
		adminPassword: cfg.AdminPassword,
		jwtSecret:     []byte(cfg.JWTSecret),
		now:           time.Now,
	}
	if cfg.AdminPasswordHash != "" {
		s.adminPasswordHash = []byte(cfg.AdminPasswordHash)
	}
	return s
}

// Login validates admin credentials and returns an admin token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUsername)) != 1 {
		return nil, ErrInvalidCredentials
	}
	if !s.checkPassword(password) {
		return nil, ErrInvalidCredentials
	}

	adminID := "admin_" + uuid.New().String()[:8]
	token, err := s.sign(adminID, model.RoleAdmin, adminTokenTTL)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UserID: adminID, Role: model.RoleAdmin}, nil
}

func (s *AuthService) checkPassword(password string) bool {
	if s.adminPasswordHash != nil {
		return bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
}

// IssueParticipantToken mints a token for a survey participant
func (s *AuthService) IssueParticipantToken(userID string) (*model.LoginResponse, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	token, err := s.sign(userID, model.RoleParticipant, participantTokenTTL)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, UserID: userID, Role: model.RoleParticipant}, nil
}

func (s *AuthService) sign(userID, role string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &model.UserClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a bearer JWT and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Role != model.RoleAdmin && claims.Role != model.RoleParticipant {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
