package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marga-Ghale/taska-backend/internal/config"
	"github.com/Marga-Ghale/taska-backend/internal/repository"
	"github.com/Marga-Ghale/taska-backend/internal/session"
	"github.com/Marga-Ghale/taska-backend/internal/types"
)

const minPasswordLength = 6

// ============================================
// Auth Service
// ============================================

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*repository.User, string, string, error)
	Login(ctx context.Context, email, password string) (*repository.User, string, string, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, string, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	// Authenticate resolves an access token to the caller's session,
	// consulting the session cache before the user store.
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

type authService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	sessions session.Store
}

func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, sessions session.Store) AuthService {
	if sessions == nil {
		sessions = session.NewMemoryStore()
	}
	return &authService{cfg: cfg, userRepo: userRepo, sessions: sessions}
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account. Other roles are granted by an admin.
func (s *authService) Register(ctx context.Context, name, email, password string) (*repository.User, string, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || len(password) < minPasswordLength {
		return nil, "", "", ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", "", ErrInvalidInput
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to look up user: %w", err)
	}
	if existingUser != nil {
		return nil, "", "", ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, "", "", err
	}

	user := &repository.User{
		Name:     name,
		Email:    email,
		Password: hashedPassword,
		Roles:    []string{string(types.RoleCustomer)},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", "", fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	log.Printf("[Auth] Registered user %s", user.ID)
	return user, accessToken, refreshToken, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*repository.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil || user == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.generateTokens(ctx, user.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

// RefreshToken rotates a refresh token: the presented one is consumed.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, string, error) {
	rt, err := s.userRepo.FindRefreshToken(ctx, refreshToken)
	if err != nil || rt == nil {
		return "", "", ErrInvalidToken
	}

	if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return "", "", fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if time.Now().After(rt.ExpiresAt) {
		return "", "", ErrInvalidToken
	}

	accessToken, newRefreshToken, err := s.generateTokens(ctx, rt.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken != "" {
		if err := s.userRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	if userID != "" {
		if err := s.sessions.DeleteSession(ctx, userID); err != nil {
			log.Printf("[Auth] Failed to drop cached session for %s: %v", userID, err)
		}
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*session.Session, error) {
	userID, sessionID, err := s.parseAccessToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var cached session.Session
	err = s.sessions.GetSession(ctx, userID, &cached)
	if err == nil && cached.UserID == userID {
		cached.ID = sessionID
		return &cached, nil
	}
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		log.Printf("[Auth] Session cache read failed for %s: %v", userID, err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	sess := &session.Session{
		ID:     sessionID,
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Roles:  types.ParseRoles(user.Roles),
	}
	if err := s.sessions.SetSession(ctx, user.ID, sess, s.sessionTTL()); err != nil {
		log.Printf("[Auth] Session cache write failed for %s: %v", user.ID, err)
	}
	return sess, nil
}

func (s *authService) sessionTTL() time.Duration {
	ttl := s.cfg.SessionTTL
	if access := s.cfg.AccessTokenTTL(); ttl <= 0 || (access > 0 && ttl > access) {
		ttl = access
	}
	return ttl
}

func (s *authService) parseAccessToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", "", ErrInvalidToken
	}
	sessionID, _ := claims["sid"].(string)
	return userID, sessionID, nil
}

func (s *authService) generateTokens(ctx context.Context, userID string) (string, string, error) {
	now := time.Now()
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"sid": uuid.New().String(),
		"exp": now.Add(s.cfg.AccessTokenTTL()).Unix(),
		"iat": now.Unix(),
	})

	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", err
	}

	rt := &repository.RefreshToken{
		Token:     uuid.New().String(),
		UserID:    userID,
		ExpiresAt: now.Add(s.cfg.RefreshTokenTTL()),
	}
	if err := s.userRepo.SaveRefreshToken(ctx, rt); err != nil {
		return "", "", err
	}

	return accessTokenString, rt.Token, nil
}
