package auth

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/anondate/anondate-backend/internal/domain"
	"github.com/anondate/anondate-backend/internal/logger"
	"github.com/anondate/anondate-backend/internal/repository"
)

const (
	minPasswordLen = 8
	bcryptCost     = 10
)

type UseCase struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	prefRepo    repository.PreferenceRepository
	sessionRepo repository.SessionRepository
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewUseCase(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	prefRepo repository.PreferenceRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	tokenTTL time.Duration,
) *UseCase {
	return &UseCase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		prefRepo:    prefRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

// SignupRequest creates a User plus default Profile and Preference records.
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"password_confirm"`
	AnonName        string `json:"anon_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult carries a bearer token and its owner.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

func (uc *UseCase) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLen)
	}
	if req.PasswordConfirm != "" && req.PasswordConfirm != req.Password {
		return nil, fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	anonName := req.AnonName
	if anonName == "" {
		anonName = fmt.Sprintf("User#%04d", rand.Intn(10000))
	}
	if err := uc.profileRepo.Create(ctx, &domain.Profile{UserID: user.ID, AnonName: anonName}); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if err := uc.prefRepo.Create(ctx, domain.DefaultPreference(user.ID)); err != nil {
		return nil, fmt.Errorf("failed to create preferences: %w", err)
	}

	logger.Info("user signed up", "user_id", user.ID)
	return uc.issueToken(ctx, user.ID)
}

func (uc *UseCase) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.userRepo.TouchLastActive(ctx, user.ID); err != nil {
		logger.Warn("failed to update last active", "user_id", user.ID, "err", err)
	}

	return uc.issueToken(ctx, user.ID)
}

// Logout revokes the session behind the presented token.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessionRepo.Revoke(ctx, sessionID)
}

// issueToken signs an expiring JWT and registers its session id so the
// token can be revoked before expiry.
func (uc *UseCase) issueToken(ctx context.Context, userID string) (*AuthResult, error) {
	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(uc.tokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"sid": sessionID,
		"iat": time.Now().Unix(),
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := uc.sessionRepo.Store(ctx, sessionID, userID, uc.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &AuthResult{Token: signed, ExpiresAt: expiresAt, UserID: userID}, nil
}

// VerifyToken validates the signature and expiry, then resolves the session
// against the revocation store. Returns the user and session ids.
func (uc *UseCase) VerifyToken(ctx context.Context, tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(uc.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", domain.ErrInvalidToken
	}
	userID, _ := claims["sub"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return "", "", domain.ErrInvalidToken
	}

	stored, err := uc.sessionRepo.UserID(ctx, sessionID)
	if err != nil {
		return "", "", err
	}
	if stored != userID {
		return "", "", domain.ErrInvalidToken
	}
	return userID, sessionID, nil
}
