package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/validation"
)

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
)

// UserPurger deletes one user's rows for a feature inside the account
// deletion transaction.
type UserPurger interface {
	PurgeUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	purgers []UserPurger
	now     func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, purgers ...UserPurger) *AuthService {
	return &AuthService{
		db:      db,
		cfg:     cfg,
		purgers: purgers,
		now:     time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := validation.SanitizeText(req.DisplayName)
	if displayName == "" {
		displayName = strings.Split(req.Email, "@")[0]
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        req.Email,
		Password:     string(hash),
		DisplayName:  displayName,
		Role:         models.RoleUser,
		AuthProvider: models.ProviderEmail,
	}

	// The unique email index decides; a lookup first would race.
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "action", "register", "user_id", user.ID.String())
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token. Revocation is a conditional update, so
// two concurrent refreshes with the same token cannot both succeed.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = false AND expires_at > ?", stored.ID, s.now()).
		Update("revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	resp := userResponse(&user)
	return &resp, nil
}

// DeleteAccount removes the user and every row the features keep for them.
// Email accounts must confirm with their password.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if user.AuthProvider == models.ProviderEmail {
		if password == "" {
			return ErrPasswordRequired
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
			return ErrInvalidCredentials
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range s.purgers {
			if err := p.PurgeUser(ctx, tx, userID); err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	slog.Info("account deleted", "action", "delete_account", "user_id", userID.String())
	return nil
}

// GitHubLogin signs in the GitHub account, creating the user on first
// login or linking an existing email account.
func (s *AuthService) GitHubLogin(ctx context.Context, profile *GitHubProfile) (*dto.AuthResponse, error) {
	githubID := profile.ID
	email := normalizeEmail(profile.Email)
	if email == "" {
		email = githubID + "@users.noreply.github.com"
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("github_id = ? OR email = ?", githubID, email).
		Order("github_id IS NULL").
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		displayName := validation.SanitizeText(profile.Name)
		if displayName == "" {
			displayName = profile.Login
		}
		user = models.User{
			ID:           uuid.New(),
			Email:        email,
			DisplayName:  displayName,
			AvatarURL:    profile.AvatarURL,
			Role:         models.RoleUser,
			GitHubID:     &githubID,
			AuthProvider: models.ProviderGitHub,
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create GitHub user: %w", err)
		}
		slog.Info("user registered", "action", "register_github", "user_id", user.ID.String())
	case err != nil:
		return nil, fmt.Errorf("failed to look up GitHub user: %w", err)
	case user.GitHubID == nil:
		updates := map[string]interface{}{"github_id": githubID}
		if user.AvatarURL == "" {
			updates["avatar_url"] = profile.AvatarURL
		}
		if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to link GitHub account: %w", err)
		}
		user.GitHubID = &githubID
	}

	return s.generateTokenPair(ctx, &user)
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		AvatarURL:    user.AvatarURL,
		AuthProvider: user.AuthProvider,
	}
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
