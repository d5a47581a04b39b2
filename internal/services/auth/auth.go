// Package auth содержит логику регистрации, авторизации и валидации JWT.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/content-marketplace/internal/lib/jwt"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/password"
	"github.com/magabrotheeeer/content-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// ErrInvalidCredentials неверная пара логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ProfileRepository описывает контракт для работы с профилями в базе данных.
type ProfileRepository interface {
	// RegisterProfile сохраняет новый профиль и возвращает его UID.
	RegisterProfile(ctx context.Context, profile models.Profile) (string, error)
	// GetProfileByUsername возвращает профиль по имени или ошибку, если не найден.
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	// UpdateLastLogin фиксирует время последнего входа.
	UpdateLastLogin(ctx context.Context, uid string) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	profiles ProfileRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(profiles ProfileRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		profiles: profiles,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Register создает новый профиль с хэшированием пароля и дефолтной
// ролью "user". Подписки и покупок у нового профиля нет.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	profile := models.Profile{
		Email:              email,
		Username:           username,
		PasswordHash:       hashed,
		Role:               "user",
		SubscriptionStatus: models.SubscriptionNone,
		SubscriptionType:   models.PlanNone,
	}
	return s.profiles.RegisterProfile(ctx, profile)
}

// Login проверяет пароль пользователя, обновляет last_login и генерирует JWT.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	profile, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := password.CompareHash(profile.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(profile.Username, profile.Role, profile.UID)
	if err != nil {
		return "", "", err
	}
	if err := s.profiles.UpdateLastLogin(ctx, profile.UID); err != nil {
		// Вход не ломаем из-за метки времени.
		s.log.Error("failed to update last_login", sl.Err(err))
	}
	return token, profile.Role, nil
}

// ValidateToken проверяет JWT и возвращает claims, если токен валиден.
func (s *Service) ValidateToken(tokenStr string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(tokenStr)
}
