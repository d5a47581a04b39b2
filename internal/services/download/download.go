// Package download выдает и погашает одноразовые токены на скачивание
// файлов контента. Токен живет 15 минут в redis и удаляется атомарным
// чтением-с-удалением, поэтому из двух конкурентных погашений одного
// токена успешным будет ровно одно.
package download

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
	"github.com/magabrotheeeer/content-marketplace/internal/services/access"
)

const tokenKeyPrefix = "download_token:"

var (
	// ErrAccessDenied у пользователя нет права на этот элемент контента.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidToken токен отсутствует, истек или уже был использован.
	// Не различается специально: ответ не должен раскрывать, существовал ли токен.
	ErrInvalidToken = errors.New("invalid or expired download token")
)

// TokenStore хранилище токенов с TTL и атомарным чтением-с-удалением.
type TokenStore interface {
	SetIfAbsent(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	TakeOnce(ctx context.Context, key string, result any) (bool, error)
}

// ProfileRepository доступ к профилю и множеству купленного контента.
type ProfileRepository interface {
	GetProfile(ctx context.Context, uid string) (*models.Profile, error)
	ListPurchasedContent(ctx context.Context, uid string) ([]string, error)
}

// ContentRepository доступ к каталогу.
type ContentRepository interface {
	GetContentByID(ctx context.Context, id string) (*models.ContentItem, error)
}

// FileStore доступ к байтам файла по ключу объекта.
type FileStore interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, int64, error)
}

// Issued результат выдачи токена.
type Issued struct {
	Token     string
	ExpiresIn int // секунды
}

// File результат погашения токена: метаданные элемента и поток байтов.
type File struct {
	Item   *models.ContentItem
	Body   io.ReadCloser
	Length int64
}

// Service выдает и погашает токены на скачивание.
type Service struct {
	tokens  TokenStore
	repo    ProfileRepository
	content ContentRepository
	files   FileStore
	log     *slog.Logger
}

// New создает Service.
func New(tokens TokenStore, repo ProfileRepository, content ContentRepository, files FileStore, log *slog.Logger) *Service {
	return &Service{
		tokens:  tokens,
		repo:    repo,
		content: content,
		files:   files,
		log:     log,
	}
}

// Issue проверяет право доступа и выдает токен. При отказе токен
// не создается. Право проверяется заново при каждом вызове: статус
// подписки мог измениться после предыдущей проверки.
func (s *Service) Issue(ctx context.Context, userUID, contentID string) (*Issued, error) {
	const op = "download.Issue"

	profile, err := s.repo.GetProfile(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	purchased, err := s.repo.ListPurchasedContent(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !access.Evaluate(profile, purchased, contentID) {
		return nil, ErrAccessDenied
	}

	value := models.DownloadToken{
		UserUID:   userUID,
		ContentID: contentID,
	}
	// Коллизия 256-битного токена практически невозможна, но SetIfAbsent
	// все равно не перезапишет чужой токен; несколько повторных попыток
	// закрывают и этот случай.
	for range 3 {
		token, err := newToken()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ok, err := s.tokens.SetIfAbsent(ctx, tokenKeyPrefix+token, value, models.DownloadTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			return &Issued{
				Token:     token,
				ExpiresIn: int(models.DownloadTokenTTL.Seconds()),
			}, nil
		}
	}
	return nil, fmt.Errorf("%s: token collision", op)
}

// Redeem погашает токен и возвращает файл. Токен удаляется до передачи
// байтов: повторное использование невозможно.
func (s *Service) Redeem(ctx context.Context, token string) (*File, error) {
	const op = "download.Redeem"

	var value models.DownloadToken
	found, err := s.tokens.TakeOnce(ctx, tokenKeyPrefix+token, &value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		return nil, ErrInvalidToken
	}

	item, err := s.content.GetContentByID(ctx, value.ContentID)
	if err != nil {
		s.log.Error("redeemed token references missing content",
			slog.String("content_id", value.ContentID))
		return nil, ErrInvalidToken
	}

	body, length, err := s.files.Fetch(ctx, item.FileKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &File{
		Item:   item,
		Body:   body,
		Length: length,
	}, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
