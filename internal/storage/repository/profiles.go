package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// ErrProfileNotFound возвращается, когда профиль отсутствует в базе.
var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `uid, email, username, password_hash, role,
		subscription_status, subscription_type, billing_customer_ref,
		billing_subscription_ref, free_access, current_period_end,
		created_at, last_login`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	p := &models.Profile{}
	var username, customerRef, subscriptionRef sql.NullString
	var periodEnd, lastLogin sql.NullTime
	if err := row.Scan(&p.UID, &p.Email, &username, &p.PasswordHash, &p.Role,
		&p.SubscriptionStatus, &p.SubscriptionType, &customerRef,
		&subscriptionRef, &p.FreeAccess, &periodEnd,
		&p.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	p.Username = username.String
	p.BillingCustomerRef = customerRef.String
	p.BillingSubscriptionRef = subscriptionRef.String
	if periodEnd.Valid {
		p.CurrentPeriodEnd = &periodEnd.Time
	}
	if lastLogin.Valid {
		p.LastLogin = &lastLogin.Time
	}
	return p, nil
}

// RegisterProfile сохраняет новый профиль и возвращает его UID.
func (s *Storage) RegisterProfile(ctx context.Context, profile models.Profile) (string, error) {
	const op = "storage.RegisterProfile"

	var newUID string
	query := `INSERT INTO profiles (email, username, password_hash, role,
			      subscription_status, subscription_type)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		profile.Email, profile.Username, profile.PasswordHash, profile.Role,
		profile.SubscriptionStatus, profile.SubscriptionType).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetProfile возвращает профиль по его UID.
func (s *Storage) GetProfile(ctx context.Context, uid string) (*models.Profile, error) {
	const op = "storage.GetProfile"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE uid = $1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetProfileByUsername возвращает профиль по имени пользователя.
func (s *Storage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	const op = "storage.GetProfileByUsername"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE username = $1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetProfileByCustomerRef находит профиль по идентификатору клиента
// у платёжного провайдера. Используется обработчиками событий по инвойсам,
// в которых нет метаданных с uid пользователя.
func (s *Storage) GetProfileByCustomerRef(ctx context.Context, customerRef string) (*models.Profile, error) {
	const op = "storage.GetProfileByCustomerRef"

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE billing_customer_ref = $1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, customerRef))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// EnsureProfile создает профиль с указанным uid и email, если его еще нет.
// Вызывается из обработчика завершения оплаты: профиль мог не успеть
// появиться, если оплата пришла раньше регистрации.
func (s *Storage) EnsureProfile(ctx context.Context, uid, email string) error {
	const op = "storage.EnsureProfile"

	query := `INSERT INTO profiles (uid, email, password_hash, role)
			  VALUES ($1, $2, '', 'user')
			  ON CONFLICT (uid) DO NOTHING;`
	if _, err := s.DB.ExecContext(ctx, query, uid, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateLastLogin фиксирует время последнего входа пользователя.
func (s *Storage) UpdateLastLogin(ctx context.Context, uid string) error {
	const op = "storage.UpdateLastLogin"

	query := `UPDATE profiles SET last_login = now() WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ApplySubscription записывает состояние подписки, пришедшее от провайдера.
// billing_customer_ref выставляется только если он еще пуст (первая запись
// выигрывает, конкурирующие повторные доставки не затирают значение),
// billing_subscription_ref заменяется всегда.
func (s *Storage) ApplySubscription(ctx context.Context, uid, status, subType, customerRef, subscriptionRef string, periodEnd *time.Time) error {
	const op = "storage.ApplySubscription"

	query := `UPDATE profiles
			  SET subscription_status = $2,
			      subscription_type = $3,
			      billing_customer_ref = COALESCE(billing_customer_ref, NULLIF($4, '')),
			      billing_subscription_ref = NULLIF($5, ''),
			      current_period_end = $6
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid, status, subType, customerRef, subscriptionRef, periodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	return nil
}

// CancelSubscription переводит подписку в статус cancelled, не трогая
// купленный контент и флаг бесплатного доступа.
func (s *Storage) CancelSubscription(ctx context.Context, uid string, periodEnd *time.Time) error {
	const op = "storage.CancelSubscription"

	query := `UPDATE profiles
			  SET subscription_status = $2,
			      current_period_end = COALESCE($3, current_period_end)
			  WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid, models.SubscriptionCancelled, periodEnd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	return nil
}

// AddPurchasedContent добавляет элемент контента во множество купленного.
// Повторная доставка того же события не создает дубликата.
func (s *Storage) AddPurchasedContent(ctx context.Context, uid, contentID, customerRef string) error {
	const op = "storage.AddPurchasedContent"

	query := `INSERT INTO profile_content (profile_uid, content_id)
			  VALUES ($1, $2)
			  ON CONFLICT (profile_uid, content_id) DO NOTHING;`
	if _, err := s.DB.ExecContext(ctx, query, uid, contentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if customerRef != "" {
		refQuery := `UPDATE profiles
				     SET billing_customer_ref = COALESCE(billing_customer_ref, $2)
				     WHERE uid = $1`
		if _, err := s.DB.ExecContext(ctx, refQuery, uid, customerRef); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// ListPurchasedContent возвращает идентификаторы купленного контента.
func (s *Storage) ListPurchasedContent(ctx context.Context, uid string) ([]string, error) {
	const op = "storage.ListPurchasedContent"

	query := `SELECT content_id FROM profile_content WHERE profile_uid = $1`
	rows, err := s.DB.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var contentID string
		if err = rows.Scan(&contentID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, contentID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RevokePurchasedContent удаляет элемент из множества купленного.
// Единственный путь, которым купленный контент может исчезнуть:
// webhook-обработчики его никогда не отзывают.
func (s *Storage) RevokePurchasedContent(ctx context.Context, uid, contentID string) (int, error) {
	const op = "storage.RevokePurchasedContent"

	query := `DELETE FROM profile_content WHERE profile_uid = $1 AND content_id = $2`
	res, err := s.DB.ExecContext(ctx, query, uid, contentID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(n), nil
}

// SetFreeAccess выставляет административный флаг бесплатного доступа.
func (s *Storage) SetFreeAccess(ctx context.Context, uid string, enabled bool) error {
	const op = "storage.SetFreeAccess"

	query := `UPDATE profiles SET free_access = $2 WHERE uid = $1`
	res, err := s.DB.ExecContext(ctx, query, uid, enabled)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	return nil
}
