package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/content-marketplace/internal/models"
)

// ErrContentNotFound возвращается, когда элемент каталога отсутствует.
var ErrContentNotFound = errors.New("content item not found")

const contentColumns = `id, slug, title, description, content_type,
		price_cents, stripe_price_id, file_key, file_name, mime_type,
		is_featured, view_count, published_at`

func scanContentItem(row interface{ Scan(...any) error }) (*models.ContentItem, error) {
	item := &models.ContentItem{}
	var stripePriceID, fileKey sql.NullString
	var publishedAt sql.NullTime
	if err := row.Scan(&item.ID, &item.Slug, &item.Title, &item.Description,
		&item.ContentType, &item.PriceCents, &stripePriceID, &fileKey,
		&item.FileName, &item.MimeType, &item.IsFeatured, &item.ViewCount,
		&publishedAt); err != nil {
		return nil, err
	}
	item.StripePriceID = stripePriceID.String
	item.FileKey = fileKey.String
	if publishedAt.Valid {
		item.PublishedAt = &publishedAt.Time
	}
	return item, nil
}

// ListContent возвращает опубликованные элементы каталога с пагинацией.
func (s *Storage) ListContent(ctx context.Context, limit, offset int) ([]*models.ContentItem, error) {
	const op = "storage.ListContent"

	query := `SELECT ` + contentColumns + `
			  FROM content_items
			  ORDER BY published_at DESC NULLS LAST, id
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetContentBySlug возвращает элемент каталога по slug.
func (s *Storage) GetContentBySlug(ctx context.Context, slug string) (*models.ContentItem, error) {
	const op = "storage.GetContentBySlug"

	query := `SELECT ` + contentColumns + ` FROM content_items WHERE slug = $1`
	item, err := scanContentItem(s.DB.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// GetContentByID возвращает элемент каталога по идентификатору.
func (s *Storage) GetContentByID(ctx context.Context, id string) (*models.ContentItem, error) {
	const op = "storage.GetContentByID"

	query := `SELECT ` + contentColumns + ` FROM content_items WHERE id = $1`
	item, err := scanContentItem(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrContentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return item, nil
}

// IncrementViewCount увеличивает счетчик просмотров элемента каталога.
func (s *Storage) IncrementViewCount(ctx context.Context, id string) error {
	const op = "storage.IncrementViewCount"

	query := `UPDATE content_items SET view_count = view_count + 1 WHERE id = $1`
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
