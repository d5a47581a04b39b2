package models

import "time"

// Типы контента в каталоге.
const (
	ContentVideo    = "video"
	ContentAudio    = "audio"
	ContentPDF      = "pdf"
	ContentTemplate = "template"
	ContentResource = "resource"
	ContentTraining = "training"
)

// ContentItem представляет элемент каталога. Каталог принадлежит внешней
// CMS, сервис читает его как справочные данные и только инкрементирует
// счётчик просмотров.
type ContentItem struct {
	ID            string     `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ContentType   string     `json:"content_type"`
	PriceCents    int        `json:"price_cents"`    // Цена разовой покупки в центах
	StripePriceID string     `json:"-"`              // Прайс у платёжного провайдера
	FileKey       string     `json:"-"`              // Ключ объекта в S3
	FileName      string     `json:"file_name"`      // Имя файла для Content-Disposition
	MimeType      string     `json:"mime_type"`
	IsFeatured    bool       `json:"is_featured"`
	ViewCount     int        `json:"view_count"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
}
