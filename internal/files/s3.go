// Package files реализует доступ к файлам контента в S3-совместимом
// объектном хранилище.
package files

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/magabrotheeeer/content-marketplace/internal/config"
)

// Store клиент объектного хранилища с файлами контента.
type Store struct {
	s3Client *s3.Client
	bucket   string
}

// NewStore создает клиент S3 по настройкам из конфига. Для совместимых
// хранилищ (MinIO, Backblaze) используется endpoint_url и path-style адресация.
func NewStore(ctx context.Context, cfg config.S3Storage) (*Store, error) {
	const op = "files.NewStore"

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &Store{
		s3Client: s3Client,
		bucket:   cfg.Bucket,
	}, nil
}

// Fetch возвращает поток байтов объекта и его размер.
// Закрыть io.ReadCloser обязан вызывающий.
func (s *Store) Fetch(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	const op = "files.Fetch"

	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}
