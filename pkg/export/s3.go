package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nurhachar-sibei/Datadeal/pkg/core/panel"
)

// S3Uploader отправляет снапшоты панелей в S3-совместимое хранилище
type S3Uploader struct {
	uploader *manager.Uploader
	bucket   string
}

// NewS3Uploader создает uploader. Регион и креды берутся из стандартной
// цепочки AWS (env, shared config, IAM role)
func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
	}, nil
}

// UploadCSV выгружает панель как CSV-объект. compress=true пишет
// zstd-поток (ключ принято завершать расширением .csv.zst)
func (u *S3Uploader) UploadCSV(ctx context.Context, key string, p *panel.Panel, compress bool) error {
	var buf bytes.Buffer

	var err error
	if compress {
		err = WriteCSVZstd(&buf, p)
	} else {
		err = WriteCSV(&buf, p)
	}
	if err != nil {
		return err
	}

	contentType := "text/csv"
	if compress {
		contentType = "application/zstd"
	}

	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        &buf,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %q to s3://%s: %w", key, u.bucket, err)
	}
	return nil
}
