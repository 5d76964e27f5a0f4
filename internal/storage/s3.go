package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"companymap/internal/dataset"
	"companymap/internal/env"
	"companymap/internal/keys"
	"companymap/internal/layout"
	"companymap/internal/models"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// objectStore is the part of the MinIO client the service relies on.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// minioStore adapts *minio.Client to objectStore.
type minioStore struct {
	*minio.Client
}

func (m minioStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before decoding starts.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, err
	}
	return obj, nil
}

// S3Service is a client for S3-compatible storage holding the companies
// dataset and the published layouts.
type S3Service struct {
	store  objectStore
	logger zerolog.Logger
}

// NewS3Service initializes and returns a new S3 storage service.
func NewS3Service(cfg env.MinIOConfig, logger zerolog.Logger) (*S3Service, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("missing one or more required MinIO settings: endpoint, access key, secret key")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO client configured")
	return &S3Service{store: minioStore{client}, logger: logger}, nil
}

// CreateBucket makes bucket in location unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, bucketName string, location string) (bool, error) {
	exists, err := s.store.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := s.store.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return false, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		s.logger.Info().Str("bucket", bucketName).Msg("Bucket created")
	}
	return true, nil
}

// GetDataset loads and decodes the companies dataset stored under key.
func (s *S3Service) GetDataset(ctx context.Context, bucketName, key string) ([]models.Company, error) {
	obj, err := s.open(ctx, bucketName, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	companies, err := dataset.Decode(obj)
	if err != nil {
		return nil, fmt.Errorf("dataset %s/%s: %w", bucketName, key, err)
	}
	s.logger.Info().
		Str("bucket", bucketName).
		Str("key", key).
		Int("companies", len(companies)).
		Msg("Dataset loaded")
	return companies, nil
}

// PutDataset uploads a raw dataset document under key.
func (s *S3Service) PutDataset(ctx context.Context, bucketName, key string, data []byte) error {
	return s.put(ctx, bucketName, key, data)
}

// PutLayout writes l to its archive key and to the latest-layout key.
func (s *S3Service) PutLayout(ctx context.Context, bucketName string, l *models.Layout) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal layout to JSON: %w", err)
	}
	for _, key := range []string{keys.Layout(l.ID), keys.LatestLayout} {
		if err := s.put(ctx, bucketName, key, data); err != nil {
			return err
		}
	}
	s.logger.Info().
		Str("bucket", bucketName).
		Str("layout_id", l.ID).
		Int("points", len(l.Points)).
		Msg("Layout stored")
	return nil
}

// GetLayout retrieves a stored layout; use keys.LatestLayout for the newest.
func (s *S3Service) GetLayout(ctx context.Context, bucketName, key string) (*models.Layout, error) {
	obj, err := s.open(ctx, bucketName, key)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	var l models.Layout
	if err := json.NewDecoder(obj).Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to decode layout %s/%s: %w", bucketName, key, err)
	}
	return &l, nil
}

// LayoutSink returns a sink that stores published layouts in bucketName.
func (s *S3Service) LayoutSink(bucketName string) layout.Sink {
	return layout.SinkFunc(func(ctx context.Context, l *models.Layout) error {
		return s.PutLayout(ctx, bucketName, l)
	})
}

func (s *S3Service) open(ctx context.Context, bucketName, key string) (io.ReadCloser, error) {
	obj, err := s.store.Open(ctx, bucketName, key)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s/%s: %w", bucketName, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucketName, key, err)
	}
	return obj, nil
}

func (s *S3Service) put(ctx context.Context, bucketName, key string, data []byte) error {
	_, err := s.store.PutObject(
		ctx,
		bucketName,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %s/%s: %w", bucketName, key, err)
	}
	return nil
}
