// Package blobstore holds uploaded photos outside the relational store;
// only public URLs ever reach the database.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store uploads a binary blob and returns the public URL it will be served
// from.
type Store interface {
	Upload(ctx context.Context, filename string, contentType string, r io.Reader, size int64) (string, error)
}

// S3Config configures an S3-compatible bucket. PublicURL is the base URL
// objects are reachable under; when empty it is derived from the endpoint
// and bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// S3Store stores photos in an S3-compatible bucket.
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewS3(cfg S3Config) (*S3Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("blobstore client: %w", err)
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// Upload writes the blob under a fresh object name and returns its public
// URL. Object names never collide, so an upload can't overwrite an earlier
// photo.
func (s *S3Store) Upload(ctx context.Context, filename string, contentType string, r io.Reader, size int64) (string, error) {
	name := ObjectName(filename)

	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload %v: %w", name, err)
	}

	return s.publicURL + "/" + name, nil
}

// ObjectName builds the bucket path for an uploaded photo, keeping the
// original file extension: requests/<uuid>.<ext>.
func ObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return "requests/" + uuid.NewString() + ext
}
