// Package publish uploads written catalogs to object storage so they can be served
// without running a scrape.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/kurin/blazer/b2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/publish")

const (
	EnvKeyID  = "B2_KEY_ID"
	EnvAppKey = "B2_APP_KEY"
)

// Config selects the bucket catalogs are published to. Credentials are not part of the
// config, they come from EnvKeyID and EnvAppKey.
type Config struct {
	Bucket string `json:"bucket"`
	// Prefix is prepended to every object name, ex. "catalogs/2025".
	Prefix string `json:"prefix"`
}

func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// Uploader stores an object and returns the url it can be downloaded from.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

// B2Bucket is an Uploader backed by a Backblaze B2 bucket.
type B2Bucket struct {
	bucket *b2.Bucket
}

func OpenB2(ctx context.Context, keyID, appKey, bucketName string) (B2Bucket, error) {
	if keyID == "" || appKey == "" {
		return B2Bucket{}, fmt.Errorf("%s and %s must be set to publish", EnvKeyID, EnvAppKey)
	}
	client, err := b2.NewClient(ctx, keyID, appKey)
	if err != nil {
		return B2Bucket{}, fmt.Errorf("create b2 client: %w", err)
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return B2Bucket{}, fmt.Errorf("open bucket %s: %w", bucketName, err)
	}
	return B2Bucket{bucket: bucket}, nil
}

// OpenB2FromEnv is OpenB2 with the credentials read from the environment.
func OpenB2FromEnv(ctx context.Context, config Config) (B2Bucket, error) {
	return OpenB2(ctx, os.Getenv(EnvKeyID), os.Getenv(EnvAppKey), config.Bucket)
}

func (b B2Bucket) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	w := b.bucket.Object(name).NewWriter(ctx)
	_, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", name, err)
	}
	err = w.Close()
	if err != nil {
		return "", fmt.Errorf("close object %s: %w", name, err)
	}
	return fmt.Sprintf("%s/file/%s/%s", b.bucket.BaseURL(), b.bucket.Name(), name), nil
}

// ObjectName is the name a file is published under.
func ObjectName(prefix, file string) string {
	return path.Join(prefix, filepath.Base(file))
}

// Files uploads every file and returns their urls in the same order. It stops at the
// first file that fails.
func Files(ctx context.Context, up Uploader, prefix string, files []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Files")
	defer span.End()
	span.SetAttributes(attribute.Int("files", len(files)))

	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := uploadFile(ctx, up, ObjectName(prefix, file), file)
		if err != nil {
			span.RecordError(err)
			return urls, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func uploadFile(ctx context.Context, up Uploader, name, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return up.Upload(ctx, name, f)
}
