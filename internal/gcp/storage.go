package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/Lllllllleong/geminiscribe/internal/models"
)

// ParseGSURI splits a gs://bucket/object URI into its bucket and object
// parts. Anything that is not a well-formed gs:// URI is an invalid_input.
func ParseGSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", models.Errorf(models.ErrInvalidInput, "URI %q must start with gs://", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", models.Errorf(models.ErrInvalidInput, "URI %q must name a bucket and an object", uri)
	}
	return bucket, object, nil
}

// StorageClient wraps the GCS SDK client with download/upload helpers that
// classify failures into the service's error codes.
type StorageClient struct {
	client *storage.Client
}

func NewStorageClient(ctx context.Context) (*StorageClient, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &StorageClient{client: client}, nil
}

func (s *StorageClient) Close() error {
	return s.client.Close()
}

// Download streams a GCS object to destPath. The object is written to a
// side file first and renamed into place, so a failed download never leaves
// a partial artifact at destPath.
func (s *StorageClient) Download(ctx context.Context, bucket, object, destPath string) error {
	gcsReader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return classifyStorageError(err, bucket, object)
	}
	defer gcsReader.Close()

	partPath := destPath + ".part"
	localFile, err := os.Create(partPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file at %s: %w", partPath, err)
	}

	if _, err := io.Copy(localFile, gcsReader); err != nil {
		_ = localFile.Close()
		_ = os.Remove(partPath)
		return fmt.Errorf("failed to copy gs://%s/%s to local file: %w", bucket, object, err)
	}
	if err := localFile.Close(); err != nil {
		_ = os.Remove(partPath)
		return fmt.Errorf("failed to flush local file %s: %w", partPath, err)
	}
	if err := os.Rename(partPath, destPath); err != nil {
		_ = os.Remove(partPath)
		return fmt.Errorf("failed to finalize download to %s: %w", destPath, err)
	}
	return nil
}

// Upload writes content to a GCS object only if it doesn't already exist.
// An object that is already present is not a failure in an idempotent
// workflow.
func (s *StorageClient) Upload(ctx context.Context, bucket, object, content string) error {
	writer := s.client.Bucket(bucket).Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		if isPreconditionFailed(err) {
			slog.Info("Skipping upload, object already exists.", "gcsBucket", bucket, "gcsObject", object)
			return nil
		}
		return classifyStorageError(err, bucket, object)
	}
	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Skipping upload, object already exists.", "gcsBucket", bucket, "gcsObject", object)
			return nil
		}
		return classifyStorageError(err, bucket, object)
	}
	return nil
}

// Accessible probes the bucket by listing a single object. Used once at
// startup to surface misconfiguration early.
func (s *StorageClient) Accessible(ctx context.Context, bucket string) error {
	it := s.client.Bucket(bucket).Objects(ctx, nil)
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return classifyStorageError(err, bucket, "")
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func classifyStorageError(err error, bucket, object string) error {
	location := fmt.Sprintf("gs://%s/%s", bucket, object)

	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return models.NewError(models.ErrNotFound, fmt.Sprintf("object %s not found", location), err)
	case errors.Is(err, storage.ErrBucketNotExist):
		return models.NewError(models.ErrNotFound, fmt.Sprintf("bucket %q not found", bucket), err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewError(models.ErrTimeout, fmt.Sprintf("storage operation on %s timed out", location), err)
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return models.NewError(models.ErrNotFound, fmt.Sprintf("object %s not found", location), err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return models.NewError(models.ErrAccessDenied, fmt.Sprintf("access to %s denied", location), err)
		}
	}
	return models.NewError(models.ErrInternal, fmt.Sprintf("storage operation on %s failed", location), err)
}
