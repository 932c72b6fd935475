package gcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/Lllllllleong/geminiscribe/internal/models"
)

func TestParseGSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{name: "simple", uri: "gs://my-bucket/file.pdf", wantBucket: "my-bucket", wantObject: "file.pdf"},
		{name: "nested object", uri: "gs://my-bucket/docs/2024/report.pdf", wantBucket: "my-bucket", wantObject: "docs/2024/report.pdf"},
		{name: "missing scheme", uri: "my-bucket/file.pdf", wantErr: true},
		{name: "http scheme", uri: "https://example.com/file.pdf", wantErr: true},
		{name: "bucket only", uri: "gs://my-bucket", wantErr: true},
		{name: "empty object", uri: "gs://my-bucket/", wantErr: true},
		{name: "empty bucket", uri: "gs:///file.pdf", wantErr: true},
		{name: "empty", uri: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseGSURI(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				require.Equal(t, models.ErrInvalidInput, models.CodeOf(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantBucket, bucket)
			require.Equal(t, tt.wantObject, object)
		})
	}
}

func TestClassifyStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorCode
	}{
		{name: "object not exist", err: storage.ErrObjectNotExist, want: models.ErrNotFound},
		{name: "bucket not exist", err: storage.ErrBucketNotExist, want: models.ErrNotFound},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: models.ErrTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("reading object: %w", context.DeadlineExceeded), want: models.ErrTimeout},
		{name: "api 404", err: &googleapi.Error{Code: http.StatusNotFound}, want: models.ErrNotFound},
		{name: "api 403", err: &googleapi.Error{Code: http.StatusForbidden}, want: models.ErrAccessDenied},
		{name: "api 401", err: &googleapi.Error{Code: http.StatusUnauthorized}, want: models.ErrAccessDenied},
		{name: "api 500", err: &googleapi.Error{Code: http.StatusInternalServerError}, want: models.ErrInternal},
		{name: "plain error", err: errors.New("connection reset"), want: models.ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyStorageError(tt.err, "bucket", "object")
			require.Equal(t, tt.want, models.CodeOf(got))
			require.ErrorIs(t, got, tt.err)
		})
	}
}

func TestIsPreconditionFailed(t *testing.T) {
	require.True(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusPreconditionFailed}))
	require.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusConflict}))
	require.False(t, isPreconditionFailed(errors.New("other")))
}
