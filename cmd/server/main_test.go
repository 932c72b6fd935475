package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/geminiscribe/internal/api"
	"github.com/Lllllllleong/geminiscribe/internal/config"
	"github.com/Lllllllleong/geminiscribe/internal/models"
)

type stubPipeline struct{}

func (stubPipeline) ExtractText(ctx context.Context, req *models.ExtractRequest) (*models.ExtractResult, error) {
	return &models.ExtractResult{}, nil
}

func preflight(t *testing.T, r http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/extract_text", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterAllowsCrossOriginInDevelopment(t *testing.T) {
	r := newRouter(&config.Config{Development: true}, api.New(stubPipeline{}))

	rec := preflight(t, r)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterSendsNoCORSHeadersInProduction(t *testing.T) {
	r := newRouter(&config.Config{Development: false}, api.New(stubPipeline{}))

	rec := preflight(t, r)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
