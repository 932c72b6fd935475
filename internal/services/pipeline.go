package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/geminiscribe/internal/config"
	"github.com/Lllllllleong/geminiscribe/internal/gcp"
	"github.com/Lllllllleong/geminiscribe/internal/models"
)

// ObjectStore is the storage capability the pipeline consumes.
type ObjectStore interface {
	Download(ctx context.Context, bucket, object, destPath string) error
	Upload(ctx context.Context, bucket, object, content string) error
}

// Rasterizer converts a PDF on disk into ordered page images.
type Rasterizer interface {
	Render(ctx context.Context, pdfPath string) ([]models.PageImage, error)
}

// PageExtractor converts one page image into Markdown text.
type PageExtractor interface {
	ExtractPage(ctx context.Context, page models.PageImage) (string, error)
}

// pageSeparator joins per-page Markdown in the assembled document.
const pageSeparator = "\n\n"

// Pipeline wires storage, rasterization and extraction into the end-to-end
// flow for one request. It holds no per-request state; a single Pipeline
// serves concurrent requests.
type Pipeline struct {
	store     ObjectStore
	raster    Rasterizer
	extractor PageExtractor

	defaultBucket  string
	concurrency    int
	callTimeout    time.Duration
	requestTimeout time.Duration
}

func NewPipeline(store ObjectStore, raster Rasterizer, extractor PageExtractor, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:          store,
		raster:         raster,
		extractor:      extractor,
		defaultBucket:  cfg.Bucket,
		concurrency:    cfg.PageConcurrency,
		callTimeout:    cfg.CallTimeout,
		requestTimeout: cfg.RequestTimeout,
	}
}

// ExtractText runs the full pipeline: download, rasterize, per-page
// extraction, ordered assembly, optional destination upload. Temporary
// resources are released on every exit path, including cancellation. If any
// single page fails after its retry budget, the whole request fails.
func (p *Pipeline) ExtractText(ctx context.Context, req *models.ExtractRequest) (*models.ExtractResult, error) {
	start := time.Now()

	sourceBucket, sourceObject, err := gcp.ParseGSURI(req.URI)
	if err != nil {
		return nil, err
	}
	destBucket, destObject, err := p.resolveDestination(req.DestinationURI)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	defer cancel()

	logCtx := slog.With("gcsBucket", sourceBucket, "gcsObject", sourceObject)
	logCtx.Info("Processing extraction request.")

	tempDir, err := os.MkdirTemp("", "geminiscribe-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourcePdfPath := filepath.Join(tempDir, "source.pdf")
	if err := p.download(ctx, sourceBucket, sourceObject, sourcePdfPath); err != nil {
		logCtx.Error("Failed to download source PDF", "error", err)
		return nil, p.classify(ctx, err)
	}

	pages, err := p.raster.Render(ctx, sourcePdfPath)
	if err != nil {
		logCtx.Error("Failed to rasterize PDF", "error", err)
		return nil, p.classify(ctx, err)
	}
	logCtx.Info("Rasterized PDF.", "pageCount", len(pages))

	extracted, err := p.extractPages(ctx, pages)
	if err != nil {
		logCtx.Error("Page extraction failed", "error", err)
		return nil, p.classify(ctx, err)
	}

	parts := make([]string, len(extracted))
	for i, page := range extracted {
		parts[i] = page.Markdown
	}
	markdown := strings.Join(parts, pageSeparator)

	result := &models.ExtractResult{
		Markdown:       markdown,
		PagesProcessed: len(pages),
	}

	if destObject != "" {
		if err := p.upload(ctx, destBucket, destObject, markdown); err != nil {
			logCtx.Error("Failed to upload assembled markdown", "error", err, "destBucket", destBucket, "destObject", destObject)
			return nil, p.classify(ctx, err)
		}
		result.DestinationURI = fmt.Sprintf("gs://%s/%s", destBucket, destObject)
		logCtx.Info("Uploaded assembled markdown.", "destinationUri", result.DestinationURI)
	}

	result.ProcessingTimeSeconds = time.Since(start).Seconds()
	logCtx.Info("Extraction complete.", "pagesProcessed", len(pages), "elapsed", time.Since(start).String())
	return result, nil
}

func (p *Pipeline) download(ctx context.Context, bucket, object, destPath string) error {
	dlCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.store.Download(dlCtx, bucket, object, destPath)
}

func (p *Pipeline) upload(ctx context.Context, bucket, object, content string) error {
	upCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.store.Upload(upCtx, bucket, object, content)
}

// extractPages fans out per-page extraction up to the configured limit.
// Results land in a pre-sized slice indexed by page number, so the output
// order matches page order regardless of completion order.
func (p *Pipeline) extractPages(ctx context.Context, pages []models.PageImage) ([]models.ExtractedPage, error) {
	extracted := make([]models.ExtractedPage, len(pages))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.concurrency)

	for _, page := range pages {
		eg.Go(func() error {
			if page.Index < 0 || page.Index >= len(extracted) {
				return models.Errorf(models.ErrInternal, "rasterizer produced out-of-range page index %d", page.Index)
			}
			text, err := p.extractor.ExtractPage(gctx, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page.Index, err)
			}
			extracted[page.Index] = models.ExtractedPage{Index: page.Index, Markdown: text}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return extracted, nil
}

// resolveDestination turns the optional destination field into a concrete
// bucket and object. A bare object name goes to the configured bucket.
func (p *Pipeline) resolveDestination(dest string) (bucket, object string, err error) {
	if dest == "" {
		return "", "", nil
	}
	if strings.HasPrefix(dest, "gs://") {
		return gcp.ParseGSURI(dest)
	}
	return p.defaultBucket, dest, nil
}

// classify upgrades errors caused by the whole-request deadline to the
// timeout code. Other errors keep whatever classification they carry.
func (p *Pipeline) classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewError(models.ErrTimeout, "request deadline exceeded", err)
	}
	return err
}
