package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/geminiscribe/internal/models"
)

// PDFRasterizer converts a PDF file on disk into an ordered sequence of PNG
// page images. The file is validated and optimized with pdfcpu first, so
// structurally broken documents fail before any rendering work happens.
type PDFRasterizer struct {
	maxPages int
	dpi      float64
}

func NewPDFRasterizer(maxPages int, dpi float64) *PDFRasterizer {
	return &PDFRasterizer{maxPages: maxPages, dpi: dpi}
}

// Render returns one PageImage per page, indexed 0..n-1 in page order.
func (r *PDFRasterizer) Render(ctx context.Context, pdfPath string) ([]models.PageImage, error) {
	optimizedPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + "_optimized.pdf"
	if err := optimizePDF(pdfPath, optimizedPath); err != nil {
		return nil, models.NewError(models.ErrUnsupportedDocument, "file is not a valid PDF", err)
	}

	pageCount, err := api.PageCountFile(optimizedPath)
	if err != nil {
		return nil, models.NewError(models.ErrUnsupportedDocument, "failed to read PDF page count", err)
	}
	if pageCount == 0 {
		return nil, models.Errorf(models.ErrUnsupportedDocument, "PDF has no pages")
	}
	if pageCount > r.maxPages {
		return nil, models.Errorf(models.ErrUnsupportedDocument, "PDF has %d pages, limit is %d", pageCount, r.maxPages)
	}

	doc, err := fitz.New(optimizedPath)
	if err != nil {
		return nil, models.NewError(models.ErrUnsupportedDocument, "failed to open PDF for rendering", err)
	}
	defer doc.Close()

	pages := make([]models.PageImage, 0, pageCount)
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		data, err := doc.ImagePNG(pageNum, r.dpi)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNum, err)
		}
		pages = append(pages, models.PageImage{
			Index:    pageNum,
			Data:     data,
			MIMEType: "image/png",
		})
	}
	return pages, nil
}

func optimizePDF(inPath, outPath string) error {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.OptimizeFile(inPath, outPath, cfg)
}
