package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Lllllllleong/geminiscribe/internal/config"
	"github.com/Lllllllleong/geminiscribe/internal/gcp"
	"github.com/Lllllllleong/geminiscribe/internal/models"
	"github.com/Lllllllleong/geminiscribe/internal/prompt"
)

// contentGenerator is the slice of the genai client the extractor needs.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor sends one page image plus the fixed instruction to Gemini
// and returns the extracted Markdown. Transient failures are retried with
// exponential backoff; permanent ones propagate immediately.
type GeminiExtractor struct {
	generator   contentGenerator
	model       string
	instruction string
	genConfig   *genai.GenerateContentConfig
	maxRetries  int
	callTimeout time.Duration
}

func NewGeminiExtractor(client *genai.Client, cfg *config.Config) *GeminiExtractor {
	return &GeminiExtractor{
		generator:   client.Models,
		model:       cfg.Model,
		instruction: prompt.Build(nil),
		genConfig:   gcp.GenerationConfig(),
		maxRetries:  cfg.MaxRetries,
		callTimeout: cfg.CallTimeout,
	}
}

// ExtractPage converts one page image to Markdown text.
func (e *GeminiExtractor) ExtractPage(ctx context.Context, page models.PageImage) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(e.instruction),
		{InlineData: &genai.Blob{MIMEType: page.MIMEType, Data: page.Data}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	backoff := 1 * time.Second
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		text, err := e.generate(ctx, contents, page.Index)
		if err == nil {
			return text, nil
		}
		if !isTransient(err) {
			return "", asExtractionError(page.Index, err)
		}

		lastErr = err
		slog.Warn(
			"Page extraction failed, will retry.",
			"pageIndex", page.Index,
			"attempt", attempt,
			"maxRetries", e.maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", models.NewError(models.ErrExtractionFailed,
		fmt.Sprintf("page %d extraction failed after %d attempts", page.Index, e.maxRetries), lastErr)
}

func (e *GeminiExtractor) generate(ctx context.Context, contents []*genai.Content, pageIndex int) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	resp, err := e.generator.GenerateContent(callCtx, e.model, contents, e.genConfig)
	if err != nil {
		return "", err
	}

	markdown := extractMarkdown(collectText(resp))
	if phrase := detectRefusal(markdown); phrase != "" {
		return "", models.Errorf(models.ErrExtractionFailed,
			"model refused to transcribe page %d (%q)", pageIndex, phrase)
	}
	if markdown == "" {
		slog.Warn("No markdown content extracted from response. Treating as empty page.", "pageIndex", pageIndex)
	}
	return markdown, nil
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

var fencedBlockRE = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

// extractMarkdown shapes the raw model output. The prompt asks for a single
// fenced code block; when the model complies, the block contents are the
// result. Responses without fences are taken as-is, minus stray fence
// markers at the edges.
func extractMarkdown(raw string) string {
	matches := fencedBlockRE.FindAllStringSubmatch(raw, -1)
	if len(matches) > 0 {
		blocks := make([]string, 0, len(matches))
		for _, m := range matches {
			blocks = append(blocks, strings.TrimSpace(m[1]))
		}
		return strings.Join(blocks, "\n\n")
	}

	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// detectRefusal returns the matched refusal phrase, or "" if the content
// looks like a genuine transcription. If the model refuses, we must fail
// the page rather than embed the refusal into the document.
func detectRefusal(markdown string) string {
	lower := strings.ToLower(markdown)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

// isTransient reports whether the inference call failed in a way that a
// retry can fix: per-call timeouts, rate limiting, or server-side errors.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}

func asExtractionError(pageIndex int, err error) error {
	var ce *models.Error
	if errors.As(err, &ce) {
		return err
	}
	return models.NewError(models.ErrExtractionFailed,
		fmt.Sprintf("page %d extraction failed", pageIndex), err)
}
