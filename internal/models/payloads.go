package models

// These structs define the JSON payloads for the HTTP surface of the
// extraction service.

// ExtractRequest is the body of POST /extract_text.
type ExtractRequest struct {
	// URI is the gs:// location of the source PDF.
	URI string `json:"uri"`
	// DestinationURI optionally names where the assembled Markdown should be
	// uploaded. Either a full gs:// URI or a bare object name, which is
	// resolved against the configured bucket.
	DestinationURI string `json:"destination_uri,omitempty"`
}

// ExtractResult is the successful response of POST /extract_text.
type ExtractResult struct {
	Markdown              string  `json:"markdown"`
	PagesProcessed        int     `json:"pages_processed"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	DestinationURI        string  `json:"destination_uri,omitempty"`
}

// PageImage is one rasterized PDF page. Pages are produced in index order
// and live only for the duration of the request that created them.
type PageImage struct {
	Index    int
	Data     []byte
	MIMEType string
}

// ExtractedPage pairs a page index with the Markdown the model returned for
// that page's image.
type ExtractedPage struct {
	Index    int
	Markdown string
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
