package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	syncer "jeevan/internal/sync"
	"jeevan/pkg/platform/sentinel"
)

// HTTP posts the whole batch as one JSON document. The endpoint must be
// idempotent by reference id; the orchestrator may re-send a batch after a
// crash.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP builds an uploader for the given batch endpoint.
func NewHTTP(url string) *HTTP {
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTP) UploadBatch(ctx context.Context, batch syncer.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload batch: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload batch: status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return nil
}
