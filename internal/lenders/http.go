package lenders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/metrics"
)

// HTTPDirectory reads lenders from an external directory service.
type HTTPDirectory struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPDirectory(baseURL, token string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type listResponse struct {
	Data []matching.Lender `json:"data"`
}

func (d *HTTPDirectory) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("lender directory %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

func (d *HTTPDirectory) ListLenders(ctx context.Context) ([]matching.Lender, error) {
	data, err := d.doReq(ctx, http.MethodGet, "/api/v1/lenders")
	if err != nil {
		metrics.DirectoryRequests.WithLabelValues("http", "error").Inc()
		return nil, err
	}
	var resp listResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		metrics.DirectoryRequests.WithLabelValues("http", "error").Inc()
		return nil, fmt.Errorf("decode lenders: %w", err)
	}
	metrics.DirectoryRequests.WithLabelValues("http", "ok").Inc()
	if resp.Data == nil {
		return []matching.Lender{}, nil
	}
	return resp.Data, nil
}
