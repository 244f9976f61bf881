package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventboard/internal/domain"
)

// timeLayout is the wire format the stats service uses for timestamps.
const timeLayout = "2006-01-02 15:04:05"

type httpClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient returns a StatsClient that calls the hit statistics service
// at baseURL. A nil client falls back to http.DefaultClient.
func NewHTTPClient(client *http.Client, baseURL string) domain.StatsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpClient{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

type endpointHit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

func (c *httpClient) Hit(ctx context.Context, app, uri, ip string) error {
	body, err := json.Marshal(endpointHit{
		App:       app,
		URI:       uri,
		IP:        ip,
		Timestamp: time.Now().Format(timeLayout),
	})
	if err != nil {
		return fmt.Errorf("marshal hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create hit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send hit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}
	return nil
}

func (c *httpClient) GetStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(timeLayout))
	params.Set("end", end.Format(timeLayout))
	for _, u := range uris {
		params.Add("uris", u)
	}
	if unique {
		params.Set("unique", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create stats request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status: %d", resp.StatusCode)
	}

	var stats []domain.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats response: %w", err)
	}
	return stats, nil
}
