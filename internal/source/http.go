package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ukydev/pantry-finder/internal/models"
)

// DefaultURL is the published pantry feed.
const DefaultURL = "https://raw.githubusercontent.com/end-hunger-durham/data-importer/master/pantries.json"

// maxBodyBytes bounds the feed payload read into memory.
const maxBodyBytes = 8 << 20

// HTTPSource fetches the pantry feed with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTP source with its own client timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes the feed.
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.Pantry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, TransportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, TransportError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, TransportError(fmt.Errorf("read body: %w", err))
	}
	return Decode(body)
}
