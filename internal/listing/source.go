package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobwatch/internal/model"
)

// Ensure HTTPSource implements model.ListingSource.
var _ model.ListingSource = (*HTTPSource)(nil)

// rawListing is a single record in the listings endpoint response.
type rawListing struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	Link       string `json:"link"`
	PostedDate string `json:"postedDate"`
}

// listingsResponse is the top-level listings endpoint response.
type listingsResponse struct {
	Listings []rawListing `json:"listings"`
}

// HTTPSource fetches listings from the internal listings endpoint.
type HTTPSource struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPSource creates a source for the given endpoint. token is sent as a
// bearer token when non-empty.
func NewHTTPSource(url, token string, client *http.Client, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		url:    url,
		token:  token,
		client: client,
		logger: logger,
	}
}

// FetchListings performs one GET against the endpoint and normalizes the
// response. Listings with an unparseable posting date keep a zero PostedAt,
// which never counts as new.
func (s *HTTPSource) FetchListings(ctx context.Context) ([]model.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listings: %w", &model.HTTPError{StatusCode: resp.StatusCode})
	}

	var body listingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("fetch listings: decode: %w", err)
	}

	listings := make([]model.Listing, 0, len(body.Listings))
	for _, rl := range body.Listings {
		l := model.Listing{
			Title:    cleanText(rl.Title),
			Company:  cleanText(rl.Company),
			Location: cleanText(rl.Location),
			Link:     strings.TrimSpace(rl.Link),
		}
		if t, ok := parsePostedDate(rl.PostedDate); ok {
			l.PostedAt = t
		} else {
			s.logger.Debug("listing has no usable posting date", "title", rl.Title, "posted_date", rl.PostedDate)
		}
		listings = append(listings, l)
	}

	s.logger.Debug("fetched listings", "count", len(listings))
	return listings, nil
}

var postedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePostedDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range postedDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
