package googlebooks

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Search queries the volumes API and maps the response to the typed result
// shape. An empty slice means "no matches"; ErrUnavailable wraps any
// transport or server failure.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")

	searchURL := c.baseURL + "/volumes?" + params.Encode()

	c.logger.Debug("searching Google Books",
		"query", query,
		"limit", limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var volumes volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumes); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("Google Books search results",
		"query", query,
		"count", len(volumes.Items),
	)

	results := make([]SearchResult, 0, len(volumes.Items))
	for i := range volumes.Items {
		item := &volumes.Items[i]
		if item.VolumeInfo.Title == "" {
			continue
		}

		r := SearchResult{
			CatalogID:     item.ID,
			Title:         item.VolumeInfo.Title,
			PublishedYear: parseYear(item.VolumeInfo.PublishedDate),
			PageCount:     item.VolumeInfo.PageCount,
		}
		if len(item.VolumeInfo.Authors) > 0 {
			r.Author = strings.Join(item.VolumeInfo.Authors, ", ")
		}
		for _, ident := range item.VolumeInfo.IndustryIdentifiers {
			if ident.Type == "ISBN_13" {
				r.ISBN13 = ident.Identifier
				break
			}
		}

		results = append(results, r)
	}

	return results, nil
}

// parseYear extracts the year from a published date, which the API returns
// as "1965", "1965-08", or "1965-08-01".
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
