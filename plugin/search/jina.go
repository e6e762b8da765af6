// Package search proxies web search queries through the Jina search
// API, rotating across a pool of API keys.
package search

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://api.jina.ai/search"

// retries is the number of extra attempts after a failed fetch. Each
// attempt picks a fresh key from the pool.
const retries = 2

// Searcher fans search queries out to the Jina API.
type Searcher struct {
	baseURL    string
	apiKeys    []string
	httpClient *http.Client
}

// NewSearcher creates a searcher over the given key pool.
func NewSearcher(apiKeys []string) (*Searcher, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("at least one search API key is required")
	}
	return &Searcher{
		baseURL: defaultBaseURL,
		apiKeys: apiKeys,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Search runs one query and returns the page contents of its results.
// Failed fetches are retried with a different key; when every attempt
// fails the query resolves to an empty result set, not an error.
func (s *Searcher) Search(ctx context.Context, query string) []string {
	for attempt := 0; attempt <= retries; attempt++ {
		contents, err := s.fetch(ctx, query)
		if err == nil {
			return contents
		}
		slog.Warn("search: fetch failed", "query", query, "attempt", attempt, "error", err)
	}
	return []string{}
}

// SearchAll runs all queries in parallel, preserving order: result i
// belongs to queries[i].
func (s *Searcher) SearchAll(ctx context.Context, queries []string) [][]string {
	results := make([][]string, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		i, query := i, query
		g.Go(func() error {
			results[i] = s.Search(ctx, query)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Searcher) fetch(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKeys[rand.Intn(len(s.apiKeys))])

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	result := struct {
		Data []struct {
			Content string `json:"content"`
		} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	contents := make([]string, 0, len(result.Data))
	for _, r := range result.Data {
		contents = append(contents, r.Content)
	}
	return contents, nil
}
