// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package pplsearch implements a tier-3 source over a commercial
// people-search aggregator. The aggregator bills per lookup, so every
// search passes through a rolling quota before it touches the network.
package pplsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources"
)

// SourceName is the stable identifier for this source.
const SourceName = "people_search"

const (
	defaultTimeout = 10 * time.Second
	defaultLimit   = 100
	defaultWindow  = time.Hour
)

// Source queries a people-search aggregator over HTTP.
type Source struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *sources.RollingLimiter
	logger  *slog.Logger
}

var _ sources.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets a custom HTTP client.
// Default is a client with a 10 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
	}
}

// WithQuota replaces the default quota of 100 lookups per hour.
// A non-positive limit disables quota tracking.
func WithQuota(limit int, window time.Duration) Option {
	return func(s *Source) {
		s.limiter = sources.NewRollingLimiter(limit, window)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// New creates a people-search source against the given API base URL.
func New(baseURL, apiKey string, opts ...Option) *Source {
	s := &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: sources.NewRollingLimiter(defaultLimit, defaultWindow),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the stable source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Tier returns the latency tier.
func (s *Source) Tier() int {
	return sources.TierModerate
}

// Available reports whether the source is configured and has quota left.
func (s *Source) Available() bool {
	return s.baseURL != "" && s.limiter.Remaining() > 0
}

// personRecord mirrors one person row in the aggregator response.
type personRecord struct {
	PersonID   string   `json:"person_id"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	LastName   string   `json:"last_name"`
	Age        int      `json:"age"`
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Zip        string   `json:"zip"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Occupation string   `json:"occupation"`
	Employer   string   `json:"employer"`
	Aliases    []string `json:"aliases"`
	Relatives  []string `json:"relatives"`
}

type searchResponse struct {
	People []personRecord `json:"people"`
}

// Search performs one billed aggregator lookup. When the rolling quota is
// exhausted the call fails with ErrRateLimited without touching the network.
func (s *Source) Search(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
	if s.baseURL == "" {
		return nil, sources.ErrUnavailable
	}
	if !query.HasName() {
		return nil, nil
	}

	endpoint, err := s.searchURL(query)
	if err != nil {
		return nil, fmt.Errorf("build people search url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("people search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	// A quota slot is spent only once the request is ready to go out; a
	// lookup that fails to build must not burn billed quota.
	if !s.limiter.Allow() {
		s.logger.Warn("people search quota exhausted, skipping lookup")
		return nil, sources.ErrRateLimited
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("people search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, sources.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", sources.ErrBadStatus, resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode people search response: %w", err)
	}

	matches := make([]core.RawMatch, 0, len(body.People))
	for _, rec := range body.People {
		matches = append(matches, recordToMatch(rec))
	}
	return matches, nil
}

func (s *Source) searchURL(query *core.SearchQuery) (string, error) {
	u, err := url.Parse(s.baseURL + "/v1/people")
	if err != nil {
		return "", err
	}

	params := u.Query()
	if query.LastName != "" {
		params.Set("last_name", query.LastName)
		if query.FirstName != "" {
			params.Set("first_name", query.FirstName)
		}
	} else {
		params.Set("name", query.FullName)
	}
	if query.Age > 0 {
		params.Set("age", fmt.Sprintf("%d", query.Age))
	}
	if query.City != "" {
		params.Set("city", query.City)
	}
	if query.State != "" {
		params.Set("state", query.State)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func recordToMatch(rec personRecord) core.RawMatch {
	return core.RawMatch{
		SourceType: SourceName,
		SourceKey:  rec.PersonID,
		FirstName:  rec.FirstName,
		MiddleName: rec.MiddleName,
		LastName:   rec.LastName,
		Age:        rec.Age,
		Street:     rec.Street,
		City:       rec.City,
		State:      rec.State,
		ZipCode:    rec.Zip,
		Email:      rec.Email,
		Phone:      rec.Phone,
		Occupation: rec.Occupation,
		Employer:   rec.Employer,
		RawData: map[string]any{
			"personId":  rec.PersonID,
			"aliases":   rec.Aliases,
			"relatives": rec.Relatives,
		},
	}
}
