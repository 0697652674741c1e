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


// Package fec implements a tier-2 source over the federal campaign
// contribution records API. Donor rows carry occupation and employer,
// which feed the occupation scoring factor.
package fec

import (
	"context"
	"encoding/json"
	"errors"
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
const SourceName = "fec_donors"

const (
	defaultTimeout = 5 * time.Second
	maxAttempts    = 3
	retryBaseDelay = 200 * time.Millisecond
	maxResults     = 50
)

// Source queries federal campaign contribution records over HTTP.
type Source struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

var _ sources.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient sets a custom HTTP client.
// Default is a client with a 5 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		if client != nil {
			s.client = client
		}
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

// New creates a donor records source against the given API base URL.
func New(baseURL, apiKey string, opts ...Option) *Source {
	s := &Source{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultTimeout},
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
	return sources.TierFast
}

// Available reports whether the source is configured with an endpoint.
func (s *Source) Available() bool {
	return s.baseURL != ""
}

// contributorRecord mirrors one donor row in the API response.
type contributorRecord struct {
	ContributorID string         `json:"contributor_id"`
	FirstName     string         `json:"first_name"`
	MiddleName    string         `json:"middle_name"`
	LastName      string         `json:"last_name"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	Zip           string         `json:"zip"`
	Employer      string         `json:"employer"`
	Occupation    string         `json:"occupation"`
	Contributions []contribution `json:"contributions"`
}

type contribution struct {
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Committee string  `json:"committee"`
}

type searchResponse struct {
	Results []contributorRecord `json:"results"`
}

// Search queries donor records by name. Transient failures (network errors
// and 5xx responses) are retried with backoff; client errors fail fast.
func (s *Source) Search(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
	if !s.Available() {
		return nil, sources.ErrUnavailable
	}
	if !query.HasName() {
		return nil, nil
	}

	endpoint, err := s.searchURL(query)
	if err != nil {
		return nil, fmt.Errorf("build donor search url: %w", err)
	}

	var resp searchResponse
	var permanent error
	err = sources.RetryWithBackoff(ctx, func() error {
		ferr := s.fetch(ctx, endpoint, &resp)
		var se *statusError
		if errors.As(ferr, &se) && !se.retryable() {
			// Client errors will not heal on retry.
			permanent = ferr
			return nil
		}
		return ferr
	}, maxAttempts, retryBaseDelay)
	if err == nil {
		err = permanent
	}
	if err != nil {
		return nil, fmt.Errorf("donor record search: %w", err)
	}

	matches := make([]core.RawMatch, 0, len(resp.Results))
	for _, rec := range resp.Results {
		matches = append(matches, recordToMatch(rec))
	}
	return matches, nil
}

func (s *Source) searchURL(query *core.SearchQuery) (string, error) {
	u, err := url.Parse(s.baseURL + "/contributors/search")
	if err != nil {
		return "", err
	}

	params := u.Query()
	params.Set("per_page", fmt.Sprintf("%d", maxResults))
	if s.apiKey != "" {
		params.Set("api_key", s.apiKey)
	}
	if query.LastName != "" {
		params.Set("last_name", query.LastName)
		if query.FirstName != "" {
			params.Set("first_name", query.FirstName)
		}
	} else {
		params.Set("name", query.FullName)
	}
	if query.State != "" {
		params.Set("state", query.State)
	}
	if query.ZipCode != "" {
		params.Set("zip", query.ZipCode)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// statusError carries the HTTP status of a failed request so Search can
// tell transient server failures apart from request errors.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d", sources.ErrBadStatus, e.code)
}

func (e *statusError) Unwrap() error {
	return sources.ErrBadStatus
}

func (e *statusError) retryable() bool {
	return e.code >= 500
}

func (s *Source) fetch(ctx context.Context, endpoint string, out *searchResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode < 500 {
			s.logger.Warn("donor record api rejected request", "status", resp.StatusCode)
		}
		return &statusError{code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode donor response: %w", err)
	}
	return nil
}

func recordToMatch(rec contributorRecord) core.RawMatch {
	donations := make([]map[string]any, 0, len(rec.Contributions))
	var total float64
	for _, c := range rec.Contributions {
		total += c.Amount
		donations = append(donations, map[string]any{
			"amount":    c.Amount,
			"date":      c.Date,
			"committee": c.Committee,
		})
	}

	return core.RawMatch{
		SourceType: SourceName,
		SourceKey:  rec.ContributorID,
		FirstName:  rec.FirstName,
		MiddleName: rec.MiddleName,
		LastName:   rec.LastName,
		City:       rec.City,
		State:      rec.State,
		ZipCode:    rec.Zip,
		Occupation: rec.Occupation,
		Employer:   rec.Employer,
		RawData: map[string]any{
			"contributorId": rec.ContributorID,
			"donations":     donations,
			"totalDonated":  total,
		},
	}
}
