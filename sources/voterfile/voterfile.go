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


// Package voterfile implements a tier-1 source over a local voter
// registration extract stored in SQLite.
package voterfile

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources"
)

// SourceName is the stable identifier for this source.
const SourceName = "voter_file"

const queryTimeout = 100 * time.Millisecond

// Source searches a local voter registration extract. Lookups are indexed
// by last name; first name, city and state narrow the scan when present.
type Source struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ sources.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

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

// New opens the voter file database at dbPath.
func New(dbPath string, opts ...Option) (*Source, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open voter file: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open voter file: %w", err)
	}

	s := &Source{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Source) Close() error {
	return s.db.Close()
}

// Name returns the stable source identifier.
func (s *Source) Name() string {
	return SourceName
}

// Tier returns the latency tier.
func (s *Source) Tier() int {
	return sources.TierLocal
}

// Available reports whether the database answers a ping.
func (s *Source) Available() bool {
	return s.db.Ping() == nil
}

// Search looks up voters by last name, narrowing by first name prefix,
// city and state when the query provides them.
func (s *Source) Search(ctx context.Context, query *core.SearchQuery) ([]core.RawMatch, error) {
	last, first := queryNameParts(query)
	if last == "" {
		// A last name is the minimum for an indexed lookup; anything less
		// would scan the whole extract.
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := `SELECT voter_id, first_name, middle_name, last_name, birth_year,
	             street, city, state, zip, phone
	      FROM voters WHERE last_name_norm = ?`
	args := []any{last}

	if first != "" {
		q += ` AND (first_name_norm = ? OR first_name_norm LIKE ?)`
		args = append(args, first, first[:1]+"%")
	}
	if city := norm(query.City); city != "" {
		q += ` AND city_norm = ?`
		args = append(args, city)
	}
	if state := norm(query.State); state != "" {
		q += ` AND state_norm = ?`
		args = append(args, state)
	}
	q += ` LIMIT 50`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		if ctx.Err() != nil {
			// Local store exceeded its budget; degrade to no matches.
			s.logger.Warn("voter file query timed out", "err", ctx.Err())
			return nil, nil
		}
		return nil, fmt.Errorf("voter file query: %w", err)
	}
	defer rows.Close()

	var matches []core.RawMatch
	for rows.Next() {
		var (
			voterID                  string
			firstName, middle, lastN string
			birthYear                sql.NullInt64
			street, city, state, zip sql.NullString
			phone                    sql.NullString
		)
		if err := rows.Scan(&voterID, &firstName, &middle, &lastN, &birthYear,
			&street, &city, &state, &zip, &phone); err != nil {
			return nil, fmt.Errorf("voter file scan: %w", err)
		}

		matches = append(matches, core.RawMatch{
			SourceType: SourceName,
			SourceKey:  voterID,
			FirstName:  firstName,
			MiddleName: middle,
			LastName:   lastN,
			BirthYear:  int(birthYear.Int64),
			Street:     street.String,
			City:       city.String,
			State:      state.String,
			ZipCode:    zip.String,
			Phone:      phone.String,
			RawData: map[string]any{
				"voterId":    voterID,
				"registered": true,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("voter file rows: %w", err)
	}
	return matches, nil
}

// InitSchema creates the voters table and its lookup index. Exposed for the
// seeder and for tests.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS voters (
			voter_id        TEXT PRIMARY KEY,
			first_name      TEXT NOT NULL,
			middle_name     TEXT NOT NULL DEFAULT '',
			last_name       TEXT NOT NULL,
			first_name_norm TEXT NOT NULL,
			last_name_norm  TEXT NOT NULL,
			birth_year      INTEGER,
			street          TEXT,
			city            TEXT,
			city_norm       TEXT,
			state           TEXT,
			state_norm      TEXT,
			zip             TEXT,
			phone           TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_voters_last_name ON voters(last_name_norm);
	`)
	return err
}

// InsertVoter adds one row to the voters table, maintaining the normalized
// lookup columns. Exposed for the seeder and for tests.
func InsertVoter(db *sql.DB, m core.RawMatch) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO voters
			(voter_id, first_name, middle_name, last_name,
			 first_name_norm, last_name_norm, birth_year,
			 street, city, city_norm, state, state_norm, zip, phone)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SourceKey, m.FirstName, m.MiddleName, m.LastName,
		norm(m.FirstName), norm(m.LastName), nullableInt(m.BirthYear),
		m.Street, m.City, norm(m.City), m.State, norm(m.State), m.ZipCode, m.Phone)
	return err
}

func queryNameParts(query *core.SearchQuery) (last, first string) {
	last = norm(query.LastName)
	first = norm(query.FirstName)
	if last == "" && query.FullName != "" {
		parts := strings.Fields(norm(query.FullName))
		if len(parts) >= 2 {
			first = parts[0]
			last = parts[len(parts)-1]
		} else if len(parts) == 1 {
			last = parts[0]
		}
	}
	return last, first
}

func norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
