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


// Package jurorlink assembles the juror identity resolution engine: storage,
// source adapters and the search orchestrator, wired from a single Config.
package jurorlink

import (
	"log/slog"
	"time"

	"github.com/poiesic/jurorlink/search"
	"github.com/poiesic/jurorlink/sources"
	"github.com/poiesic/jurorlink/sources/fec"
	"github.com/poiesic/jurorlink/sources/pplsearch"
	"github.com/poiesic/jurorlink/sources/voterfile"
	"github.com/poiesic/jurorlink/storage"
	"github.com/poiesic/jurorlink/storage/badger"
)

// Engine owns the storage backend and the configured sources.
type Engine struct {
	backend       *badger.Backend
	candidateRepo storage.CandidateRepository
	jobRepo       storage.JobRepository
	sources       []sources.Source
	voter         *voterfile.Source
	config        *Config
	logger        *slog.Logger
}

// NewEngine opens storage and builds the configured sources.
func NewEngine(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.DBPath, false)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		backend:       backend,
		candidateRepo: badger.NewCandidateRepository(backend),
		jobRepo:       badger.NewJobRepository(backend),
		config:        cfg,
		logger:        slog.Default(),
	}

	if cfg.VoterFile.Enabled {
		voter, err := voterfile.New(cfg.VoterFile.Path)
		if err != nil {
			backend.Close()
			return nil, err
		}
		e.voter = voter
		e.sources = append(e.sources, voter)
	}
	if cfg.FEC.Enabled {
		e.sources = append(e.sources, fec.New(cfg.FEC.BaseURL, cfg.FEC.APIKey))
	}
	if cfg.PeopleSearch.Enabled {
		window := cfg.PeopleSearch.RateWindow
		if window <= 0 {
			window = time.Hour
		}
		e.sources = append(e.sources, pplsearch.New(
			cfg.PeopleSearch.BaseURL,
			cfg.PeopleSearch.APIKey,
			pplsearch.WithQuota(cfg.PeopleSearch.RateLimit, window)))
	}

	return e, nil
}

// Close closes the sources and the storage backend.
func (e *Engine) Close() error {
	if e.voter != nil {
		if err := e.voter.Close(); err != nil {
			e.logger.Error("error closing voter file source", "err", err)
		}
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// CandidateRepository returns the candidate store.
func (e *Engine) CandidateRepository() storage.CandidateRepository {
	return e.candidateRepo
}

// JobRepository returns the search job store.
func (e *Engine) JobRepository() storage.JobRepository {
	return e.jobRepo
}

// Sources returns the configured sources.
func (e *Engine) Sources() []sources.Source {
	return e.sources
}

// NewOrchestrator builds a search orchestrator over the engine's
// repositories and sources.
func (e *Engine) NewOrchestrator(opts ...search.Option) (*search.Orchestrator, error) {
	if e.config.PoolSize > 0 {
		opts = append([]search.Option{search.WithPoolSize(e.config.PoolSize)}, opts...)
	}
	return search.NewOrchestrator(e.candidateRepo, e.jobRepo, e.sources, opts...)
}

// NewQueue builds a background search queue over a fresh orchestrator.
func (e *Engine) NewQueue(opts ...search.QueueOption) (*search.Queue, error) {
	orchestrator, err := e.NewOrchestrator()
	if err != nil {
		return nil, err
	}
	if e.config.QueueWorkers > 0 {
		opts = append([]search.QueueOption{search.WithWorkers(e.config.QueueWorkers)}, opts...)
	}
	return search.NewQueue(orchestrator, opts...)
}
