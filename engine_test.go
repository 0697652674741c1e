package jurorlink

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/poiesic/jurorlink/core"
	"github.com/poiesic/jurorlink/sources/voterfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(dir, "jurorlink.db")
	cfg.VoterFile.Path = filepath.Join(dir, "voters.db")
	return cfg
}

func seedVoters(t *testing.T, path string, voters ...core.RawMatch) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, voterfile.InitSchema(db))
	for _, v := range voters {
		require.NoError(t, voterfile.InsertVoter(db, v))
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.DBPath = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.VoterFile.Enabled = false
	assert.Error(t, cfg.Validate(), "no source enabled")

	cfg = DefaultConfig()
	cfg.FEC.Enabled = true
	assert.Error(t, cfg.Validate(), "fec enabled without base url")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/jl.db
pool_size: 4
voter_file:
  enabled: true
  path: /tmp/voters.db
people_search:
  enabled: true
  base_url: https://api.example.test
  api_key: secret
  rate_limit: 25
  rate_window: 30m
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jl.db", cfg.DBPath)
	assert.Equal(t, 4, cfg.PoolSize)
	assert.True(t, cfg.PeopleSearch.Enabled)
	assert.Equal(t, 25, cfg.PeopleSearch.RateLimit)
	assert.Equal(t, 30*time.Minute, cfg.PeopleSearch.RateWindow)
	// File values merge over defaults.
	assert.Equal(t, 2, cfg.QueueWorkers)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestEngine_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	seedVoters(t, cfg.VoterFile.Path, core.RawMatch{
		SourceKey: "CA-0001",
		FirstName: "John",
		LastName:  "Smith",
		BirthYear: time.Now().Year() - 42,
		City:      "Los Angeles",
		State:     "CA",
	})

	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	defer engine.Close()

	require.Len(t, engine.Sources(), 1)
	assert.Equal(t, "voter_file", engine.Sources()[0].Name())

	orchestrator, err := engine.NewOrchestrator()
	require.NoError(t, err)
	defer orchestrator.Release()

	result, err := orchestrator.SearchJuror(context.Background(), "juror-1", &core.SearchQuery{
		FirstName: "John",
		LastName:  "Smith",
		Age:       42,
		City:      "Los Angeles",
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "voter_file", result.Candidates[0].SourceType)
	assert.GreaterOrEqual(t, result.Candidates[0].ConfidenceScore, 75)

	// The persisted set is readable through the engine's repository.
	persisted, err := engine.CandidateRepository().GetCandidates(context.Background(), "juror-1")
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestEngine_QueueFromConfig(t *testing.T) {
	cfg := testConfig(t)
	seedVoters(t, cfg.VoterFile.Path)

	engine, err := NewEngine(cfg)
	require.NoError(t, err)
	defer engine.Close()

	queue, err := engine.NewQueue()
	require.NoError(t, err)
	defer queue.Shutdown()

	jobID, err := queue.Enqueue(context.Background(), "juror-1", &core.SearchQuery{LastName: "Nakamura"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := engine.JobRepository().GetJob(context.Background(), jobID)
		return err == nil && job.Status == core.JobCompleted
	}, 5*time.Second, 10*time.Millisecond)
}
