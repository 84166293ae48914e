package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"StockPilot/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPipeline struct {
	status  string
	queries []string
}

func (s *stubPipeline) RunPipeline(_ context.Context, query string) *models.WorkflowResult {
	s.queries = append(s.queries, query)
	return &models.WorkflowResult{WorkflowID: "analysis_cli", Status: s.status, Query: query}
}

func (s *stubPipeline) ResolveAndValidateTicker(_ context.Context, query string) models.TickerValidation {
	return models.TickerValidation{Symbol: "AAPL", Valid: true, CompanyName: query}
}

type stubCache struct{ cleared bool }

func (s *stubCache) ClearCache(context.Context) error {
	s.cleared = true
	return nil
}

func run(t *testing.T, load Loader, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, path := range [][]string{{"analyze"}, {"resolve"}, {"cache", "clear"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	f := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, f)
	assert.Equal(t, "c", f.Shorthand)
}

func TestAnalyzeJoinsArgsAndClosesEnv(t *testing.T) {
	p := &stubPipeline{status: models.StatusCompleted}
	closed := false
	load := func(*RootOptions) (*Env, error) {
		return &Env{Pipeline: p, Close: func() error { closed = true; return nil }}, nil
	}

	out, err := run(t, load, "analyze", "apple", "inc", "--compact")
	require.NoError(t, err)
	assert.Equal(t, []string{"apple inc"}, p.queries)
	assert.True(t, closed)

	var res models.WorkflowResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "analysis_cli", res.WorkflowID)
}

func TestAnalyzeFailedResult(t *testing.T) {
	p := &stubPipeline{status: models.StatusFailed}
	load := func(*RootOptions) (*Env, error) { return &Env{Pipeline: p}, nil }

	out, err := run(t, load, "analyze", "zzzz")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Contains(t, out, `"status": "failed"`)
}

func TestResolve(t *testing.T) {
	load := func(*RootOptions) (*Env, error) { return &Env{Pipeline: &stubPipeline{}}, nil }

	out, err := run(t, load, "resolve", "apple")
	require.NoError(t, err)

	var v models.TickerValidation
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "AAPL", v.Symbol)
	assert.Equal(t, "apple", v.CompanyName)
}

func TestCacheClear(t *testing.T) {
	c := &stubCache{}
	load := func(*RootOptions) (*Env, error) { return &Env{Pipeline: &stubPipeline{}, Cache: c}, nil }

	out, err := run(t, load, "cache", "clear")
	require.NoError(t, err)
	assert.True(t, c.cleared)
	assert.JSONEq(t, `{"cleared":true}`, out)
}

func TestLoaderError(t *testing.T) {
	boom := errors.New("bad config")
	load := func(*RootOptions) (*Env, error) { return nil, boom }

	_, err := run(t, load, "resolve", "apple")
	assert.ErrorIs(t, err, boom)
}

func TestMissingArgs(t *testing.T) {
	load := func(*RootOptions) (*Env, error) { return &Env{Pipeline: &stubPipeline{}}, nil }
	_, err := run(t, load, "analyze")
	assert.Error(t, err)
}
