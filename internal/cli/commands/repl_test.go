package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/mlsmell/internal/cli/testutil"
	"github.com/leapstack-labs/mlsmell/internal/engine"
	"github.com/leapstack-labs/mlsmell/internal/testutil"
	"github.com/leapstack-labs/mlsmell/pkg/smell"
)

func newTestSession(t *testing.T) (*replSession, *clitestutil.TestRenderer) {
	t.Helper()
	eng, err := engine.New(engine.Config{
		Lint:      smell.NewConfig(),
		NewParser: func() engine.SourceParser { return &testutil.LineParser{} },
		Logger:    testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	tr := clitestutil.NewTestRendererMarkdown()
	return newREPLSession(eng, tr.Renderer, ""), tr
}

func TestNewREPLCommand(t *testing.T) {
	cmd := NewREPLCommand()

	assert.Equal(t, "repl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	flag := cmd.Flags().Lookup("as")
	require.NotNil(t, flag)
	assert.Equal(t, defaultAsPath, flag.DefValue)
}

func TestREPLSession_Handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		lines      []string
		wantOut    []string
		wantErr    []string
		wantAbsent []string
	}{
		{
			name:    "empty line lints the snippet",
			lines:   []string{"df = df.dropna()", ""},
			wantOut: []string{"W9004", "Data dropped via dropna()"},
		},
		{
			name:    "seed state is per snippet",
			lines:   []string{"random.seed(1)", "x = random.random()", "", "y = random.choice(items)", ""},
			wantOut: []string{"no smells", "1:1", "W9002"},
		},
		{
			name:       "clean snippet",
			lines:      []string{"model = LogisticRegression(**config.params)", ""},
			wantOut:    []string{"no smells"},
			wantAbsent: []string{"W9001"},
		},
		{
			name:       "path based rule follows .as",
			lines:      []string{".as services/serve.py", "model.fit(X, y)", ".lint"},
			wantOut:    []string{"linting as services/serve.py", "no smells"},
			wantAbsent: []string{"W9003"},
		},
		{
			name:    "inference path",
			lines:   []string{".as predict.py", "model.fit(X, y)", ".lint"},
			wantOut: []string{"W9003", "Model training detected"},
		},
		{
			name:       "reset discards the snippet",
			lines:      []string{"df = df.dropna()", ".reset", ".lint"},
			wantOut:    []string{"no smells"},
			wantAbsent: []string{"W9004"},
		},
		{
			name:    "show and rules",
			lines:   []string{"df = df.dropna()", ".show", ".rules"},
			wantOut: []string{"  1  df = df.dropna()", "W9001  hardcoded-hyperparameter"},
		},
		{
			name:    "unknown command",
			lines:   []string{".bogus"},
			wantErr: []string{"Unknown command: .bogus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, tr := newTestSession(t)
			for _, line := range tt.lines {
				_, quit := session.handle(ctx, line)
				require.False(t, quit)
			}

			out := tr.Output() + tr.ErrorOutput()
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, want := range tt.wantErr {
				assert.Contains(t, tr.ErrorOutput(), want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, out, absent)
			}
		})
	}
}

func TestREPLSession_Prompts(t *testing.T) {
	ctx := context.Background()
	session, _ := newTestSession(t)

	prompt, quit := session.handle(ctx, "x = 1")
	assert.Equal(t, replContPrompt, prompt)
	assert.False(t, quit)

	prompt, quit = session.handle(ctx, "")
	assert.Equal(t, replPrompt, prompt)
	assert.False(t, quit)
	assert.Empty(t, session.lines)

	_, quit = session.handle(ctx, ".quit")
	assert.True(t, quit)
	_, quit = session.handle(ctx, " .EXIT ")
	assert.True(t, quit)
}
