package guide

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/crew"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/model"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/persona"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
)

type stubRunner struct {
	intro string
	recs  string
	err   error
	tasks []crew.Task
}

func (s *stubRunner) Kickoff(_ context.Context, tasks []crew.Task) (*crew.Result, error) {
	s.tasks = tasks
	if s.err != nil {
		return nil, s.err
	}
	return &crew.Result{
		Tasks: []crew.TaskOutput{
			{Name: IntroTask, Raw: s.intro},
			{Name: RecommendationTask, Raw: s.recs},
		},
		Raw: s.recs,
	}, nil
}

type stubSearcher struct {
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, req *search.Request) (*search.Response, error) {
	s.queries = append(s.queries, req.Query)
	return &search.Response{
		Results: []search.Result{{
			Title:   "Mr. Bartley's",
			URL:     "https://example.com/bartleys",
			Content: strings.Repeat("burgers near Harvard Square ", 10),
		}},
	}, nil
}

func factoryFor(r Runner, calls *int) RunnerFactory {
	return func(context.Context, string) (Runner, error) {
		if calls != nil {
			*calls++
		}
		return r, nil
	}
}

func newTestGuide(t *testing.T, input, path string, r Runner) (*Guide, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return New(Options{
		Persona:    persona.Default(),
		In:         strings.NewReader(input),
		Out:        &out,
		OutputPath: path,
		NewRunner:  factoryFor(r, nil),
	}), &out
}

func expectedReport(header, intro, recs string) string {
	return "Tong's Personalized Boston Guide - " + header + "\n" +
		strings.Repeat("=", 60) + "\n\n" +
		"👋 Self Introduction\n" + intro + "\n\n" +
		"📍 Recommendations\n" + recs + "\n"
}

func TestRunInvalidChoice(t *testing.T) {
	for _, input := range []string{"4\n", "", "food\n"} {
		t.Run(input, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guide.txt")
			calls := 0
			var out bytes.Buffer
			g := New(Options{
				In:         strings.NewReader(input),
				Out:        &out,
				OutputPath: path,
				NewRunner:  factoryFor(&stubRunner{}, &calls),
			})

			require.NoError(t, g.Run(context.Background()))
			assert.Contains(t, out.String(), "❌ Invalid choice! Please type 1, 2, or 3.")
			assert.Contains(t, out.String(), "Your choice: ")
			assert.Zero(t, calls)
			assert.NoFileExists(t, path)
		})
	}
}

func TestRunWritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	runner := &stubRunner{intro: "Hi I'm Tong", recs: "1. 🍜 ..."}
	g, out := newTestGuide(t, "1\n", path, runner)

	require.NoError(t, g.Run(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedReport("Food Recommendations", "Hi I'm Tong", "1. 🍜 ..."), string(data))

	console := out.String()
	assert.Contains(t, console, "🎓 Welcome to Your Harvard Student Digital Twin!")
	assert.Contains(t, console, strings.Repeat("=", 55))
	assert.Contains(t, console, "👋 Let me introduce myself and find perfect recommendations for you...")
	assert.Contains(t, console, "Hi I'm Tong")
	assert.Contains(t, console, "Now that you know me better, here are my personalized Boston recommendations just for you!")
	assert.Contains(t, console, "1. 🍜 ...")
	assert.True(t, strings.HasSuffix(console, "🌟 I hope you like my recommendations and have a great time in Boston!\n"))
	assert.Less(t, strings.Index(console, "Hi I'm Tong"), strings.Index(console, "1. 🍜 ..."))
}

func TestRunOverwritesPreviousReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")

	g, _ := newTestGuide(t, "3\n", path, &stubRunner{intro: "long intro " + strings.Repeat("x", 500), recs: "## Restaurants\n1. 🍜 ..."})
	require.NoError(t, g.Run(context.Background()))

	g, _ = newTestGuide(t, "2\n", path, &stubRunner{intro: "Hi I'm Tong", recs: "1. 🎭 ..."})
	require.NoError(t, g.Run(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedReport("Activity Recommendations", "Hi I'm Tong", "1. 🎭 ..."), string(data))
	assert.NotContains(t, string(data), "Restaurants")
}

func TestRunIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	runner := &stubRunner{intro: "Hi I'm Tong", recs: "1. 🍜 ..."}

	g, _ := newTestGuide(t, "3\n", path, runner)
	require.NoError(t, g.Run(context.Background()))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	g, _ = newTestGuide(t, "3\n", path, runner)
	require.NoError(t, g.Run(context.Background()))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(string(first), "Tong's Personalized Boston Guide - Food & Activity Recommendations\n"))
}

func TestRunRunnerError(t *testing.T) {
	dir := t.TempDir()

	t.Run("no file written", func(t *testing.T) {
		path := filepath.Join(dir, "absent.txt")
		g, out := newTestGuide(t, "1\n", path, &stubRunner{err: errors.New("insufficient_quota: check your plan")})

		err := g.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRunFailed)
		assert.NoFileExists(t, path)

		console := out.String()
		assert.Contains(t, console, "❌ Error running AI agents: insufficient_quota: check your plan")
		assert.Contains(t, console, "💡 Make sure your OPENAI_API_KEY and SERPER_API_KEY are set correctly.")
		assert.Contains(t, console, "💡 Get a free Serper API key at: https://serper.dev")
		assert.NotContains(t, console, "🌟 I hope you like")
	})

	t.Run("existing file untouched", func(t *testing.T) {
		path := filepath.Join(dir, "existing.txt")
		require.NoError(t, os.WriteFile(path, []byte("previous guide"), 0o644))
		g, _ := newTestGuide(t, "2\n", path, &stubRunner{err: errors.New("boom")})

		require.Error(t, g.Run(context.Background()))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "previous guide", string(data))
	})
}

func TestRunRunnerFactoryError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	var out bytes.Buffer
	cause := errors.New("unknown llm provider: claude")
	g := New(Options{
		In:         strings.NewReader("1\n"),
		Out:        &out,
		OutputPath: path,
		NewRunner: func(context.Context, string) (Runner, error) {
			return nil, cause
		},
		CredentialEnvs: []string{"GEMINI_API_KEY", "TAVILY_API_KEY"},
	})

	err := g.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, out.String(), "❌ Error running AI agents: unknown llm provider: claude")
	assert.Contains(t, out.String(), "💡 Make sure your GEMINI_API_KEY and TAVILY_API_KEY are set correctly.")
	assert.NoFileExists(t, path)
}

func TestRunPresetChoice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	var out bytes.Buffer
	runner := &stubRunner{intro: "Hi I'm Tong", recs: "1. 🍜 ..."}
	g := New(Options{
		Choice:     "2",
		Out:        &out,
		OutputPath: path,
		NewRunner:  factoryFor(runner, nil),
	})

	require.NoError(t, g.Run(context.Background()))
	assert.NotContains(t, out.String(), "Your choice: ")
	require.Len(t, runner.tasks, 2)
	assert.Contains(t, runner.tasks[1].Description, "activities")
}

func TestRunAttachesSearchDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	runner := &stubRunner{intro: "Hi I'm Tong", recs: "1. 🍜 ..."}
	searcher := &stubSearcher{}
	g := New(Options{
		Choice:     "1",
		OutputPath: path,
		NewRunner:  factoryFor(runner, nil),
		Searcher:   searcher,
	})

	require.NoError(t, g.Run(context.Background()))
	require.NotEmpty(t, searcher.queries)
	require.Len(t, runner.tasks, 2)
	assert.Empty(t, runner.tasks[0].Reference)
	assert.Contains(t, runner.tasks[1].Reference, "Mr. Bartley's (https://example.com/bartleys)")
}

func TestBuildTasks(t *testing.T) {
	p := persona.Default()
	for _, choice := range model.Choices {
		tasks, err := BuildTasks(choice, p)
		require.NoError(t, err)
		require.Len(t, tasks, 2)

		assert.Equal(t, IntroTask, tasks[0].Name)
		assert.Empty(t, tasks[0].Context)
		assert.Equal(t, p.IntroAgent.Role, tasks[0].Agent.Role)
		assert.Contains(t, tasks[0].Description, strings.TrimSpace(p.Bio))

		assert.Equal(t, RecommendationTask, tasks[1].Name)
		assert.Equal(t, []string{IntroTask}, tasks[1].Context)
		assert.Equal(t, 1, tasks[1].MaxIter)
		assert.Equal(t, p.GuideAgent.Role, tasks[1].Agent.Role)
	}

	_, err := BuildTasks(model.Choice("9"), p)
	assert.Error(t, err)
}

func TestReadLine(t *testing.T) {
	line, err := readLine(strings.NewReader("3\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "3", line)

	line, err = readLine(strings.NewReader("2"))
	require.NoError(t, err)
	assert.Equal(t, "2", line)
}

func TestRunWithoutRunnerFactory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guide.txt")
	var out bytes.Buffer
	g := New(Options{
		Choice:     "1",
		Out:        &out,
		OutputPath: path,
	})

	err := g.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.ErrorIs(t, err, ErrNoRunner)
	assert.Contains(t, out.String(), "❌ Error running AI agents: no runner configured")
	assert.NoFileExists(t, path)
}
