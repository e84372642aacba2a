package guide

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", errors.New("render failed")
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "API keys", joinNames(nil))
	assert.Equal(t, "OPENAI_API_KEY", joinNames([]string{"OPENAI_API_KEY"}))
	assert.Equal(t, "OPENAI_API_KEY and SERPER_API_KEY", joinNames([]string{"OPENAI_API_KEY", "SERPER_API_KEY"}))
	assert.Equal(t, "A, B and C", joinNames([]string{"A", "B", "C"}))
}

func TestConsoleBanner(t *testing.T) {
	var out bytes.Buffer
	newConsole(&out, nil).banner("Hi there")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, bannerTitle, lines[0])
	assert.Equal(t, strings.Repeat("=", 55), lines[1])
	assert.Equal(t, "Hi there", lines[2])
	assert.Equal(t, lines[1], lines[3])
}

func TestConsoleMarkdown(t *testing.T) {
	md := "1. 🍜 **Pho Pasteur** - cheap and filling"

	var plain bytes.Buffer
	assert.Equal(t, md, newConsole(&plain, nil).renderMarkdown(md))

	var broken bytes.Buffer
	assert.Equal(t, md, newConsole(&broken, failingRenderer{}).renderMarkdown(md))

	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(80))
	require.NoError(t, err)
	var rendered bytes.Buffer
	got := newConsole(&rendered, r).renderMarkdown(md)
	assert.Contains(t, got, "Pho Pasteur")
}

func TestConsoleGuideLayout(t *testing.T) {
	var out bytes.Buffer
	newConsole(&out, nil).guide("Hi I'm Tong", "1. 🍜 ...")

	want := "Hi I'm Tong\n" +
		"\n\n" +
		transition + "\n\n" +
		"1. 🍜 ...\n"
	assert.Equal(t, want, out.String())
}

func TestConsoleFailureLines(t *testing.T) {
	var out bytes.Buffer
	newConsole(&out, nil).failure(errors.New("quota exceeded"), []string{"OPENAI_API_KEY", "SERPER_API_KEY"})

	want := "\n" +
		"❌ Error running AI agents: quota exceeded\n" +
		"💡 Make sure your OPENAI_API_KEY and SERPER_API_KEY are set correctly.\n" +
		serperHint + "\n"
	assert.Equal(t, want, out.String())
}
