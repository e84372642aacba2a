package guide

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
)

const (
	bannerTitle  = "🎓 Welcome to Your Harvard Student Digital Twin!"
	menuText     = "\n🌟 What would you like recommendations for?\nType 1 for food\nType 2 for things to do\nType 3 for both\nYour choice: "
	invalidText  = "❌ Invalid choice! Please type 1, 2, or 3."
	workingText  = "\n👋 Let me introduce myself and find perfect recommendations for you..."
	transition   = "Now that you know me better, here are my personalized Boston recommendations just for you!"
	farewellText = "\n🌟 I hope you like my recommendations and have a great time in Boston!"
	serperHint   = "💡 Get a free Serper API key at: https://serper.dev"
)

// MarkdownRenderer 终端 Markdown 渲染，glamour.TermRenderer 满足该接口
type MarkdownRenderer interface {
	Render(in string) (string, error)
}

// NewMarkdownRenderer 创建 glamour 渲染器
func NewMarkdownRenderer(wordWrap int) (MarkdownRenderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// console 面向用户的 stdout 输出
type console struct {
	out      io.Writer
	markdown MarkdownRenderer
	title    lipgloss.Style
	alert    lipgloss.Style
	hint     lipgloss.Style
}

func newConsole(out io.Writer, md MarkdownRenderer) *console {
	r := lipgloss.NewRenderer(out)
	return &console{
		out:      out,
		markdown: md,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2563eb")),
		alert:    r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		hint:     r.NewStyle().Faint(true),
	}
}

func (c *console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *console) banner(greeting string) {
	rule := strings.Repeat("=", 55)
	c.println(c.title.Render(bannerTitle))
	c.println(rule)
	c.println(greeting)
	c.println(rule)
}

func (c *console) menu() {
	fmt.Fprint(c.out, menuText)
}

func (c *console) invalidChoice() {
	c.println(c.alert.Render(invalidText))
}

func (c *console) working() {
	c.println(workingText)
}

func (c *console) guide(intro, recommendations string) {
	c.println(intro)
	fmt.Fprint(c.out, "\n\n")
	fmt.Fprint(c.out, transition+"\n\n")
	c.println(c.renderMarkdown(recommendations))
}

func (c *console) farewell() {
	c.println(farewellText)
}

// failure 错误信息与凭证提示，全部写 stdout
func (c *console) failure(err error, credentialEnvs []string) {
	fmt.Fprint(c.out, "\n")
	c.println(c.alert.Render(fmt.Sprintf("❌ Error running AI agents: %v", err)))
	c.println(c.hint.Render(fmt.Sprintf("💡 Make sure your %s are set correctly.", joinNames(credentialEnvs))))
	c.println(c.hint.Render(serperHint))
}

func (c *console) renderMarkdown(md string) string {
	if c.markdown == nil {
		return md
	}
	out, err := c.markdown.Render(md)
	if err != nil {
		logger.Log.Warnf("Markdown 渲染失败，输出原文: %v", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return "API keys"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
