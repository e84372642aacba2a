package guide

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/model"
)

// RenderReport 输出文件内容
func RenderReport(g model.Guide) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s's Personalized Boston Guide - %s\n", g.PersonaName, g.Choice.Header())
	sb.WriteString(strings.Repeat("=", 60) + "\n\n")

	sb.WriteString("👋 Self Introduction\n")
	sb.WriteString(g.Introduction + "\n\n")

	sb.WriteString("📍 Recommendations\n")
	sb.WriteString(g.Recommendations + "\n")
	return sb.String()
}

// WriteReport 写入报告，已有文件会被截断覆盖
func WriteReport(path string, g model.Guide) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, RenderReport(g)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
