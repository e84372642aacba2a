package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/config"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/guide"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/persona"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search/factory"
)

var version = "dev"

type flags struct {
	configPath  string
	personaPath string
	choice      string
	outputPath  string
	render      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, guide.ErrRunFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "boston_guide",
		Short: "Harvard student digital twin with personalized Boston recommendations",
		Long: `boston_guide introduces a Harvard student persona and asks an LLM for
Boston restaurant and activity recommendations written in that persona's voice.

The result is printed and saved to a text file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, in, out, f)
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.Flags().StringVarP(&f.configPath, "config", "c", "configs/config.yaml", "config file path")
	root.Flags().StringVarP(&f.personaPath, "persona", "p", "", "persona YAML file (defaults to the built-in persona)")
	root.Flags().StringVar(&f.choice, "choice", "", "skip the menu: 1 food, 2 things to do, 3 both")
	root.Flags().StringVarP(&f.outputPath, "output", "o", "", "output file path")
	root.Flags().BoolVar(&f.render, "render", false, "render recommendations as Markdown in the terminal")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "boston_guide", version)
		},
	})
	return root
}

func run(cmd *cobra.Command, in io.Reader, out io.Writer, f flags) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return fmt.Errorf("无法加载配置文件: %w", err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		return fmt.Errorf("无法初始化日志: %w", err)
	}

	if f.personaPath != "" {
		cfg.Persona.Path = f.personaPath
	}
	if f.outputPath != "" {
		cfg.Output.Path = f.outputPath
	}
	if cmd.Flags().Changed("render") {
		cfg.Output.RenderMarkdown = f.render
	}

	p, err := persona.Load(cfg.Persona.Path)
	if err != nil {
		return err
	}

	var searcher search.Searcher
	if searcher, err = factory.NewSearcher(cfg.Search); err != nil {
		logger.Log.Warnf("联网检索不可用，跳过: %v", err)
	}

	var md guide.MarkdownRenderer
	if cfg.Output.RenderMarkdown {
		if md, err = guide.NewMarkdownRenderer(80); err != nil {
			logger.Log.Warnf("Markdown 渲染器初始化失败: %v", err)
		}
	}

	logger.Log.WithField("provider", cfg.LLM.Provider).WithField("model", cfg.LLM.Model).Info("启动 Boston 推荐助手")

	return guide.New(guide.Options{
		Persona:        p,
		In:             in,
		Out:            out,
		Choice:         f.choice,
		OutputPath:     cfg.Output.Path,
		NewRunner:      guide.NewCrewRunnerFactory(cfg),
		Searcher:       searcher,
		DigestOptions:  search.DigestOptions{MaxResults: cfg.Search.MaxResults},
		Markdown:       md,
		CredentialEnvs: guide.CredentialHints(cfg),
	}).Run(ctx)
}
