package guide

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/crew"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/model"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/persona"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/prompt"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/search"
)

const (
	// IntroTask 自我介绍任务名
	IntroTask = "introduction"
	// RecommendationTask 推荐任务名
	RecommendationTask = "recommendations"

	introFallback = "Introduction completed"
)

var (
	// ErrRunFailed 智能体运行失败，提示已输出到控制台
	ErrRunFailed = errors.New("AI agents run failed")
	// ErrNoRunner 未配置运行器
	ErrNoRunner = errors.New("no runner configured")
)

// Runner 按顺序执行任务，*crew.Crew 满足该接口
type Runner interface {
	Kickoff(ctx context.Context, tasks []crew.Task) (*crew.Result, error)
}

// RunnerFactory 创建运行器，构造失败与运行失败走同一条错误提示
type RunnerFactory func(ctx context.Context, runID string) (Runner, error)

// Options Guide 依赖
type Options struct {
	Persona *persona.Persona
	In      io.Reader
	Out     io.Writer
	// Choice 预设菜单选项，为空时从 In 读取一行
	Choice     string
	OutputPath string
	NewRunner  RunnerFactory
	// Searcher 为 nil 时不做联网检索
	Searcher      search.Searcher
	DigestOptions search.DigestOptions
	// Markdown 为 nil 时原样输出推荐
	Markdown MarkdownRenderer
	// CredentialEnvs 失败提示中列出的环境变量
	CredentialEnvs []string
}

// Guide 交互式推荐流程
type Guide struct {
	opts    Options
	console *console
}

// New 创建 Guide
func New(opts Options) *Guide {
	if opts.Persona == nil {
		opts.Persona = persona.Default()
	}
	if opts.In == nil {
		opts.In = strings.NewReader("")
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.OutputPath == "" {
		opts.OutputPath = "personalized_boston_guide.txt"
	}
	if opts.NewRunner == nil {
		opts.NewRunner = func(context.Context, string) (Runner, error) {
			return nil, ErrNoRunner
		}
	}
	if len(opts.CredentialEnvs) == 0 {
		opts.CredentialEnvs = []string{"OPENAI_API_KEY", "SERPER_API_KEY"}
	}
	return &Guide{
		opts:    opts,
		console: newConsole(opts.Out, opts.Markdown),
	}
}

// Run 执行一次完整流程
// 无效选择返回 nil；运行失败返回包装 ErrRunFailed 的错误且不写文件
func (g *Guide) Run(ctx context.Context) error {
	runID := uuid.NewString()
	log := logger.Log.WithField("run_id", runID)
	p := g.opts.Persona

	g.console.banner(p.Greeting)

	line := g.opts.Choice
	if line == "" {
		g.console.menu()
		var err error
		line, err = readLine(g.opts.In)
		if err != nil {
			return fmt.Errorf("read choice: %w", err)
		}
	}

	choice, err := model.ParseChoice(line)
	if err != nil {
		log.Warnf("无效的菜单选择: %q", line)
		g.console.invalidChoice()
		return nil
	}
	log = log.WithField("choice", string(choice))

	tasks, err := BuildTasks(choice, p)
	if err != nil {
		return err
	}

	g.console.working()
	start := time.Now()
	guide, err := g.execute(ctx, log, runID, choice, tasks)
	if err != nil {
		log.Errorf("运行失败: %v", err)
		g.console.failure(err, g.opts.CredentialEnvs)
		return fmt.Errorf("%w: %w", ErrRunFailed, err)
	}

	g.console.guide(guide.Introduction, guide.Recommendations)

	if err := WriteReport(g.opts.OutputPath, guide); err != nil {
		log.Errorf("写入报告失败: %v", err)
		g.console.failure(err, g.opts.CredentialEnvs)
		return fmt.Errorf("%w: %w", ErrRunFailed, err)
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Infof("报告已写入 %s", g.opts.OutputPath)

	g.console.farewell()
	return nil
}

func (g *Guide) execute(ctx context.Context, log *logrus.Entry, runID string, choice model.Choice, tasks []crew.Task) (model.Guide, error) {
	if g.opts.Searcher != nil {
		ref := search.Digest(ctx, g.opts.Searcher, prompt.SearchQueries(choice), g.opts.DigestOptions)
		if ref == "" {
			log.Warn("联网检索无结果，不附加参考资料")
		}
		tasks[1].Reference = ref
	}

	runner, err := g.opts.NewRunner(ctx, runID)
	if err != nil {
		return model.Guide{}, err
	}
	result, err := runner.Kickoff(ctx, tasks)
	if err != nil {
		return model.Guide{}, err
	}

	intro := introFallback
	if out, ok := result.Output(IntroTask); ok {
		intro = out.Raw
	}
	return model.Guide{
		PersonaName:     g.opts.Persona.Name,
		Choice:          choice,
		Introduction:    intro,
		Recommendations: result.Raw,
	}, nil
}

// BuildTasks 自我介绍与推荐两个任务，推荐任务以自我介绍为上下文
func BuildTasks(choice model.Choice, p *persona.Persona) ([]crew.Task, error) {
	intro, err := prompt.Intro(choice, p)
	if err != nil {
		return nil, err
	}
	rec, err := prompt.Recommendation(choice, p)
	if err != nil {
		return nil, err
	}

	return []crew.Task{
		{
			Name:           IntroTask,
			Description:    intro.Description,
			ExpectedOutput: intro.ExpectedOutput,
			Agent:          toAgent(p.IntroAgent),
		},
		{
			Name:           RecommendationTask,
			Description:    rec.Description,
			ExpectedOutput: rec.ExpectedOutput,
			Agent:          toAgent(p.GuideAgent),
			Context:        []string{IntroTask},
			MaxIter:        1,
		},
	}, nil
}

func toAgent(a persona.Agent) crew.Agent {
	return crew.Agent{Role: a.Role, Goal: a.Goal, Backstory: a.Backstory}
}

// readLine 读取一行，EOF 视为输入结束
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
