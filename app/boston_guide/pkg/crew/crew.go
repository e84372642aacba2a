package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/logger"
)

var (
	// ErrNoTasks Kickoff 未提供任务
	ErrNoTasks = errors.New("no tasks provided")
	// ErrUnknownContext 任务引用了不存在或尚未执行的任务
	ErrUnknownContext = errors.New("context refers to unknown or later task")
	// ErrEmptyOutput 模型在 MaxIter 次生成后仍未给出内容
	ErrEmptyOutput = errors.New("model returned empty output")
)

// Agent 智能体：角色、目标、背景
type Agent struct {
	Role      string
	Goal      string
	Backstory string
}

// Task 一次模型调用请求
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          Agent
	// Context 需要作为上下文的前置任务名
	Context []string
	// Reference 附加的参考资料，例如联网检索摘要
	Reference string
	// MaxIter 获得非空回答前允许的生成次数，默认 1
	MaxIter int
}

// TaskOutput 单个任务的输出
type TaskOutput struct {
	Name  string
	Agent string
	Raw   string
}

// Result 整次运行的输出
type Result struct {
	Tasks []TaskOutput
	// Raw 最后一个任务的输出
	Raw string
}

// Output 按任务名取输出
func (r *Result) Output(name string) (TaskOutput, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskOutput{}, false
}

// Crew 顺序执行任务，前置任务的输出作为后续任务的上下文
type Crew struct {
	chatModel  model.BaseChatModel
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
	runID      string
}

// Option Crew 选项
type Option func(*Crew)

// WithLimiter 设置限流器
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Crew) {
		if l != nil {
			c.limiter = l
		}
	}
}

// WithRetry 设置 429 / 瞬时错误的重试次数与退避基准
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Crew) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

// WithRunID 日志中的运行 ID
func WithRunID(id string) Option {
	return func(c *Crew) { c.runID = id }
}

// New 创建 Crew
func New(cm model.BaseChatModel, opts ...Option) *Crew {
	c := &Crew{
		chatModel:  cm,
		limiter:    rate.NewLimiter(rate.Inf, 0),
		maxRetries: 3,
		baseDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLimiter Limit 设置为 RPM/60，Burst 设置为 QPS；rpm <= 0 不限流
func NewLimiter(rpm, qps int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if qps <= 0 {
		qps = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), qps)
}

// Kickoff 按顺序执行全部任务，任一任务失败则整体失败，不返回部分结果
func (c *Crew) Kickoff(ctx context.Context, tasks []Task) (*Result, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	// 补全任务名只作用于副本，调用方的切片保持不变
	tasks = append([]Task(nil), tasks...)

	// 先校验上下文引用，避免跑到一半才发现配置错误
	seen := make(map[string]bool, len(tasks))
	for i := range tasks {
		if tasks[i].Name == "" {
			tasks[i].Name = fmt.Sprintf("task-%d", i+1)
		}
		for _, ref := range tasks[i].Context {
			if !seen[ref] {
				return nil, fmt.Errorf("task %s: %w: %s", tasks[i].Name, ErrUnknownContext, ref)
			}
		}
		if seen[tasks[i].Name] {
			return nil, fmt.Errorf("duplicate task name: %s", tasks[i].Name)
		}
		seen[tasks[i].Name] = true
	}

	outputs := make(map[string]string, len(tasks))
	result := &Result{}
	for _, task := range tasks {
		log := logger.Log.WithFields(logrus.Fields{
			"run_id": c.runID,
			"task":   task.Name,
			"agent":  task.Agent.Role,
		})
		log.Info("开始执行任务")
		start := time.Now()

		out, err := c.RunStep(ctx, task, joinContext(task.Context, outputs))
		if err != nil {
			log.Errorf("任务执行失败: %v", err)
			return nil, fmt.Errorf("task %s: %w", task.Name, err)
		}
		log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("任务完成")

		outputs[task.Name] = out
		result.Tasks = append(result.Tasks, TaskOutput{Name: task.Name, Agent: task.Agent.Role, Raw: out})
		result.Raw = out
	}
	return result, nil
}

// RunStep 执行单个任务，priorContext 为空表示没有上下文
func (c *Crew) RunStep(ctx context.Context, task Task, priorContext string) (string, error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(stepTemplate).AppendChatModel(c.chatModel)
	runnable, err := chain.Compile(ctx)
	if err != nil {
		return "", fmt.Errorf("compile chain: %w", err)
	}

	vars := stepVariables(task, priorContext)
	maxIter := task.MaxIter
	if maxIter <= 0 {
		maxIter = 1
	}

	for iter := 1; iter <= maxIter; iter++ {
		msg, err := c.invoke(ctx, runnable, vars)
		if err != nil {
			return "", err
		}
		if out := strings.TrimSpace(msg.Content); out != "" {
			return out, nil
		}
		logger.Log.Warnf("模型返回空内容 [%s] (%d/%d)", task.Name, iter, maxIter)
	}
	return "", ErrEmptyOutput
}

// invoke 带限流与指数退避重试的一次调用
func (c *Crew) invoke(ctx context.Context, runnable compose.Runnable[map[string]any, *schema.Message], vars map[string]any) (*schema.Message, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("limiter wait error: %w", err)
		}

		msg, err := runnable.Invoke(ctx, vars)
		if err == nil {
			return msg, nil
		}
		if !retryable(err) {
			return nil, err
		}

		lastErr = err
		if i < c.maxRetries {
			delay := c.baseDelay * time.Duration(1<<i)
			logger.Log.Warnf("触发限流或瞬时错误，等待 %v 后重试 (%d/%d): %v", delay, i+1, c.maxRetries, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// retryable 429 与常见网络瞬时错误
func retryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"429",
		"too many requests",
		"resource_exhausted",
		"rate limit",
		"status code: 5",
		"connection reset",
		"connection refused",
		"tls handshake timeout",
		"client.timeout",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func joinContext(names []string, outputs map[string]string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if out := outputs[n]; out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, "\n\n")
}
