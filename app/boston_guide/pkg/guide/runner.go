package guide

import (
	"context"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/config"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/crew"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/llm"
)

// NewCrewRunnerFactory 按配置创建 LLM 与 crew 运行器
func NewCrewRunnerFactory(cfg *config.Config) RunnerFactory {
	return func(ctx context.Context, runID string) (Runner, error) {
		cm, err := llm.NewChatModel(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		return crew.New(cm,
			crew.WithLimiter(crew.NewLimiter(cfg.Concurrency.RPM, cfg.Concurrency.QPS)),
			crew.WithRetry(cfg.LLM.MaxRetries, cfg.LLM.BaseDelay()),
			crew.WithRunID(runID),
		), nil
	}
}

// CredentialHints 失败提示中需要检查的环境变量
func CredentialHints(cfg *config.Config) []string {
	envs := config.CredentialEnv(cfg.LLM.Provider)[:1]
	if cfg.LLM.APIKeyEnv != "" {
		envs = []string{cfg.LLM.APIKeyEnv}
	}
	switch cfg.Search.Provider {
	case "tavily":
		return append(envs, "TAVILY_API_KEY")
	default:
		return append(envs, "SERPER_API_KEY")
	}
}
