package persona

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tong.yaml
var defaultPersona []byte

// ErrIncomplete 人设文件缺少必填字段
var ErrIncomplete = errors.New("persona is incomplete")

// Agent 智能体的人设配置
type Agent struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// Persona 数字分身人设
type Persona struct {
	Name       string `yaml:"name"`
	Identity   string `yaml:"identity"`
	Greeting   string `yaml:"greeting"`
	Bio        string `yaml:"bio"`
	IntroAgent Agent  `yaml:"intro_agent"`
	GuideAgent Agent  `yaml:"guide_agent"`
}

// Default 内置人设 (Tong)
func Default() *Persona {
	p, err := Parse(defaultPersona)
	if err != nil {
		panic(fmt.Sprintf("embedded persona: %v", err))
	}
	return p
}

// Load 从 YAML 文件加载人设，path 为空时返回内置人设
func Load(path string) (*Persona, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", path, err)
	}
	return p, nil
}

// Parse 解析人设 YAML 并补全缺省字段
func Parse(data []byte) (*Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal persona: %w", err)
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrIncomplete)
	}
	if strings.TrimSpace(p.Bio) == "" {
		return nil, fmt.Errorf("%w: bio is required", ErrIncomplete)
	}

	if p.Identity == "" {
		p.Identity = "student"
	}
	if p.Greeting == "" {
		p.Greeting = fmt.Sprintf("Hi! I’m %s. Let me share a bit about myself and recommend some fun places in Boston.", p.Name)
	}
	if p.IntroAgent.Role == "" {
		p.IntroAgent.Role = p.Name
	}
	if p.GuideAgent.Role == "" {
		p.GuideAgent.Role = p.Name + " - Personal Boston Recommender"
	}
	return &p, nil
}
