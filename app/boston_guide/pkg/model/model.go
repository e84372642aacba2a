package model

import (
	"errors"
	"fmt"
	"strings"
)

// Choice 用户菜单选择
type Choice string

const (
	ChoiceFood       Choice = "1"
	ChoiceActivities Choice = "2"
	ChoiceBoth       Choice = "3"
)

// ErrInvalidChoice 菜单输入不在 1/2/3 之内
var ErrInvalidChoice = errors.New("invalid choice")

// Choices 全部合法选项，按菜单顺序
var Choices = []Choice{ChoiceFood, ChoiceActivities, ChoiceBoth}

// ParseChoice 解析一行菜单输入，去掉首尾空白和换行
func ParseChoice(line string) (Choice, error) {
	c := Choice(strings.TrimSpace(line))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChoice, line)
	}
	return c, nil
}

// Valid 是否为合法选项
func (c Choice) Valid() bool {
	switch c {
	case ChoiceFood, ChoiceActivities, ChoiceBoth:
		return true
	}
	return false
}

// Header 输出文件标题中的推荐类型
func (c Choice) Header() string {
	switch c {
	case ChoiceFood:
		return "Food Recommendations"
	case ChoiceActivities:
		return "Activity Recommendations"
	case ChoiceBoth:
		return "Food & Activity Recommendations"
	}
	return ""
}

// WantsFood 是否包含餐厅推荐
func (c Choice) WantsFood() bool {
	return c == ChoiceFood || c == ChoiceBoth
}

// WantsActivities 是否包含活动推荐
func (c Choice) WantsActivities() bool {
	return c == ChoiceActivities || c == ChoiceBoth
}

// Guide 一次运行的完整产出
type Guide struct {
	PersonaName     string
	Choice          Choice
	Introduction    string
	Recommendations string
}
