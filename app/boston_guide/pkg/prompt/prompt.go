package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/model"
	"github.com/iWorld-y/boston_guide/app/boston_guide/pkg/persona"
)

// ErrUnknownChoice 选项不在模板表中
var ErrUnknownChoice = errors.New("no prompt template for choice")

// TaskPrompt 一个任务的描述与期望输出
type TaskPrompt struct {
	Description    string
	ExpectedOutput string
}

// Neighborhoods 推荐覆盖的街区
var Neighborhoods = []string{"Cambridge", "Allston", "Brighton", "Boston proper", "Brookline", "Somerville"}

var introFocus = map[model.Choice]string{
	model.ChoiceFood: `Focus on your passion for food, cooking, and trying new restaurants. Emphasize your love for Asian cuisine
and exploring diverse flavors. Make it clear why food recommendations would be perfect for you.`,
	model.ChoiceActivities: `Focus on your love for activities and experiences. Emphasize your interests in street dance, K-pop,
city walks, movies, artistic experiences, and exploring new things. Show your adventurous spirit.`,
	model.ChoiceBoth: `Provide a balanced introduction that highlights both your food interests (cooking, trying restaurants)
and your activity interests (dancing, movies, city walks, art). Show your well-rounded personality.`,
}

var introExpected = map[model.Choice]string{
	model.ChoiceFood:       "A warm 3-5 sentence introduction emphasizing %s's food interests and dining preferences.",
	model.ChoiceActivities: "A warm 3-5 sentence introduction emphasizing %s's activity interests and adventurous nature.",
	model.ChoiceBoth:       "A warm 3-5 sentence balanced introduction covering both %s's food and activity interests.",
}

const recommendationBase = `You are %s. Based on your personal introduction from the previous task, give personalized recommendations
that align with YOUR interests and background as a %s.

Requirements:
- Reference YOUR introduction when explaining why recommendations fit YOUR personality
- Format as numbered Markdown lists
- Each item must include ONE emoji and name in bold
- Add 1-2 sentences explaining why it's perfect for %s based on the introduction
- Focus on %s
- Focus on budget-friendly options for students`

var recommendationRules = map[model.Choice]string{
	model.ChoiceFood: `- Recommend EXACTLY 3 different student-friendly restaurants
- Connect each recommendation to your food interests mentioned in the introduction
- Stop after exactly 3 recommendations`,
	model.ChoiceActivities: `- Recommend EXACTLY 3 different student-friendly activities
- Connect each recommendation to your activity interests mentioned in the introduction
- Stop after exactly 3 recommendations`,
	model.ChoiceBoth: `- Recommend EXACTLY 3 restaurants AND 3 activities
- Connect each recommendation to your interests mentioned in the introduction
- Stop after exactly 6 total recommendations`,
}

const (
	restaurantList = `1. 🍜 **Restaurant Name** - Brief description connecting to your %[1]s (1-2 sentences)
2. 🥢 **Restaurant Name** - Brief description connecting to your %[1]s (1-2 sentences)
3. 🌮 **Restaurant Name** - Brief description connecting to your %[1]s (1-2 sentences)`

	activityList = `1. 🎨 **Activity Name** - Brief description connecting to your interests (1-2 sentences)
2. 🏃 **Activity Name** - Brief description connecting to your interests (1-2 sentences)
3. 🎭 **Activity Name** - Brief description connecting to your interests (1-2 sentences)`
)

var recommendationExpected = map[model.Choice]string{
	model.ChoiceFood: "A numbered Markdown list with exactly 3 restaurants formatted as:\n" +
		fmt.Sprintf(restaurantList, "food interests"),
	model.ChoiceActivities: "A numbered Markdown list with exactly 3 activities formatted as:\n" + activityList,
	model.ChoiceBoth: "Two numbered Markdown lists:\n## Restaurants\n" +
		fmt.Sprintf(restaurantList, "interests") + "\n\n## Activities\n" + activityList,
}

// Intro 自我介绍任务的描述与期望输出
func Intro(choice model.Choice, p *persona.Persona) (TaskPrompt, error) {
	focus, ok := introFocus[choice]
	if !ok {
		return TaskPrompt{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
	return TaskPrompt{
		Description:    strings.TrimSpace(p.Bio) + "\n\n" + focus,
		ExpectedOutput: fmt.Sprintf(introExpected[choice], p.Name),
	}, nil
}

// Recommendation 推荐任务的描述与期望输出，依赖自我介绍任务的输出作为上下文
func Recommendation(choice model.Choice, p *persona.Persona) (TaskPrompt, error) {
	rules, ok := recommendationRules[choice]
	if !ok {
		return TaskPrompt{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
	base := fmt.Sprintf(recommendationBase, p.Name, p.Identity, p.Name, joinAreas(Neighborhoods))
	return TaskPrompt{
		Description:    base + "\n" + rules,
		ExpectedOutput: recommendationExpected[choice],
	}, nil
}

// SearchQueries 可选联网检索使用的查询语句
func SearchQueries(choice model.Choice) []string {
	var queries []string
	if choice.WantsFood() {
		queries = append(queries, "best budget-friendly student restaurants in Cambridge, Allston and Somerville, Boston")
	}
	if choice.WantsActivities() {
		queries = append(queries, "fun student-friendly things to do in Cambridge, Somerville and Boston this week")
	}
	return queries
}

// joinAreas "A, B, and C"
func joinAreas(areas []string) string {
	switch len(areas) {
	case 0:
		return ""
	case 1:
		return areas[0]
	}
	return strings.Join(areas[:len(areas)-1], ", ") + ", and " + areas[len(areas)-1]
}
