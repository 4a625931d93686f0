package types

import "context"

// SceneParser 把原始剧本文本拆成有序场景。
// 对本引擎是黑盒：LLM 实现与规则实现都要满足这个契约。
type SceneParser interface {
	Parse(ctx context.Context, rawText string, language string) (*ParsedScenario, error)
}

// TextImprover 外部提示词润色协作方。
// 失败必须被调用方吞掉并退回规则增强，绝不能让规划失败。
type TextImprover interface {
	Improve(ctx context.Context, text, styleHint, toneHint, languageHint string) (string, error)
}

// ChatCompleter 通用对话补全客户端
type ChatCompleter interface {
	ChatCompletion(ctx context.Context, prompt string) (string, error)
}
