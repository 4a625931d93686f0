// Package registry holds the static capability profiles of the downstream
// video generation models. Lookup is total: an unrecognized id falls back to
// a conservative default profile stamped with the original id, so planning
// keeps working for models other subsystems adopted before this table did.
package registry

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"storyboard-ai/internal/types"
)

// 模糊匹配允许的最大编辑距离，超出即落到默认档案
const maxEditDistance = 2

type entry struct {
	key  string // 规范化后的模型 id
	caps types.ModelCapabilities
}

// Registry 进程级只读状态，启动时装载，运行期无写入，无需加锁。
type Registry struct {
	entries []entry
}

// lookupStrategy 按序尝试的单个查找策略
type lookupStrategy func(r *Registry, normalized string) (types.ModelCapabilities, bool)

var lookupStrategies = []lookupStrategy{
	(*Registry).exactMatch,
	(*Registry).substringMatch,
	(*Registry).closestMatch,
}

// NewDefault 返回内置模型能力表
func NewDefault() *Registry {
	r := &Registry{}
	for _, caps := range builtinModels {
		r.entries = append(r.entries, entry{key: Normalize(caps.ModelId), caps: caps})
	}
	return r
}

// Get 查找模型能力档案，永不失败。
// 顺序：精确匹配 → 子串匹配 → 近似匹配（编辑距离）→ 默认档案。
func (r *Registry) Get(modelId string) types.ModelCapabilities {
	caps, _ := r.Lookup(modelId)
	return caps
}

// Lookup 与 Get 相同，另返回是否命中注册表。
// 未命中不是错误，只是规划信号（调用方据此加 warning）。
func (r *Registry) Lookup(modelId string) (types.ModelCapabilities, bool) {
	normalized := Normalize(modelId)
	for _, strategy := range lookupStrategies {
		if caps, ok := strategy(r, normalized); ok {
			return caps, true
		}
	}
	return DefaultCapabilities(modelId), false
}

// List 返回全部内置档案，顺序稳定
func (r *Registry) List() []types.ModelCapabilities {
	out := make([]types.ModelCapabilities, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.caps)
	}
	return out
}

// Normalize 小写并把下划线归一成连字符
func Normalize(modelId string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(modelId)), "_", "-")
}

func (r *Registry) exactMatch(normalized string) (types.ModelCapabilities, bool) {
	for _, e := range r.entries {
		if e.key == normalized {
			return e.caps, true
		}
	}
	return types.ModelCapabilities{}, false
}

// substringMatch 取第一个 key 与 id 互为子串的条目
func (r *Registry) substringMatch(normalized string) (types.ModelCapabilities, bool) {
	if normalized == "" {
		return types.ModelCapabilities{}, false
	}
	for _, e := range r.entries {
		if strings.Contains(normalized, e.key) || strings.Contains(e.key, normalized) {
			return e.caps, true
		}
	}
	return types.ModelCapabilities{}, false
}

// closestMatch 编辑距离兜底，只接受很近的拼写差异（如版本分隔符不同）
func (r *Registry) closestMatch(normalized string) (types.ModelCapabilities, bool) {
	if normalized == "" {
		return types.ModelCapabilities{}, false
	}
	best := -1
	var bestCaps types.ModelCapabilities
	for _, e := range r.entries {
		d := levenshtein.DistanceForStrings([]rune(normalized), []rune(e.key), levenshtein.DefaultOptions)
		if d <= maxEditDistance && (best == -1 || d < best) {
			best = d
			bestCaps = e.caps
		}
	}
	return bestCaps, best != -1
}

// DefaultCapabilities 未知模型的保守默认档案，保留原始 id 以便下游排查
func DefaultCapabilities(modelId string) types.ModelCapabilities {
	return types.ModelCapabilities{
		ModelId:          modelId,
		DisplayName:      "Unknown Model",
		MinDurationSec:   2,
		MaxDurationSec:   5,
		MaxPromptChars:   1000,
		SupportsDialogue: types.DialogueSupportNone,
		PromptStyle:      types.PromptStylePlain,
	}
}

var builtinModels = []types.ModelCapabilities{
	{
		ModelId:          "kling-v1.6",
		DisplayName:      "Kling v1.6",
		MinDurationSec:   2,
		MaxDurationSec:   10,
		MaxPromptChars:   2500,
		SupportsDialogue: types.DialogueSupportFull,
		PromptStyle:      types.PromptStyleCinematicBlocks,
		StyleTokens:      []string{"cinematic lighting", "high detail", "film grain"},
		ForbiddenWords:   []string{"watermark", "logo"},
	},
	{
		ModelId:          "runway-gen3",
		DisplayName:      "Runway Gen-3 Alpha",
		MinDurationSec:   2,
		MaxDurationSec:   10,
		MaxPromptChars:   1000,
		SupportsDialogue: types.DialogueSupportLimited,
		PromptStyle:      types.PromptStyleRunwayFormat,
		StyleTokens:      []string{"live action", "cinematic"},
		ForbiddenWords:   []string{"watermark"},
	},
	{
		ModelId:          "luma-dream-machine",
		DisplayName:      "Luma Dream Machine",
		MinDurationSec:   2,
		MaxDurationSec:   5,
		MaxPromptChars:   1500,
		SupportsDialogue: types.DialogueSupportNone,
		PromptStyle:      types.PromptStylePlain,
		StyleTokens:      []string{"smooth motion"},
	},
	{
		ModelId:          "pika-2.2",
		DisplayName:      "Pika 2.2",
		MinDurationSec:   2,
		MaxDurationSec:   8,
		MaxPromptChars:   2000,
		SupportsDialogue: types.DialogueSupportLimited,
		PromptStyle:      types.PromptStyleCinematicBlocks,
		StyleTokens:      []string{"cinematic", "4k", "high detail"},
		ForbiddenWords:   []string{"watermark", "subtitles"},
	},
	{
		ModelId:          "minimax-hailuo",
		DisplayName:      "MiniMax Hailuo",
		MinDurationSec:   2,
		MaxDurationSec:   6,
		MaxPromptChars:   2000,
		SupportsDialogue: types.DialogueSupportNone,
		PromptStyle:      types.PromptStylePlain,
		StyleTokens:      []string{"high detail"},
	},
	{
		ModelId:          "veo-2",
		DisplayName:      "Google Veo 2",
		MinDurationSec:   2,
		MaxDurationSec:   8,
		MaxPromptChars:   3000,
		SupportsDialogue: types.DialogueSupportFull,
		PromptStyle:      types.PromptStyleCinematicBlocks,
		StyleTokens:      []string{"cinematic lighting", "photorealistic", "shallow depth of field"},
		ForbiddenWords:   []string{"watermark", "logo", "text overlay"},
	},
}
