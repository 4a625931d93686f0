package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyboard-ai/internal/registry"
	"storyboard-ai/internal/types"
	"storyboard-ai/log"
	"storyboard-ai/pkg/util"
)

const (
	// 压缩对白保留的最大字符数
	compressedDialogueChars = 100
	// 附加的风格 token 上限
	maxAppendedStyleTokens = 3

	WarnPromptTruncated = "prompt_truncated_to_fit_model_limit"
)

// 镜头运动的固定措辞表
var cameraPhrases = map[string]string{
	types.CameraCloseUp:  "Close-up shot of the subject",
	types.CameraWide:     "Wide establishing shot",
	types.CameraAerial:   "Aerial drone view",
	types.CameraTracking: "The camera tracks the subject",
	types.CameraPanLeft:  "The camera pans left",
	types.CameraPanRight: "The camera pans right",
	types.CameraZoomIn:   "The camera slowly zooms in",
	types.CameraZoomOut:  "The camera slowly zooms out",
	types.CameraDolly:    "Smooth dolly movement",
	types.CameraHandheld: "Handheld camera movement",
	types.CameraPov:      "First-person point of view",
}

var motionPhrases = map[string]string{
	types.MotionStatic:   "minimal motion",
	types.MotionSlow:     "slow, deliberate motion",
	types.MotionFast:     "fast-paced motion",
	types.MotionDynamic:  "dynamic, energetic motion",
	types.MotionFloating: "weightless floating motion",
}

var lightingPhrases = map[string]string{
	types.LightingGoldenHour:  "bathed in golden hour light",
	types.LightingLowKey:      "low-key dramatic lighting",
	types.LightingHighKey:     "bright high-key lighting",
	types.LightingNeon:        "neon-lit surroundings",
	types.LightingCandlelight: "warm candlelight",
	types.LightingMoonlight:   "cold moonlight",
	types.LightingOvercast:    "soft overcast light",
	types.LightingHarsh:       "harsh direct light",
}

var moodKeywords = []string{"atmospheric", "dramatic", "serene", "vibrant", "moody"}

// CompiledPrompt 编译结果
type CompiledPrompt struct {
	FinalPrompt  string
	WasTruncated bool
	Warnings     []string
}

// PromptCompiler 按模型风格规则产出最终提示词。
// improver 可为 nil；它是整条流水线里唯一可能挂起的调用，
// 任何失败都退回确定性的规则路径，绝不外传。
type PromptCompiler struct {
	registry       *registry.Registry
	improver       types.TextImprover
	improveTimeout time.Duration
}

func NewPromptCompiler(reg *registry.Registry, improver types.TextImprover, improveTimeout time.Duration) *PromptCompiler {
	if improveTimeout <= 0 {
		improveTimeout = 15 * time.Second
	}
	return &PromptCompiler{
		registry:       reg,
		improver:       improver,
		improveTimeout: improveTimeout,
	}
}

// BuildEnhancedPrompt 本地确定性增强：按固定顺序追加灯光、镜头、
// 运动、风格、情绪、天气、特效子句，只追加非默认且有值的设置。
func BuildEnhancedPrompt(basePrompt string, s types.SegmentSettings) string {
	clauses := []string{strings.TrimRight(basePrompt, ". ")}

	if phrase, ok := lightingPhrases[s.Lighting]; ok {
		clauses = append(clauses, phrase)
	}
	if phrase, ok := cameraPhrases[s.Camera]; ok {
		clauses = append(clauses, phrase)
	}
	if phrase, ok := motionPhrases[s.Motion]; ok {
		clauses = append(clauses, phrase)
	}
	if s.StylePreset != "" {
		clauses = append(clauses, fmt.Sprintf("in %s style", s.StylePreset))
	}
	if s.Emotion != "" {
		clauses = append(clauses, fmt.Sprintf("with a %s atmosphere", s.Emotion))
	}
	if s.Weather != "" {
		clauses = append(clauses, fmt.Sprintf("under %s weather", s.Weather))
	}
	if len(s.Effects) > 0 {
		clauses = append(clauses, "with "+strings.Join(s.Effects, " and ")+" effect")
	}

	return strings.Join(clauses, ". ") + "."
}

// CompileFinalPrompt 产出片段的最终提示词：可选润色 → 模型风格整形 →
// 对白按支持层级嵌入 → 违禁词清除 → 空白收敛 → 字符预算裁剪。
// 场景部分和场景加对白的整体各自独立裁剪，可能出现两条裁剪警告。
func (c *PromptCompiler) CompileFinalPrompt(ctx context.Context, modelId, scenePrompt string, dialogue []types.DialogueBlock, settings types.SegmentSettings) CompiledPrompt {
	caps := c.registry.Get(modelId)
	result := CompiledPrompt{}

	text := c.improveText(ctx, scenePrompt, caps, settings)
	text = shapeForModel(text, caps, settings)
	text = removeForbiddenWords(text, caps.ForbiddenWords)
	text = collapseText(text)

	if len(text) > caps.MaxPromptChars {
		text = truncate(text, caps.MaxPromptChars)
		result.WasTruncated = true
		result.Warnings = append(result.Warnings, WarnPromptTruncated)
	}

	if block := formatDialogue(dialogue, caps.SupportsDialogue); block != "" {
		final := text + block
		final = removeForbiddenWords(final, caps.ForbiddenWords)
		final = collapseText(final)
		if len(final) > caps.MaxPromptChars {
			final = truncate(final, caps.MaxPromptChars)
			result.WasTruncated = true
			result.Warnings = append(result.Warnings, WarnPromptTruncated)
		}
		text = final
	}

	result.FinalPrompt = text
	return result
}

// improveText 调用外部润色协作方，超时、出错或未配置一律退回原文
func (c *PromptCompiler) improveText(ctx context.Context, text string, caps types.ModelCapabilities, settings types.SegmentSettings) string {
	if c.improver == nil || !settings.EnhanceEnabled {
		return text
	}

	improveCtx, cancel := context.WithTimeout(ctx, c.improveTimeout)
	defer cancel()

	improved, err := c.improver.Improve(improveCtx, text, string(caps.PromptStyle), settings.Emotion, "")
	if err != nil || strings.TrimSpace(improved) == "" {
		log.GetLogger().Warn("prompt improvement failed, falling back to rule-based enhancement",
			zap.String("modelId", caps.ModelId), zap.Error(err))
		return text
	}
	return improved
}

// shapeForModel 模型偏好的提示词格式整形
func shapeForModel(text string, caps types.ModelCapabilities, settings types.SegmentSettings) string {
	switch caps.PromptStyle {
	case types.PromptStyleCinematicBlocks:
		return shapeCinematicBlocks(text, caps, settings)
	case types.PromptStyleRunwayFormat:
		return shapeRunwayFormat(text, settings)
	default:
		return shapePlain(text)
	}
}

func shapeCinematicBlocks(text string, caps types.ModelCapabilities, settings types.SegmentSettings) string {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "cinematic") {
		text = "Cinematic scene. " + text
	}
	if phrase, ok := cameraPhrases[settings.Camera]; ok && !strings.Contains(strings.ToLower(text), strings.ToLower(phrase)) {
		text = strings.TrimRight(text, ". ") + ". " + phrase + "."
	}

	var missing []string
	lower = strings.ToLower(text)
	for _, token := range caps.StyleTokens {
		if len(missing) == maxAppendedStyleTokens {
			break
		}
		if !strings.Contains(lower, strings.ToLower(token)) {
			missing = append(missing, token)
		}
	}
	if len(missing) > 0 {
		text = strings.TrimRight(text, ". ") + ". " + strings.Join(missing, ", ") + "."
	}
	return text
}

func shapeRunwayFormat(text string, settings types.SegmentSettings) string {
	if !strings.Contains(strings.ToLower(text), "shot") {
		text = "Wide shot. " + text
	}
	motion := motionPhrases[settings.Motion]
	if motion == "" {
		motion = "smooth camera motion"
	}
	return strings.TrimRight(text, ". ") + ". " + capitalize(motion) + "."
}

// shapePlain 归一开头冠词的大小写，并在缺少情绪词时补一个
func shapePlain(text string) string {
	words := strings.Fields(text)
	if len(words) > 0 {
		switch strings.ToLower(words[0]) {
		case "the", "a", "an":
			words[0] = capitalize(strings.ToLower(words[0]))
			text = strings.Join(words, " ")
		}
	}

	lower := strings.ToLower(text)
	for _, keyword := range moodKeywords {
		if strings.Contains(lower, keyword) {
			return text
		}
	}
	return strings.TrimRight(text, ". ") + ". Atmospheric."
}

// formatDialogue 对白按模型支持层级渲染
func formatDialogue(dialogue []types.DialogueBlock, support types.DialogueSupport) string {
	if len(dialogue) == 0 {
		return ""
	}

	switch support {
	case types.DialogueSupportFull:
		var b strings.Builder
		b.WriteString("\n\nDialogue:\n")
		for _, d := range dialogue {
			character := strings.TrimSpace(d.Character)
			if character == "" {
				character = "Character"
			}
			b.WriteString(fmt.Sprintf("%s: %q\n", character, d.Line))
		}
		return strings.TrimRight(b.String(), "\n")

	case types.DialogueSupportLimited:
		lines := make([]string, 0, len(dialogue))
		for _, d := range dialogue {
			lines = append(lines, d.Line)
		}
		content := strings.Join(lines, " / ")
		if len(content) > compressedDialogueChars {
			content = util.TruncateUTF8(content, compressedDialogueChars) + "…"
		}
		return fmt.Sprintf(" Dialogue summary: %s.", content)

	default:
		// 不保留任何台词原文，只给视觉线索
		speakers := map[string]struct{}{}
		for _, d := range dialogue {
			speakers[strings.ToLower(strings.TrimSpace(d.Character))] = struct{}{}
		}
		if len(speakers) > 1 {
			return fmt.Sprintf(" %d characters converse, conveyed through expressions and gestures.", len(speakers))
		}
		return " A character speaks, conveyed through expressions and gestures."
	}
}

func removeForbiddenWords(text string, words []string) string {
	for _, word := range words {
		if strings.TrimSpace(word) == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		text = re.ReplaceAllString(text, "")
	}
	return text
}

var (
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
	periodRuns = regexp.MustCompile(`\.{2,}`)
	spaceDot   = regexp.MustCompile(` +\.`)
)

// collapseText 收敛空白和重复句号，保留对白块的换行
func collapseText(text string) string {
	text = spaceRuns.ReplaceAllString(text, " ")
	text = periodRuns.ReplaceAllString(text, ".")
	text = spaceDot.ReplaceAllString(text, ".")
	return strings.TrimSpace(text)
}

// truncate 裁到预算内并以 "..." 结尾。多字节字符不从中间切开，
// 必要时回退到字符边界，结果长度不超过 limit。
func truncate(text string, limit int) string {
	if limit <= 3 {
		return strings.Repeat(".", limit)
	}
	return util.TruncateUTF8(text, limit-3) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
