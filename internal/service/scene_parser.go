package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"storyboard-ai/internal/planner"
	"storyboard-ai/internal/types"
	"storyboard-ai/log"
	apperrors "storyboard-ai/pkg/errors"
	"storyboard-ai/pkg/util"
)

// LlmSceneParser 用 LLM 做场景分解，解析失败时退回规则解析。
// 规则路径保证引擎在无 LLM、LLM 限流或返回坏 JSON 时仍可用。
type LlmSceneParser struct {
	completer types.ChatCompleter
	fallback  *RuleSceneParser
}

func NewLlmSceneParser(completer types.ChatCompleter, fallback *RuleSceneParser) *LlmSceneParser {
	return &LlmSceneParser{completer: completer, fallback: fallback}
}

func (p *LlmSceneParser) Parse(ctx context.Context, rawText string, language string) (*types.ParsedScenario, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, apperrors.ErrEmptyScenario
	}

	prompt := fmt.Sprintf(types.ScenarioParsePrompt, languageName(language), rawText)
	resp, err := p.completer.ChatCompletion(ctx, prompt)
	if err != nil {
		log.GetLogger().Warn("LLM scene parsing failed, falling back to rule-based parser", zap.Error(err))
		return p.fallbackParse(ctx, rawText, language, "llm_request_failed")
	}

	jsonStr := util.ExtractJsonFromText(resp)
	var parsed types.ParsedScenario
	if err = json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		log.GetLogger().Warn("LLM returned unparseable scene JSON, falling back to rule-based parser",
			zap.String("response", resp), zap.Error(err))
		return p.fallbackParse(ctx, rawText, language, "llm_response_invalid")
	}
	if len(parsed.Scenes) == 0 {
		return p.fallbackParse(ctx, rawText, language, "llm_returned_no_scenes")
	}

	normalizeScenes(parsed.Scenes)
	return &parsed, nil
}

func (p *LlmSceneParser) fallbackParse(ctx context.Context, rawText, language, reason string) (*types.ParsedScenario, error) {
	parsed, err := p.fallback.Parse(ctx, rawText, language)
	if err != nil {
		return nil, err
	}
	parsed.Warnings = append(parsed.Warnings, "scene parsing degraded to rule-based mode: "+reason)
	return parsed, nil
}

// 台词行形如 `Name: "line"` 或 `Name: line`，说话人不超过 30 个字符
var dialogueLinePattern = regexp.MustCompile(`^\s*([A-Z][A-Za-z0-9' ]{0,29}?)\s*[:：]\s*["“]?(.+?)["”]?\s*$`)

// 段落开头的 `Scene 3:` / `场景3：` 之类的编号头
var sceneHeaderPattern = regexp.MustCompile(`(?i)^(scene|场景)\s*\d+\s*[:：.]?\s*`)

var paragraphSplit = regexp.MustCompile(`\n\s*\n`)

// 情绪关键词 → 归一情绪值，按优先级排列，输出顺序稳定
var emotionKeywords = []struct {
	keyword string
	emotion string
}{
	{"tense", "tense"},
	{"fear", "tense"},
	{"afraid", "tense"},
	{"dramatic", "dramatic"},
	{"storm", "dramatic"},
	{"mysterious", "mysterious"},
	{"strange", "mysterious"},
	{"happy", "joyful"},
	{"joy", "joyful"},
	{"laugh", "joyful"},
	{"sad", "melancholy"},
	{"cry", "melancholy"},
	{"lonely", "melancholy"},
	{"calm", "calm"},
	{"peaceful", "calm"},
	{"quiet", "calm"},
}

// 规则解析的时长启发参数
const (
	ruleBaseSceneSec     = 4.0
	rulePerCharSec       = 0.04
	rulePerDialogueSec   = 2.5
	ruleMaxSceneSec      = 30.0
	ruleSummaryMaxChars  = 120
	ruleDefaultSceneText = "A short visual scene"
)

// RuleSceneParser 纯规则场景分解：空行分段，每段一个场景。
// 不如 LLM 聪明，但输出结构完整且完全确定。
type RuleSceneParser struct{}

func NewRuleSceneParser() *RuleSceneParser {
	return &RuleSceneParser{}
}

func (p *RuleSceneParser) Parse(_ context.Context, rawText string, _ string) (*types.ParsedScenario, error) {
	text := planner.StripTags(rawText)
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyScenario
	}

	// StripTags 会收敛空白，分段要用原始换行结构
	paragraphs := paragraphSplit.Split(strings.TrimSpace(planner.StripTagsKeepLayout(rawText)), -1)

	var scenes []types.SceneBreakdown
	for _, paragraph := range paragraphs {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		scene := p.parseParagraph(paragraph, len(scenes)+1)
		scenes = append(scenes, scene)
	}
	if len(scenes) == 0 {
		return nil, apperrors.ErrNoScenes
	}

	for i := range scenes {
		if i < len(scenes)-1 {
			scenes[i].TransitionToNext = "cut"
		}
	}

	return &types.ParsedScenario{
		Scenes:   scenes,
		Warnings: []string{"scenes derived from paragraph structure without semantic analysis"},
	}, nil
}

func (p *RuleSceneParser) parseParagraph(paragraph string, index int) types.SceneBreakdown {
	paragraph = sceneHeaderPattern.ReplaceAllString(strings.TrimSpace(paragraph), "")

	var dialogue []types.DialogueBlock
	var narrative []string
	for _, line := range strings.Split(paragraph, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := dialogueLinePattern.FindStringSubmatch(line); m != nil {
			dialogue = append(dialogue, types.DialogueBlock{
				Character: strings.TrimSpace(m[1]),
				Line:      strings.TrimSpace(m[2]),
			})
			continue
		}
		narrative = append(narrative, line)
	}

	visual := strings.Join(narrative, " ")
	if visual == "" {
		visual = ruleDefaultSceneText
	}

	sentences := splitSentences(visual)
	summary := util.TruncateUTF8(sentences[0], ruleSummaryMaxChars)
	var actions []string
	if len(sentences) > 1 {
		actions = sentences[1:]
	}

	var characters []string
	seen := map[string]struct{}{}
	for _, d := range dialogue {
		key := strings.ToLower(d.Character)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			characters = append(characters, d.Character)
		}
	}

	duration := ruleBaseSceneSec + rulePerCharSec*float64(len(visual)) + rulePerDialogueSec*float64(len(dialogue))
	if duration > ruleMaxSceneSec {
		duration = ruleMaxSceneSec
	}

	return types.SceneBreakdown{
		SceneId:             fmt.Sprintf("scene_%d", index),
		DurationEstimateSec: duration,
		Summary:             summary,
		Characters:          characters,
		DialogueBlocks:      dialogue,
		Actions:             actions,
		Emotions:            detectEmotions(paragraph),
		VisualStyle:         "cinematic",
	}
}

// normalizeScenes 补齐 LLM 输出里缺失或非法的字段
func normalizeScenes(scenes []types.SceneBreakdown) {
	for i := range scenes {
		if strings.TrimSpace(scenes[i].SceneId) == "" {
			scenes[i].SceneId = fmt.Sprintf("scene_%d", i+1)
		}
		if scenes[i].DurationEstimateSec <= 0 {
			scenes[i].DurationEstimateSec = ruleBaseSceneSec + rulePerDialogueSec*float64(len(scenes[i].DialogueBlocks))
		}
		if strings.TrimSpace(scenes[i].Summary) == "" {
			scenes[i].Summary = ruleDefaultSceneText
		}
	}
}

func detectEmotions(text string) []string {
	lower := strings.ToLower(text)
	var emotions []string
	seen := map[string]struct{}{}
	for _, entry := range emotionKeywords {
		if strings.Contains(lower, entry.keyword) {
			if _, ok := seen[entry.emotion]; !ok {
				seen[entry.emotion] = struct{}{}
				emotions = append(emotions, entry.emotion)
			}
		}
	}
	return emotions
}

func splitSentences(text string) []string {
	parts := strings.Split(text, ". ")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimRight(strings.TrimSpace(part), ".")
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "", "en":
		return "English"
	case "zh", "zh-cn":
		return "Simplified Chinese"
	case "ja":
		return "Japanese"
	default:
		return code
	}
}
