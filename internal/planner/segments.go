package planner

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"storyboard-ai/internal/types"
)

// 内容启发时长的基准与加成
const (
	baseSegmentSec     = 3.0
	dialogueBonusSec   = 2.0
	slowPaceFactor     = 1.5
	fastPaceFactor     = 0.7
	promptLenStepChars = 80
)

// SegmentPlanner 把单个场景切成受模型时长约束的时间线片段
type SegmentPlanner struct {
	mapper *Mapper
}

func NewSegmentPlanner(mapper *Mapper) *SegmentPlanner {
	return &SegmentPlanner{mapper: mapper}
}

// PlanScene 对一个场景产出一个或多个片段。
// startNumber 是全局片段编号起点（从 1 开始计）。
// 对结构完整的场景永不失败：零时长场景也会产出一个最小时长片段。
func (p *SegmentPlanner) PlanScene(scene types.SceneBreakdown, caps types.ModelCapabilities, tags []types.InlineTag, opts types.PlanOptions, startNumber int) []types.TimelineSegment {
	segmentCount := int(math.Ceil(scene.DurationEstimateSec / caps.MaxDurationSec))
	if segmentCount < 1 {
		segmentCount = 1
	}

	// 纯时间切片的初值，之后被内容启发时长取代
	baseDuration := math.Min(caps.MaxDurationSec, scene.DurationEstimateSec/float64(segmentCount))

	segments := make([]types.TimelineSegment, 0, segmentCount)
	for i := 0; i < segmentCount; i++ {
		dialogue := chunk(scene.DialogueBlocks, i, segmentCount)
		actions := chunk(scene.Actions, i, segmentCount)
		// 标签按列表下标均分到子片段，不看子片段内部偏移；这是
		// 有意的简化，标签偏移只用于场景级归属
		segTags := chunk(tags, i, segmentCount)

		number := startNumber + i
		seg := p.buildSegment(scene, caps, segTags, opts, segmentBuildInput{
			number:       number,
			indexInScene: i,
			sceneSegs:    segmentCount,
			dialogue:     dialogue,
			actions:      actions,
			baseDuration: baseDuration,
		})
		segments = append(segments, seg)
	}
	return segments
}

type segmentBuildInput struct {
	number       int
	indexInScene int
	sceneSegs    int
	dialogue     []types.DialogueBlock
	actions      []string
	baseDuration float64
}

func (p *SegmentPlanner) buildSegment(scene types.SceneBreakdown, caps types.ModelCapabilities, segTags []types.InlineTag, opts types.PlanOptions, in segmentBuildInput) types.TimelineSegment {
	prompt := draftPrompt(scene, in.actions)

	defaults := p.segmentDefaults(scene, caps, opts, in)
	defaults.Prompt = prompt
	defaults.DurationSec = in.baseDuration

	inferred := p.mapper.InferFromPrompt(prompt)
	tagged := p.mapper.MapTags(segTags)

	settings := MergeSettings(defaults, inferred, tagged)
	settings.InlineTags = segTags
	settings.DurationSec = contentDuration(len(prompt), len(in.dialogue) > 0, tagged.PaceHint, caps)

	return types.TimelineSegment{
		SegmentSettings:      settings,
		SegmentId:            fmt.Sprintf("%s-seg-%02d", scene.SceneId, in.number),
		SegmentNumber:        in.number,
		SceneId:              scene.SceneId,
		Dialogue:             in.dialogue,
		Actions:              in.actions,
		DialogueHandlingMode: dialogueMode(caps.SupportsDialogue, len(in.dialogue) > 0),
		Status:               types.SegmentStatusPending,
	}
}

// segmentDefaults 逐片段计算的默认层，优先级最低
func (p *SegmentPlanner) segmentDefaults(scene types.SceneBreakdown, caps types.ModelCapabilities, opts types.PlanOptions, in segmentBuildInput) types.SegmentSettings {
	camera := types.CameraStatic
	if len(scene.CameraSuggestions) > 0 {
		if mapped, ok := p.mapper.tables.Camera[strings.ToLower(scene.CameraSuggestions[in.indexInScene%len(scene.CameraSuggestions)])]; ok {
			camera = mapped
		}
	}

	// 场景最后一个片段沿用场景的转场提示，缺省 fade；其余片段 cut
	transition := types.TransitionCut
	if in.indexInScene == in.sceneSegs-1 {
		transition = types.TransitionFade
		if mapped, ok := p.mapper.tables.Transition[strings.ToLower(scene.TransitionToNext)]; ok {
			transition = mapped
		}
	}

	style := types.StyleCinematic
	if mapped, ok := p.mapper.tables.Style[strings.ToLower(scene.VisualStyle)]; ok {
		style = mapped
	}

	lighting := ""
	if mapped, ok := p.mapper.tables.Lighting[strings.ToLower(scene.Lighting)]; ok {
		lighting = mapped
	}

	emotion := ""
	if len(scene.Emotions) > 0 {
		emotion = strings.ToLower(scene.Emotions[0])
	}

	firstFrameMode := "none"
	if opts.EnableFrameChaining && in.number > 1 {
		firstFrameMode = "chain_previous"
	}

	return types.SegmentSettings{
		Motion:         types.MotionSmooth,
		Camera:         camera,
		Transition:     transition,
		StylePreset:    style,
		Lighting:       lighting,
		Emotion:        emotion,
		EnhanceEnabled: true,
		Seed:           segmentSeed(opts.Seed, scene.SceneId, in.number),
		ModelId:        caps.ModelId,
		FirstFrameMode: firstFrameMode,
	}
}

// draftPrompt 子片段的草稿提示词：场景概要加分到的动作
func draftPrompt(scene types.SceneBreakdown, actions []string) string {
	parts := []string{strings.TrimRight(scene.Summary, ". ")}
	if scene.Environment != "" {
		parts = append(parts, "Setting: "+strings.TrimRight(scene.Environment, ". "))
	}
	for _, action := range actions {
		parts = append(parts, strings.TrimRight(action, ". "))
	}
	return strings.Join(parts, ". ") + "."
}

// contentDuration 内容启发时长：基准 3-5 秒按提示词长度递增，
// 有对白 +2 秒，pace 标签减速 ×1.5 / 加速 ×0.7，最后按模型上下限收口。
// 该值取代纯时间切片的均分时长。
func contentDuration(promptLen int, hasDialogue bool, paceHint string, caps types.ModelCapabilities) float64 {
	d := baseSegmentSec
	if promptLen > promptLenStepChars {
		d++
	}
	if promptLen > 2*promptLenStepChars {
		d++
	}
	if hasDialogue {
		d += dialogueBonusSec
	}
	switch paceHint {
	case "slow", "very-slow":
		d *= slowPaceFactor
	case "fast", "very-fast":
		d *= fastPaceFactor
	}

	minDuration := caps.MinDurationSec
	if minDuration <= 0 {
		minDuration = 2
	}
	if d < minDuration {
		return minDuration
	}
	if d > caps.MaxDurationSec {
		return caps.MaxDurationSec
	}
	return d
}

// dialogueMode 纯函数：模型对白层级 × 片段是否有对白
func dialogueMode(support types.DialogueSupport, hasDialogue bool) types.DialogueHandlingMode {
	if !hasDialogue {
		return types.DialogueModeNone
	}
	switch support {
	case types.DialogueSupportFull:
		return types.DialogueModeFull
	case types.DialogueSupportLimited:
		return types.DialogueModeCompressed
	default:
		return types.DialogueModeVisualOnly
	}
}

// chunk 把列表按上取整均分成 count 份取第 i 份，顺序保持、无重叠无缺口，
// 最后一份吸收余数
func chunk[T any](items []T, i, count int) []T {
	n := len(items)
	if n == 0 || count <= 0 {
		return nil
	}
	k := (n + count - 1) / count
	start := i * k
	if start >= n {
		return nil
	}
	end := start + k
	if end > n {
		end = n
	}
	return items[start:end]
}

// AssignTagsToScenes 按标签偏移归属场景。场景文本跨度用逐场景累加的
// 近似长度推算，不是解析器返回的精确 span；边界附近的标签可能被归错，
// 这是已记录的近似行为，不做静默修正。
func AssignTagsToScenes(scenes []types.SceneBreakdown, tags []types.InlineTag) [][]types.InlineTag {
	assigned := make([][]types.InlineTag, len(scenes))
	if len(scenes) == 0 {
		return assigned
	}

	bounds := make([]int, len(scenes))
	cursor := 0
	for i, scene := range scenes {
		cursor += approxSceneTextLen(scene)
		bounds[i] = cursor
	}

	for _, tag := range tags {
		idx := len(scenes) - 1
		for i, bound := range bounds {
			if tag.Offset < bound {
				idx = i
				break
			}
		}
		assigned[idx] = append(assigned[idx], tag)
	}
	return assigned
}

func approxSceneTextLen(scene types.SceneBreakdown) int {
	total := len(scene.Summary) + 20
	for _, d := range scene.DialogueBlocks {
		total += len(d.Character) + len(d.Line) + 4
	}
	for _, a := range scene.Actions {
		total += len(a) + 2
	}
	return total
}

func segmentSeed(requested int64, sceneId string, number int) int64 {
	if requested != 0 {
		return requested + int64(number)
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s#%d", sceneId, number)))
	return int64(h.Sum64() & math.MaxInt64)
}
