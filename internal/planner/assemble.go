package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"storyboard-ai/internal/registry"
	"storyboard-ai/internal/types"
	apperrors "storyboard-ai/pkg/errors"
)

// 片段数超过该值时下游执行代价过高，给出警告
const defaultSegmentsWarnThreshold = 100

// 目标时长偏差超过半秒才算不一致
const durationMismatchEpsilon = 0.5

// Planner 规划流水线入口，持有全部子组件。
// 除提示词润色外整条流水线是同步纯计算；各场景互不读取对方结果，
// 可以并行规划而不改变输出。
type Planner struct {
	registry        *registry.Registry
	segments        *SegmentPlanner
	compiler        *PromptCompiler
	maxSegmentsWarn int
}

func New(reg *registry.Registry, improver types.TextImprover, improveTimeout time.Duration) *Planner {
	mapper := NewMapper()
	return &Planner{
		registry:        reg,
		segments:        NewSegmentPlanner(mapper),
		compiler:        NewPromptCompiler(reg, improver, improveTimeout),
		maxSegmentsWarn: defaultSegmentsWarnThreshold,
	}
}

// SetMaxSegmentsWarn 覆盖片段数告警阈值，非正值忽略
func (p *Planner) SetMaxSegmentsWarn(n int) {
	if n > 0 {
		p.maxSegmentsWarn = n
	}
}

// PlanTimeline 把场景分解和内联标签规划成时间线与执行清单。
// 结构合法的输入永不失败；所有降级都进 warnings。
// 空场景列表或空模型 id 属于外层校验遗漏，按入参错误上抛。
func (p *Planner) PlanTimeline(ctx context.Context, scenes []types.SceneBreakdown, tags []types.InlineTag, modelId string, opts types.PlanOptions) (*types.PlanResult, error) {
	if modelId == "" {
		return nil, apperrors.ErrEmptyModelId
	}
	if len(scenes) == 0 {
		return nil, apperrors.ErrNoScenes
	}

	var warnings []string
	caps, known := p.registry.Lookup(modelId)
	if !known {
		warnings = append(warnings, fmt.Sprintf("unknown model id %q, planning with conservative defaults", modelId))
	}

	sceneTags := AssignTagsToScenes(scenes, tags)

	// 预先算好每个场景的片段数，让全局编号与并行规划无关
	startNumbers := make([]int, len(scenes))
	next := 1
	for i, scene := range scenes {
		startNumbers[i] = next
		count := int(math.Ceil(scene.DurationEstimateSec / caps.MaxDurationSec))
		if count < 1 {
			count = 1
		}
		next += count
	}

	planned := make([][]types.TimelineSegment, len(scenes))
	sceneWarnings := make([][]string, len(scenes))
	g, gctx := errgroup.WithContext(ctx)
	for i := range scenes {
		g.Go(func() error {
			segs := p.segments.PlanScene(scenes[i], caps, sceneTags[i], opts, startNumbers[i])
			for j := range segs {
				enhanced := BuildEnhancedPrompt(segs[j].Prompt, segs[j].SegmentSettings)
				compiled := p.compiler.CompileFinalPrompt(gctx, modelId, enhanced, segs[j].Dialogue, segs[j].SegmentSettings)
				segs[j].FinalPrompt = compiled.FinalPrompt
				for _, w := range compiled.Warnings {
					sceneWarnings[i] = append(sceneWarnings[i], fmt.Sprintf("segment %s: %s", segs[j].SegmentId, w))
				}
			}
			planned[i] = segs
			return nil
		})
	}
	// 规划闭包不返回错误，Wait 只用于同步
	_ = g.Wait()

	var segments []types.TimelineSegment
	for i := range planned {
		segments = append(segments, planned[i]...)
		warnings = append(warnings, sceneWarnings[i]...)
	}

	timeline := AssembleTimeline(segments, caps.ModelId, opts, p.maxSegmentsWarn)
	warnings = append(warnings, timeline.Warnings...)
	timeline.Warnings = warnings

	plan := BuildPlan(timeline)

	return &types.PlanResult{
		Timeline: timeline,
		Plan:     plan,
		Warnings: warnings,
	}, nil
}

// AssembleTimeline 聚合有序片段。总时长恒等于片段时长之和；
// 与请求目标的偏差只上报，不修正。返回后片段视为不可变。
func AssembleTimeline(segments []types.TimelineSegment, modelId string, opts types.PlanOptions, maxSegmentsWarn int) *types.GeneratedTimeline {
	total := 0.0
	for _, seg := range segments {
		total += seg.DurationSec
	}
	if maxSegmentsWarn <= 0 {
		maxSegmentsWarn = defaultSegmentsWarnThreshold
	}

	var warnings []string
	if len(segments) > maxSegmentsWarn {
		warnings = append(warnings, fmt.Sprintf("plan contains %d segments, downstream generation will be expensive", len(segments)))
	}
	if opts.TargetDurationSec > 0 && math.Abs(total-opts.TargetDurationSec) > durationMismatchEpsilon {
		warnings = append(warnings, fmt.Sprintf("planned duration %.1fs differs from requested target %.1fs", total, opts.TargetDurationSec))
	}

	return &types.GeneratedTimeline{
		TimelineId:           uuid.New().String(),
		ModelId:              modelId,
		Segments:             segments,
		TotalDurationSec:     total,
		Warnings:             warnings,
		CharacterConsistency: opts.CharacterConsistency,
		// 入参没有独立的灯光开关，灯光锁定跟随风格锁定
		LightingConsistency: opts.StyleConsistency,
		StyleConsistency:    opts.StyleConsistency,
	}
}

// BuildPlan 由时间线导出执行清单，进度从零起步
func BuildPlan(timeline *types.GeneratedTimeline) *types.VideoGenerationPlan {
	return &types.VideoGenerationPlan{
		PlanId:     uuid.New().String(),
		TimelineId: timeline.TimelineId,
		ModelId:    timeline.ModelId,
		ExecutionOrder: lo.Map(timeline.Segments, func(seg types.TimelineSegment, _ int) string {
			return seg.SegmentId
		}),
		Progress: types.PlanProgress{
			Completed: 0,
			Total:     len(timeline.Segments),
		},
	}
}
