package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyboard-ai/internal/types"
)

func testCaps() types.ModelCapabilities {
	return types.ModelCapabilities{
		ModelId:          "kling-v1.6",
		MinDurationSec:   2,
		MaxDurationSec:   5,
		MaxPromptChars:   2500,
		SupportsDialogue: types.DialogueSupportFull,
		PromptStyle:      types.PromptStyleCinematicBlocks,
	}
}

func testScene(id string, duration float64) types.SceneBreakdown {
	return types.SceneBreakdown{
		SceneId:             id,
		DurationEstimateSec: duration,
		Summary:             "A knight rides through a misty forest",
		Environment:         "ancient forest at dawn",
		Actions:             []string{"He spurs the horse", "Branches whip past", "He reaches a clearing"},
		Emotions:            []string{"Tense"},
		VisualStyle:         "cinematic",
	}
}

func TestPlanScene_SegmentCountCeiling(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())

	// 12s / 5s 上限 → 3 个片段
	segs := p.PlanScene(testScene("scene_1", 12), testCaps(), nil, types.PlanOptions{}, 1)
	assert.Len(t, segs, 3)

	// 恰好整除不多给
	segs = p.PlanScene(testScene("scene_1", 10), testCaps(), nil, types.PlanOptions{}, 1)
	assert.Len(t, segs, 2)

	// 零时长场景也至少一个片段
	segs = p.PlanScene(testScene("scene_1", 0), testCaps(), nil, types.PlanOptions{}, 1)
	assert.Len(t, segs, 1)
}

func TestPlanScene_DurationWithinModelBounds(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	caps := testCaps()

	segs := p.PlanScene(testScene("scene_1", 23), caps, nil, types.PlanOptions{}, 1)
	for _, seg := range segs {
		assert.GreaterOrEqual(t, seg.DurationSec, caps.MinDurationSec)
		assert.LessOrEqual(t, seg.DurationSec, caps.MaxDurationSec)
	}
}

func TestPlanScene_NumberingAndIds(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())

	segs := p.PlanScene(testScene("scene_2", 12), testCaps(), nil, types.PlanOptions{}, 4)
	assert.Equal(t, 4, segs[0].SegmentNumber)
	assert.Equal(t, "scene_2-seg-04", segs[0].SegmentId)
	assert.Equal(t, 5, segs[1].SegmentNumber)
	assert.Equal(t, 6, segs[2].SegmentNumber)
	for _, seg := range segs {
		assert.Equal(t, "scene_2", seg.SceneId)
		assert.Equal(t, types.SegmentStatusPending, seg.Status)
	}
}

func TestPlanScene_DialogueDistributionNoLoss(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	scene := testScene("scene_1", 12)
	scene.DialogueBlocks = []types.DialogueBlock{
		{Character: "Knight", Line: "Who goes there?"},
		{Character: "Stranger", Line: "A friend."},
		{Character: "Knight", Line: "Prove it."},
		{Character: "Stranger", Line: "Lower your sword first."},
		{Character: "Knight", Line: "Very well."},
	}

	segs := p.PlanScene(scene, testCaps(), nil, types.PlanOptions{}, 1)

	var total int
	for _, seg := range segs {
		total += len(seg.Dialogue)
	}
	assert.Equal(t, len(scene.DialogueBlocks), total)

	// 顺序保持：首尾台词落在首尾覆盖的片段里
	assert.Equal(t, "Who goes there?", segs[0].Dialogue[0].Line)
}

func TestPlanScene_DialogueMode(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	scene := testScene("scene_1", 4)
	scene.DialogueBlocks = []types.DialogueBlock{{Character: "A", Line: "Hello"}}

	caps := testCaps()
	segs := p.PlanScene(scene, caps, nil, types.PlanOptions{}, 1)
	assert.Equal(t, types.DialogueModeFull, segs[0].DialogueHandlingMode)

	caps.SupportsDialogue = types.DialogueSupportLimited
	segs = p.PlanScene(scene, caps, nil, types.PlanOptions{}, 1)
	assert.Equal(t, types.DialogueModeCompressed, segs[0].DialogueHandlingMode)

	caps.SupportsDialogue = types.DialogueSupportNone
	segs = p.PlanScene(scene, caps, nil, types.PlanOptions{}, 1)
	assert.Equal(t, types.DialogueModeVisualOnly, segs[0].DialogueHandlingMode)

	// 无对白时始终 none
	scene.DialogueBlocks = nil
	segs = p.PlanScene(scene, caps, nil, types.PlanOptions{}, 1)
	assert.Equal(t, types.DialogueModeNone, segs[0].DialogueHandlingMode)
}

func TestPlanScene_TagsOverrideDefaults(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	tags := []types.InlineTag{
		{Type: "camera", Value: "aerial"},
		{Type: "pace", Value: "slow"},
	}

	segs := p.PlanScene(testScene("scene_1", 4), testCaps(), tags, types.PlanOptions{}, 1)
	assert.Equal(t, types.CameraAerial, segs[0].Camera)
	assert.Equal(t, types.MotionSlow, segs[0].Motion)
}

func TestPlanScene_SeedsDeterministic(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	scene := testScene("scene_1", 12)

	first := p.PlanScene(scene, testCaps(), nil, types.PlanOptions{}, 1)
	second := p.PlanScene(scene, testCaps(), nil, types.PlanOptions{}, 1)
	for i := range first {
		assert.Equal(t, first[i].Seed, second[i].Seed)
	}

	// 请求了种子时逐片段递增
	seeded := p.PlanScene(scene, testCaps(), nil, types.PlanOptions{Seed: 42}, 1)
	assert.Equal(t, int64(43), seeded[0].Seed)
	assert.Equal(t, int64(44), seeded[1].Seed)
}

func TestPlanScene_FrameChaining(t *testing.T) {
	p := NewSegmentPlanner(NewMapper())
	opts := types.PlanOptions{EnableFrameChaining: true}

	segs := p.PlanScene(testScene("scene_1", 12), testCaps(), nil, opts, 1)
	assert.Equal(t, "none", segs[0].FirstFrameMode)
	assert.Equal(t, "chain_previous", segs[1].FirstFrameMode)
	assert.Equal(t, "chain_previous", segs[2].FirstFrameMode)
}

func TestAssignTagsToScenes(t *testing.T) {
	scenes := []types.SceneBreakdown{
		testScene("scene_1", 8),
		testScene("scene_2", 8),
	}

	// 偏移很小的标签归第一幕，很大的归最后一幕
	tags := []types.InlineTag{
		{Type: "camera", Value: "wide", Offset: 5},
		{Type: "mood", Value: "tense", Offset: 100000},
	}

	assigned := AssignTagsToScenes(scenes, tags)
	assert.Len(t, assigned, 2)
	assert.Equal(t, "camera", assigned[0][0].Type)
	assert.Equal(t, "mood", assigned[1][0].Type)
}

func TestChunkCoversAllItemsInOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	var got []int
	for i := 0; i < 3; i++ {
		got = append(got, chunk(items, i, 3)...)
	}
	assert.Equal(t, items, got)

	assert.Nil(t, chunk([]int{}, 0, 3))
	assert.Nil(t, chunk(items, 5, 3))
}
