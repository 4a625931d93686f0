package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyboard-ai/internal/types"
)

func tag(tagType, value string) types.InlineTag {
	return types.InlineTag{Type: tagType, Value: value}
}

func TestMapTags_ClosedVocabulary(t *testing.T) {
	m := NewMapper()

	patch := m.MapTags([]types.InlineTag{
		tag("camera", "drone"),
		tag("style", "noir"),
		tag("lighting", "neon"),
		tag("transition", "match-cut"),
		tag("weather", "fog"),
	})

	assert.Equal(t, types.CameraAerial, patch.Camera)
	assert.Equal(t, types.StyleNoir, patch.Style)
	assert.Equal(t, types.LightingNeon, patch.Lighting)
	assert.Equal(t, types.TransitionMatchCut, patch.Transition)
	assert.Equal(t, "fog", patch.Weather)
}

func TestMapTags_LastTagWins(t *testing.T) {
	m := NewMapper()

	patch := m.MapTags([]types.InlineTag{
		tag("camera", "wide"),
		tag("camera", "close-up"),
	})
	assert.Equal(t, types.CameraCloseUp, patch.Camera)
}

func TestMapTags_MoodSetsMotionOnlyAsFallback(t *testing.T) {
	m := NewMapper()

	// mood 单独出现：写 emotion 并兜底 motion
	patch := m.MapTags([]types.InlineTag{tag("mood", "dramatic")})
	assert.Equal(t, "dramatic", patch.Emotion)
	assert.Equal(t, types.MotionDynamic, patch.Motion)

	// 显式 motion 在前：mood 不得覆盖
	patch = m.MapTags([]types.InlineTag{
		tag("motion", "slow"),
		tag("mood", "dramatic"),
	})
	assert.Equal(t, types.MotionSlow, patch.Motion)
	assert.Equal(t, "dramatic", patch.Emotion)

	// pace 同样算显式 motion
	patch = m.MapTags([]types.InlineTag{
		tag("pace", "very-slow"),
		tag("mood", "tense"),
	})
	assert.Equal(t, types.MotionSlow, patch.Motion)
	assert.Equal(t, "very-slow", patch.PaceHint)
}

func TestMapTags_UnrecognizedValueOnlyInMetadata(t *testing.T) {
	m := NewMapper()

	patch := m.MapTags([]types.InlineTag{tag("camera", "fisheye-900")})
	assert.Empty(t, patch.Camera)
	assert.Equal(t, "fisheye-900", patch.Metadata["camera"])
}

func TestMapTags_NegativeAndFxAccumulate(t *testing.T) {
	m := NewMapper()

	patch := m.MapTags([]types.InlineTag{
		tag("negative", "blurry"),
		tag("negative", "low quality"),
		tag("fx", "film-grain"),
		tag("fx", "bokeh"),
	})
	assert.Equal(t, []string{"blurry", "low quality"}, patch.NegativeFragments)
	assert.Equal(t, []string{"film-grain", "bokeh"}, patch.Effects)
}

func TestInferFromPrompt(t *testing.T) {
	m := NewMapper()

	patch := m.InferFromPrompt("A man is running through a dark alley at night")
	assert.Equal(t, types.MotionFast, patch.Motion)
	assert.Equal(t, types.LightingLowKey, patch.Lighting)

	patch = m.InferFromPrompt("A calm wide vista of mountains at sunset")
	assert.Equal(t, types.MotionSlow, patch.Motion)
	assert.Equal(t, types.CameraWide, patch.Camera)
	assert.Equal(t, types.LightingGoldenHour, patch.Lighting)

	patch = m.InferFromPrompt("A dreamlike close-up of her face")
	assert.Equal(t, types.StyleDreamy, patch.Style)
	assert.Equal(t, types.CameraCloseUp, patch.Camera)
}

func TestMergeSettings_Precedence(t *testing.T) {
	defaults := types.SegmentSettings{
		Camera:      types.CameraStatic,
		Motion:      types.MotionSmooth,
		StylePreset: types.StyleCinematic,
	}
	inferred := SettingsPatch{Camera: types.CameraWide, Motion: types.MotionFast}
	tagged := SettingsPatch{Camera: types.CameraCloseUp}

	merged := MergeSettings(defaults, inferred, tagged)

	// 标签 > 推断 > 默认
	assert.Equal(t, types.CameraCloseUp, merged.Camera)
	assert.Equal(t, types.MotionFast, merged.Motion)
	assert.Equal(t, types.StyleCinematic, merged.StylePreset)
}

func TestMergeSettings_NegativePromptJoined(t *testing.T) {
	defaults := types.SegmentSettings{NegativePrompt: "watermark"}
	tagged := SettingsPatch{NegativeFragments: []string{"blurry", "text"}}

	merged := MergeSettings(defaults, SettingsPatch{}, tagged)
	assert.Equal(t, "watermark, blurry, text", merged.NegativePrompt)
}
