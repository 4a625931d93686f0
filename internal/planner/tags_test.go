package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storyboard-ai/internal/types"
)

func TestExtractTags(t *testing.T) {
	text := `A knight rides through the forest. [camera: wide] [mood: tense]
He dismounts near a river. [pace: slow]`

	tags := ExtractTags(text)
	assert.Len(t, tags, 3)

	assert.Equal(t, "camera", tags[0].Type)
	assert.Equal(t, "wide", tags[0].Value)
	assert.Equal(t, "mood", tags[1].Type)
	assert.Equal(t, "tense", tags[1].Value)
	assert.Equal(t, "pace", tags[2].Type)
	assert.Equal(t, "slow", tags[2].Value)

	// 偏移指向原文中的 '['
	assert.Equal(t, byte('['), text[tags[0].Offset])
	assert.True(t, tags[0].Offset < tags[1].Offset)
	assert.True(t, tags[1].Offset < tags[2].Offset)
}

func TestExtractTags_TypeLoweredValueTrimmed(t *testing.T) {
	tags := ExtractTags("[Camera:   zoom-in  ]")
	assert.Len(t, tags, 1)
	assert.Equal(t, "camera", tags[0].Type)
	assert.Equal(t, "zoom-in", tags[0].Value)
}

func TestExtractTags_MalformedBracketsIgnored(t *testing.T) {
	assert.Nil(t, ExtractTags("no tags here"))
	assert.Nil(t, ExtractTags("[unclosed: tag"))
	assert.Nil(t, ExtractTags("[]"))
	assert.Nil(t, ExtractTags("[novalue]"))

	// 嵌套括号：内层合法部分照常提取
	tags := ExtractTags("[outer [camera: wide]]")
	assert.Len(t, tags, 1)
	assert.Equal(t, "camera", tags[0].Type)
}

func TestStripTags(t *testing.T) {
	text := "A knight [camera: wide] rides  through [mood: tense] the forest."
	assert.Equal(t, "A knight rides through the forest.", StripTags(text))
}

func TestStripTags_RoundTrip(t *testing.T) {
	// 提取后剥离，标签不应再出现
	text := "Morning fog. [lighting: golden-hour] Birds sing. [sfx: ambient]"
	stripped := StripTags(text)
	assert.Empty(t, ExtractTags(stripped))
	assert.NotContains(t, stripped, "[")
}

func TestStripTagsKeepLayout(t *testing.T) {
	text := "Scene one. [camera: wide]\n\nScene two. [mood: calm]"
	kept := StripTagsKeepLayout(text)
	assert.Contains(t, kept, "\n\n")
	assert.NotContains(t, kept, "[")
}

func TestExtractTags_UnknownTypesStillExtracted(t *testing.T) {
	// 提取器不做词表校验，那是映射器的职责
	tags := ExtractTags("[flavor: spicy]")
	assert.Len(t, tags, 1)
	assert.Equal(t, "flavor", tags[0].Type)
	assert.Equal(t, "spicy", tags[0].Value)
	_ = types.InlineTag{}
}
