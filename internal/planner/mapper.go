package planner

import (
	"regexp"
	"strings"

	"storyboard-ai/internal/types"
)

// MappingTables 标签值到片段设置枚举的闭集映射。
// 表在构造时注入且不可变，保持映射器纯净、可单测。
type MappingTables struct {
	Camera     map[string]string
	Motion     map[string]string
	Pace       map[string]string // pace 值 → motion
	Transition map[string]string
	Style      map[string]string
	Genre      map[string]string // genre 值 → style
	MoodMotion map[string]string // mood 值 → motion 兜底
	Lighting   map[string]string
	Fx         map[string]string
	Sfx        map[string]string
	Weather    map[string]string
}

// DefaultTables 内置映射表
func DefaultTables() MappingTables {
	return MappingTables{
		Camera: map[string]string{
			"static":    types.CameraStatic,
			"close-up":  types.CameraCloseUp,
			"closeup":   types.CameraCloseUp,
			"wide":      types.CameraWide,
			"wide-shot": types.CameraWide,
			"aerial":    types.CameraAerial,
			"drone":     types.CameraAerial,
			"tracking":  types.CameraTracking,
			"pan-left":  types.CameraPanLeft,
			"pan-right": types.CameraPanRight,
			"zoom-in":   types.CameraZoomIn,
			"zoom-out":  types.CameraZoomOut,
			"dolly":     types.CameraDolly,
			"handheld":  types.CameraHandheld,
			"pov":       types.CameraPov,
		},
		Motion: map[string]string{
			"static":      types.MotionStatic,
			"still":       types.MotionStatic,
			"slow":        types.MotionSlow,
			"slow-motion": types.MotionSlow,
			"smooth":      types.MotionSmooth,
			"fast":        types.MotionFast,
			"dynamic":     types.MotionDynamic,
			"floating":    types.MotionFloating,
		},
		Pace: map[string]string{
			"very-slow": types.MotionSlow,
			"slow":      types.MotionSlow,
			"normal":    types.MotionSmooth,
			"fast":      types.MotionFast,
			"very-fast": types.MotionFast,
		},
		Transition: map[string]string{
			"cut":       types.TransitionCut,
			"fade":      types.TransitionFade,
			"dissolve":  types.TransitionDissolve,
			"wipe":      types.TransitionWipe,
			"match-cut": types.TransitionMatchCut,
			"whip-pan":  types.TransitionWhipPan,
		},
		Style: map[string]string{
			"cinematic":   types.StyleCinematic,
			"dreamy":      types.StyleDreamy,
			"noir":        types.StyleNoir,
			"documentary": types.StyleDocumentary,
			"anime":       types.StyleAnime,
			"vintage":     types.StyleVintage,
			"hyperreal":   types.StyleHyperreal,
			"watercolor":  types.StyleWatercolor,
		},
		Genre: map[string]string{
			"horror":      types.StyleNoir,
			"thriller":    types.StyleNoir,
			"fantasy":     types.StyleDreamy,
			"fairy-tale":  types.StyleDreamy,
			"scifi":       types.StyleHyperreal,
			"cyberpunk":   types.StyleHyperreal,
			"western":     types.StyleVintage,
			"documentary": types.StyleDocumentary,
		},
		MoodMotion: map[string]string{
			"dramatic":   types.MotionDynamic,
			"tense":      types.MotionFast,
			"energetic":  types.MotionFast,
			"calm":       types.MotionSlow,
			"peaceful":   types.MotionSlow,
			"melancholy": types.MotionSlow,
			"mysterious": types.MotionSmooth,
			"romantic":   types.MotionSmooth,
		},
		Lighting: map[string]string{
			"golden-hour": types.LightingGoldenHour,
			"low-key":     types.LightingLowKey,
			"high-key":    types.LightingHighKey,
			"neon":        types.LightingNeon,
			"candlelight": types.LightingCandlelight,
			"moonlight":   types.LightingMoonlight,
			"overcast":    types.LightingOvercast,
			"harsh":       types.LightingHarsh,
		},
		Fx: map[string]string{
			"film-grain": "film-grain",
			"bokeh":      "bokeh",
			"lens-flare": "lens-flare",
			"light-leak": "light-leak",
			"vhs":        "vhs",
			"glitch":     "glitch",
		},
		Sfx: map[string]string{
			"rain":      "rain",
			"wind":      "wind",
			"footsteps": "footsteps",
			"heartbeat": "heartbeat",
			"ambient":   "ambient",
			"thunder":   "thunder",
			"silence":   "silence",
		},
		Weather: map[string]string{
			"rain":  "rain",
			"snow":  "snow",
			"fog":   "fog",
			"storm": "storm",
			"clear": "clear",
			"windy": "windy",
		},
	}
}

// SettingsPatch 一层部分设置。空字符串表示未设置。
type SettingsPatch struct {
	Camera     string
	Motion     string
	Transition string
	Style      string
	Lighting   string
	Emotion    string
	SfxCue     string
	Weather    string

	Effects           []string
	NegativeFragments []string
	Metadata          map[string]string

	// pace 标签原值，时长启发式要用
	PaceHint string

	// motion 是否出自显式 motion/pace 标签；mood 兜底不得覆盖显式值
	motionExplicit bool
}

// Mapper 把标签和文本线索翻译成片段设置
type Mapper struct {
	tables MappingTables
}

func NewMapper() *Mapper {
	return &Mapper{tables: DefaultTables()}
}

func NewMapperWithTables(tables MappingTables) *Mapper {
	return &Mapper{tables: tables}
}

// MapTags 按出现顺序应用标签。同字段后出现的标签覆盖先出现的
// （last tag wins）；mood 只在 motion 未被显式标签占用时兜底写入。
// 已识别类型的未识别值只进 Metadata，不改枚举字段。
func (m *Mapper) MapTags(tags []types.InlineTag) SettingsPatch {
	patch := SettingsPatch{Metadata: map[string]string{}}

	for _, tag := range tags {
		value := strings.ToLower(strings.TrimSpace(tag.Value))
		patch.Metadata[tag.Type] = tag.Value

		switch tag.Type {
		case "camera":
			if mapped, ok := m.tables.Camera[value]; ok {
				patch.Camera = mapped
			}
		case "motion":
			if mapped, ok := m.tables.Motion[value]; ok {
				patch.Motion = mapped
				patch.motionExplicit = true
			}
		case "pace":
			if mapped, ok := m.tables.Pace[value]; ok {
				patch.Motion = mapped
				patch.motionExplicit = true
				patch.PaceHint = value
			}
		case "transition":
			if mapped, ok := m.tables.Transition[value]; ok {
				patch.Transition = mapped
			}
		case "style":
			if mapped, ok := m.tables.Style[value]; ok {
				patch.Style = mapped
			}
		case "genre":
			if mapped, ok := m.tables.Genre[value]; ok {
				patch.Style = mapped
			}
		case "mood":
			patch.Emotion = value
			if mapped, ok := m.tables.MoodMotion[value]; ok && !patch.motionExplicit {
				patch.Motion = mapped
			}
		case "lighting":
			if mapped, ok := m.tables.Lighting[value]; ok {
				patch.Lighting = mapped
			}
		case "fx":
			if mapped, ok := m.tables.Fx[value]; ok {
				patch.Effects = append(patch.Effects, mapped)
			}
		case "sfx":
			if mapped, ok := m.tables.Sfx[value]; ok {
				patch.SfxCue = mapped
			}
		case "weather":
			if mapped, ok := m.tables.Weather[value]; ok {
				patch.Weather = mapped
			}
		case "negative":
			patch.NegativeFragments = append(patch.NegativeFragments, tag.Value)
		case "lens":
			// 镜头参数只透传元数据
		}
	}
	return patch
}

var (
	fastMotionWords  = regexp.MustCompile(`\b(run|runs|running|chase|chasing|fight|fighting|explode|explosion|crash|jump|jumps|race|racing|sprint|escape)\b`)
	slowMotionWords  = regexp.MustCompile(`\b(calm|quiet|gentle|peaceful|still|serene|slowly|drifting)\b`)
	closeUpWords     = regexp.MustCompile(`\b(close-up|closeup|face|portrait|eyes|expression)\b`)
	wideShotWords    = regexp.MustCompile(`\b(wide|vista|landscape|panorama|skyline|horizon)\b`)
	dreamyStyleWords = regexp.MustCompile(`\b(dream|dreams|dreamlike|fantasy|magical|ethereal|surreal)\b`)
	lowKeyWords      = regexp.MustCompile(`\b(night|dark|darkness|shadow|shadows|midnight)\b`)
	goldenHourWords  = regexp.MustCompile(`\b(sunset|sunrise|dawn|dusk|golden hour)\b`)
)

// InferFromPrompt 对字面提示词文本做关键词启发式推断。
// 独立于标签运行，结果只在对应字段没有标签时生效。
func (m *Mapper) InferFromPrompt(text string) SettingsPatch {
	lower := strings.ToLower(text)
	patch := SettingsPatch{}

	switch {
	case fastMotionWords.MatchString(lower):
		patch.Motion = types.MotionFast
	case slowMotionWords.MatchString(lower):
		patch.Motion = types.MotionSlow
	}

	switch {
	case closeUpWords.MatchString(lower):
		patch.Camera = types.CameraCloseUp
	case wideShotWords.MatchString(lower):
		patch.Camera = types.CameraWide
	}

	if dreamyStyleWords.MatchString(lower) {
		patch.Style = types.StyleDreamy
	}

	switch {
	case goldenHourWords.MatchString(lower):
		patch.Lighting = types.LightingGoldenHour
	case lowKeyWords.MatchString(lower):
		patch.Lighting = types.LightingLowKey
	}

	return patch
}

// MergeSettings 按固定优先级叠加三层设置：
// 显式标签 > 文本推断 > 逐片段默认。层序在此函数里写死，
// 不依赖任何字段覆盖顺序的隐式约定。
func MergeSettings(defaults types.SegmentSettings, inferred, tagged SettingsPatch) types.SegmentSettings {
	merged := defaults

	merged.Camera = pick(tagged.Camera, inferred.Camera, defaults.Camera)
	merged.Motion = pick(tagged.Motion, inferred.Motion, defaults.Motion)
	merged.Transition = pick(tagged.Transition, inferred.Transition, defaults.Transition)
	merged.StylePreset = pick(tagged.Style, inferred.Style, defaults.StylePreset)
	merged.Lighting = pick(tagged.Lighting, inferred.Lighting, defaults.Lighting)
	merged.Emotion = pick(tagged.Emotion, inferred.Emotion, defaults.Emotion)
	merged.SfxCue = pick(tagged.SfxCue, inferred.SfxCue, defaults.SfxCue)
	merged.Weather = pick(tagged.Weather, inferred.Weather, defaults.Weather)

	if len(tagged.Effects) > 0 {
		merged.Effects = append(merged.Effects, tagged.Effects...)
	}

	fragments := tagged.NegativeFragments
	if merged.NegativePrompt != "" {
		fragments = append([]string{merged.NegativePrompt}, fragments...)
	}
	merged.NegativePrompt = strings.Join(fragments, ", ")

	if len(tagged.Metadata) > 0 {
		if merged.TagMetadata == nil {
			merged.TagMetadata = map[string]string{}
		}
		for k, v := range tagged.Metadata {
			merged.TagMetadata[k] = v
		}
	}

	return merged
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
