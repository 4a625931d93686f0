package types

// DialogueSupport 模型的对白支持层级
type DialogueSupport string

const (
	DialogueSupportFull    DialogueSupport = "full"
	DialogueSupportLimited DialogueSupport = "limited"
	DialogueSupportNone    DialogueSupport = "none"
)

// PromptStyle 目标模型偏好的提示词格式
type PromptStyle string

const (
	PromptStylePlain           PromptStyle = "plain"
	PromptStyleCinematicBlocks PromptStyle = "cinematic_blocks"
	PromptStyleRunwayFormat    PromptStyle = "runway_format"
)

// ModelCapabilities 单个下游视频生成模型的静态能力档案。
// 注册表加载后只读。
type ModelCapabilities struct {
	ModelId          string          `json:"model_id"`
	DisplayName      string          `json:"display_name"`
	MinDurationSec   float64         `json:"min_duration_sec"`
	MaxDurationSec   float64         `json:"max_duration_sec"`
	MaxPromptChars   int             `json:"max_prompt_chars"`
	SupportsDialogue DialogueSupport `json:"supports_dialogue"`
	PromptStyle      PromptStyle     `json:"prompt_style"`
	StyleTokens      []string        `json:"style_tokens"`
	ForbiddenWords   []string        `json:"forbidden_words"`
}

// InlineTag 剧本文本中的 [type: value] 指令。
// Offset 是该标签在原始剧本文本中的起始字符位置。
// 标签永远随文本即时解析，不独立持久化。
type InlineTag struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Offset int    `json:"offset"`
}

// DialogueBlock 一句台词
type DialogueBlock struct {
	Character string `json:"character"`
	Line      string `json:"line"`
}

// SceneBreakdown 场景解析器产出的单个叙事单元，对本引擎只读。
type SceneBreakdown struct {
	SceneId             string          `json:"scene_id"`
	DurationEstimateSec float64         `json:"duration_estimate_sec"`
	Summary             string          `json:"summary"`
	Environment         string          `json:"environment"`
	Characters          []string        `json:"characters"`
	DialogueBlocks      []DialogueBlock `json:"dialogue_blocks"`
	Actions             []string        `json:"actions"`
	Emotions            []string        `json:"emotions"`
	VisualStyle         string          `json:"visual_style"`
	Lighting            string          `json:"lighting,omitempty"`
	CameraSuggestions   []string        `json:"camera_suggestions"`
	TransitionToNext    string          `json:"transition_to_next,omitempty"`
	ContinuityNotes     string          `json:"continuity_notes,omitempty"`
}

// ParsedScenario 场景解析协作方的完整输出
type ParsedScenario struct {
	Scenes   []SceneBreakdown `json:"scenes"`
	Warnings []string         `json:"warnings"`
}

// 镜头、运动、转场、风格、灯光的闭集取值。
// 标签映射表只认这些枚举；未识别的值保留在 TagMetadata 里，不改枚举字段。
const (
	CameraStatic   = "static"
	CameraCloseUp  = "close-up"
	CameraWide     = "wide"
	CameraAerial   = "aerial"
	CameraTracking = "tracking"
	CameraPanLeft  = "pan-left"
	CameraPanRight = "pan-right"
	CameraZoomIn   = "zoom-in"
	CameraZoomOut  = "zoom-out"
	CameraDolly    = "dolly"
	CameraHandheld = "handheld"
	CameraPov      = "pov"

	MotionStatic   = "static"
	MotionSlow     = "slow"
	MotionSmooth   = "smooth"
	MotionFast     = "fast"
	MotionDynamic  = "dynamic"
	MotionFloating = "floating"

	TransitionCut      = "cut"
	TransitionFade     = "fade"
	TransitionDissolve = "dissolve"
	TransitionWipe     = "wipe"
	TransitionMatchCut = "match-cut"
	TransitionWhipPan  = "whip-pan"

	StyleCinematic   = "cinematic"
	StyleDreamy      = "dreamy"
	StyleNoir        = "noir"
	StyleDocumentary = "documentary"
	StyleAnime       = "anime"
	StyleVintage     = "vintage"
	StyleHyperreal   = "hyperreal"
	StyleWatercolor  = "watercolor"

	LightingGoldenHour  = "golden-hour"
	LightingLowKey      = "low-key"
	LightingHighKey     = "high-key"
	LightingNeon        = "neon"
	LightingCandlelight = "candlelight"
	LightingMoonlight   = "moonlight"
	LightingOvercast    = "overcast"
	LightingHarsh       = "harsh"
)

// SegmentSettings 每个输出片段的工作记录。
// 规划期间可变，装配器返回后即视为不可变快照，所有权移交调用方。
type SegmentSettings struct {
	Prompt         string            `json:"prompt"`
	NegativePrompt string            `json:"negative_prompt"`
	DurationSec    float64           `json:"duration_sec"`
	Motion         string            `json:"motion"`
	Camera         string            `json:"camera"`
	Transition     string            `json:"transition"`
	StylePreset    string            `json:"style_preset"`
	EnhanceEnabled bool              `json:"enhance_enabled"`
	Seed           int64             `json:"seed"`
	ModelId        string            `json:"model_id"`
	FirstFrameMode string            `json:"first_frame_mode"` // none | chain_previous
	InlineTags     []InlineTag       `json:"inline_tags"`
	TagMetadata    map[string]string `json:"tag_metadata"`
	Lighting       string            `json:"lighting,omitempty"`
	Emotion        string            `json:"emotion,omitempty"`
	SfxCue         string            `json:"sfx_cue,omitempty"`
	Weather        string            `json:"weather,omitempty"`
	Effects        []string          `json:"effects,omitempty"`
}

// DialogueHandlingMode 对白在提示词中的呈现方式
type DialogueHandlingMode string

const (
	DialogueModeFull       DialogueHandlingMode = "full"
	DialogueModeCompressed DialogueHandlingMode = "compressed"
	DialogueModeVisualOnly DialogueHandlingMode = "visual_only"
	DialogueModeNone       DialogueHandlingMode = "none"
)

const SegmentStatusPending = "pending"

// TimelineSegment 发往下游的最终片段
type TimelineSegment struct {
	SegmentSettings

	SegmentId            string               `json:"segment_id"`
	SegmentNumber        int                  `json:"segment_number"`
	SceneId              string               `json:"scene_id"`
	Dialogue             []DialogueBlock      `json:"dialogue,omitempty"`
	Actions              []string             `json:"actions,omitempty"`
	FinalPrompt          string               `json:"final_prompt"`
	DialogueHandlingMode DialogueHandlingMode `json:"dialogue_handling_mode"`
	Status               string               `json:"status"`
}

// GeneratedTimeline 有序片段聚合。
// TotalDurationSec 恒等于各片段时长之和；与请求目标时长的偏差以
// warning 上报，绝不静默修正。
type GeneratedTimeline struct {
	TimelineId       string            `json:"timeline_id"`
	ModelId          string            `json:"model_id"`
	Segments         []TimelineSegment `json:"segments"`
	TotalDurationSec float64           `json:"total_duration_sec"`
	Warnings         []string          `json:"warnings"`

	// 连续性开关只是给下游生成的描述性提示，引擎内部不做强制
	CharacterConsistency bool `json:"character_consistency"`
	LightingConsistency  bool `json:"lighting_consistency"`
	StyleConsistency     bool `json:"style_consistency"`
}

// PlanProgress 执行进度簿记
type PlanProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// VideoGenerationPlan 由时间线导出的执行清单，交给外部执行组件消费
type VideoGenerationPlan struct {
	PlanId         string       `json:"plan_id"`
	TimelineId     string       `json:"timeline_id"`
	ModelId        string       `json:"model_id"`
	ExecutionOrder []string     `json:"execution_order"`
	Progress       PlanProgress `json:"progress"`
}

// PlanOptions 规划入参选项
type PlanOptions struct {
	TargetDurationSec    float64 `json:"target_duration_sec"`
	Seed                 int64   `json:"seed"`
	EnableFrameChaining  bool    `json:"enable_frame_chaining"`
	StyleConsistency     bool    `json:"style_consistency"`
	CharacterConsistency bool    `json:"character_consistency"`
	Language             string  `json:"language"`
}

// PlanResult 规划流水线的完整输出
type PlanResult struct {
	Timeline *GeneratedTimeline   `json:"timeline"`
	Plan     *VideoGenerationPlan `json:"plan"`
	Warnings []string             `json:"warnings"`
}
