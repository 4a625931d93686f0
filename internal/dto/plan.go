package dto

import "storyboard-ai/internal/types"

// StartPlanTaskReq 提交规划任务
type StartPlanTaskReq struct {
	Scenario             string  `json:"scenario"`
	ModelId              string  `json:"model_id"`
	Language             string  `json:"language"` // 解析/产出语言提示，默认英文
	TargetDurationSec    float64 `json:"target_duration_sec,omitempty"`
	Seed                 int64   `json:"seed,omitempty"`
	EnableFrameChaining  bool    `json:"enable_frame_chaining,omitempty"`
	StyleConsistency     bool    `json:"style_consistency,omitempty"`
	CharacterConsistency bool    `json:"character_consistency,omitempty"`
	ReuseTaskId          string  `json:"reuse_task_id,omitempty"` // 重试时复用
}

type StartPlanTaskResData struct {
	TaskId string `json:"task_id"`
}

// GetPlanTaskReq 查询任务状态与结果
type GetPlanTaskReq struct {
	TaskId string `form:"taskId"`
}

type GetPlanTaskResData struct {
	TaskId           string                  `json:"task_id"`
	Status           types.PlanTaskStatus    `json:"status"`
	StatusMsg        string                  `json:"status_msg"`
	ProcessPercent   uint8                   `json:"process_percent"`
	SceneCount       int                     `json:"scene_count"`
	SegmentCount     int                     `json:"segment_count"`
	TotalDurationSec float64                 `json:"total_duration_sec"`
	Warnings         []string                `json:"warnings,omitempty"`
	Result           *types.PlanResult       `json:"result,omitempty"` // 仅成功时返回
	Segments         []SegmentBrief          `json:"segments,omitempty"`
}

// SegmentBrief 历史与进度视图里的片段摘要
type SegmentBrief struct {
	SegmentId     string  `json:"segment_id"`
	SegmentNumber int     `json:"segment_number"`
	SceneId       string  `json:"scene_id"`
	FinalPrompt   string  `json:"final_prompt"`
	DurationSec   float64 `json:"duration_sec"`
	Seed          int64   `json:"seed"`
	Status        string  `json:"status"`
}

// ModelInfo /api/models 返回的能力档案视图
type ModelInfo struct {
	ModelId          string  `json:"model_id"`
	DisplayName      string  `json:"display_name"`
	MinDurationSec   float64 `json:"min_duration_sec"`
	MaxDurationSec   float64 `json:"max_duration_sec"`
	MaxPromptChars   int     `json:"max_prompt_chars"`
	SupportsDialogue string  `json:"supports_dialogue"`
	PromptStyle      string  `json:"prompt_style"`
}
