package types

import "time"

type PlanTaskStatus uint8

const (
	PlanTaskStatusPending    PlanTaskStatus = 0
	PlanTaskStatusProcessing PlanTaskStatus = 1
	PlanTaskStatusSuccess    PlanTaskStatus = 2
	PlanTaskStatusFailed     PlanTaskStatus = 3
)

// PlanTask 一次规划任务的持久化记录。
// PlanJson 存放最终 PlanResult 快照，片段明细另存 PlanSegment 行，
// 方便执行组件按片段领取。
type PlanTask struct {
	Id                int64          `json:"-" gorm:"primaryKey;autoIncrement"`
	TaskId            string         `json:"task_id" gorm:"uniqueIndex;size:64"`
	Scenario          string         `json:"scenario" gorm:"type:text"`
	ModelId           string         `json:"model_id" gorm:"size:64"`
	Language          string         `json:"language" gorm:"size:16"`
	TargetDurationSec float64        `json:"target_duration_sec"`
	Seed              int64          `json:"seed"`
	FrameChaining     bool           `json:"frame_chaining"`
	StyleConsistency  bool           `json:"style_consistency"`
	CharConsistency   bool           `json:"character_consistency"`
	Status            PlanTaskStatus `json:"status"`
	StatusMsg         string         `json:"status_msg" gorm:"size:128"`
	ProcessPct        uint8          `json:"process_percent"`
	FailReason        string         `json:"fail_reason" gorm:"type:text"`
	SceneCount        int            `json:"scene_count"`
	SegmentCount      int            `json:"segment_count"`
	TotalDurationSec  float64        `json:"total_duration_sec"`
	PlanJson          string         `json:"-" gorm:"type:text"`
	Warnings          string         `json:"warnings" gorm:"type:text"` // 换行符分隔
	Segments          []PlanSegment  `json:"segments,omitempty" gorm:"foreignKey:TaskId;references:TaskId"`
	CreateTime        time.Time      `json:"create_time" gorm:"autoCreateTime"`
	UpdateTime        time.Time      `json:"update_time" gorm:"autoUpdateTime"`
}

// PlanSegment 片段行，FinalPrompt/NegativePrompt/时长足够执行组件调起生成
type PlanSegment struct {
	Id             int64   `json:"-" gorm:"primaryKey;autoIncrement"`
	TaskId         string  `json:"task_id" gorm:"index;size:64"`
	SegmentId      string  `json:"segment_id" gorm:"uniqueIndex;size:64"`
	SegmentNumber  int     `json:"segment_number"`
	SceneId        string  `json:"scene_id" gorm:"size:64"`
	FinalPrompt    string  `json:"final_prompt" gorm:"type:text"`
	NegativePrompt string  `json:"negative_prompt" gorm:"type:text"`
	DurationSec    float64 `json:"duration_sec"`
	Seed           int64   `json:"seed"`
	Status         string  `json:"status" gorm:"size:16"`
}
