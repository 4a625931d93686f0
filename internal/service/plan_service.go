package service

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/internal/dto"
	"storyboard-ai/internal/planner"
	"storyboard-ai/internal/storage"
	"storyboard-ai/internal/types"
	"storyboard-ai/log"
	apperrors "storyboard-ai/pkg/errors"
	"storyboard-ai/pkg/util"
)

// StartPlanTask 创建任务并在进程内协程执行
func (s Service) StartPlanTask(req dto.StartPlanTaskReq) (*dto.StartPlanTaskResData, error) {
	data, err := s.CreatePlanTask(req)
	if err != nil {
		return nil, err
	}
	s.DispatchPlanTask(data.TaskId)
	return data, nil
}

// CreatePlanTask 只校验并落库任务记录，不执行。
// 队列模式下由 worker 取走执行，进程内模式用 DispatchPlanTask。
func (s Service) CreatePlanTask(req dto.StartPlanTaskReq) (*dto.StartPlanTaskResData, error) {
	if strings.TrimSpace(req.Scenario) == "" {
		return nil, apperrors.ErrEmptyScenario
	}
	modelId := req.ModelId
	if modelId == "" {
		modelId = config.Conf.Planner.DefaultModel
	}
	if modelId == "" {
		return nil, apperrors.ErrEmptyModelId
	}

	// 生成或复用任务id
	var taskId string
	if req.ReuseTaskId != "" {
		taskId = req.ReuseTaskId
	} else {
		taskId = fmt.Sprintf("plan_%s", util.GenerateRandStringWithUpperLowerNum(8))
	}

	// 创建或更新任务
	var taskPtr *types.PlanTask
	if req.ReuseTaskId != "" {
		taskPtr, _ = storage.GetTask(taskId)
	}

	if taskPtr == nil {
		taskPtr = &types.PlanTask{
			TaskId:            taskId,
			Scenario:          req.Scenario,
			ModelId:           modelId,
			Language:          req.Language,
			TargetDurationSec: req.TargetDurationSec,
			Seed:              req.Seed,
			FrameChaining:     req.EnableFrameChaining,
			StyleConsistency:  req.StyleConsistency,
			CharConsistency:   req.CharacterConsistency,
			Status:            types.PlanTaskStatusPending,
		}
	} else {
		// Reset status for retry
		taskPtr.Status = types.PlanTaskStatusPending
		taskPtr.FailReason = ""
		taskPtr.StatusMsg = "正在重试 Retrying..."
		taskPtr.ProcessPct = 0
		if req.Scenario != "" {
			taskPtr.Scenario = req.Scenario
		}
		taskPtr.ModelId = modelId
	}
	if err := storage.SaveTask(taskPtr); err != nil {
		log.GetLogger().Error("StartPlanTask SaveTask err", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "保存任务失败 Failed to save task", err)
	}

	log.GetLogger().Info("current plan task info", zap.String("taskId", taskId), zap.String("modelId", modelId))

	return &dto.StartPlanTaskResData{TaskId: taskId}, nil
}

// DispatchPlanTask 在后台协程执行已落库的任务，panic 只打点不杀进程
func (s Service) DispatchPlanTask(taskId string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]
				log.GetLogger().Error("plan task panic", zap.Any("panic:", r), zap.Any("stack:", buf))
				if taskPtr, _ := storage.GetTask(taskId); taskPtr != nil {
					taskPtr.Status = types.PlanTaskStatusFailed
					taskPtr.FailReason = fmt.Sprintf("panic: %v", r)
					_ = storage.SaveTask(taskPtr)
				}
			}
		}()
		if err := s.RunPlanTask(context.Background(), taskId); err != nil {
			log.GetLogger().Error("plan task failed", zap.String("taskId", taskId), zap.Error(err))
		}
	}()
}

// RunPlanTask 同步执行一个已保存的规划任务：
// 标签提取 → 场景解析 → 时间线规划 → 结果落库。
// 队列 worker 和 StartPlanTask 的后台协程走同一条路径。
func (s Service) RunPlanTask(ctx context.Context, taskId string) error {
	taskPtr, err := storage.GetTask(taskId)
	if err != nil {
		return apperrors.ErrTaskNotFound
	}

	fail := func(reason error, statusMsg string) error {
		taskPtr.Status = types.PlanTaskStatusFailed
		taskPtr.FailReason = reason.Error()
		taskPtr.StatusMsg = statusMsg
		_ = storage.SaveTask(taskPtr)
		return reason
	}

	taskPtr.Status = types.PlanTaskStatusProcessing
	taskPtr.StatusMsg = "正在解析剧本 Parsing scenario..."
	taskPtr.ProcessPct = 10
	_ = storage.SaveTask(taskPtr)

	tags := planner.ExtractTags(taskPtr.Scenario)
	parsed, err := s.SceneParser.Parse(ctx, taskPtr.Scenario, taskPtr.Language)
	if err != nil {
		log.GetLogger().Error("RunPlanTask scene parsing err", zap.String("taskId", taskId), zap.Error(err))
		return fail(err, "剧本解析失败 Scenario Parsing Failed")
	}

	taskPtr.SceneCount = len(parsed.Scenes)
	taskPtr.StatusMsg = "正在规划片段 Planning segments..."
	taskPtr.ProcessPct = 40
	_ = storage.SaveTask(taskPtr)

	opts := types.PlanOptions{
		TargetDurationSec:    taskPtr.TargetDurationSec,
		Seed:                 taskPtr.Seed,
		EnableFrameChaining:  taskPtr.FrameChaining,
		StyleConsistency:     taskPtr.StyleConsistency,
		CharacterConsistency: taskPtr.CharConsistency,
		Language:             taskPtr.Language,
	}
	result, err := s.Planner.PlanTimeline(ctx, parsed.Scenes, tags, taskPtr.ModelId, opts)
	if err != nil {
		log.GetLogger().Error("RunPlanTask PlanTimeline err", zap.String("taskId", taskId), zap.Error(err))
		return fail(err, "时间线规划失败 Timeline Planning Failed")
	}
	result.Warnings = append(parsed.Warnings, result.Warnings...)
	result.Timeline.Warnings = result.Warnings

	taskPtr.StatusMsg = "正在写入结果 Persisting plan..."
	taskPtr.ProcessPct = 80
	_ = storage.SaveTask(taskPtr)

	planJson, err := json.Marshal(result)
	if err != nil {
		log.GetLogger().Error("RunPlanTask marshal plan err", zap.String("taskId", taskId), zap.Error(err))
		return fail(apperrors.Wrap(apperrors.CodeDBError, "规划结果序列化失败 Failed to serialize plan", err), "结果处理失败 Final Processing Failed")
	}

	taskPtr.PlanJson = string(planJson)
	taskPtr.SegmentCount = len(result.Timeline.Segments)
	taskPtr.TotalDurationSec = result.Timeline.TotalDurationSec
	taskPtr.Warnings = strings.Join(result.Warnings, "\n")
	taskPtr.Segments = segmentRows(taskId, result.Timeline.Segments)
	taskPtr.Status = types.PlanTaskStatusSuccess
	taskPtr.StatusMsg = "规划完成 Plan Completed"
	taskPtr.ProcessPct = 100
	if err := storage.SaveTask(taskPtr); err != nil {
		log.GetLogger().Error("RunPlanTask SaveTask err", zap.String("taskId", taskId), zap.Error(err))
		return apperrors.Wrap(apperrors.CodeDBError, "保存任务失败 Failed to save task", err)
	}

	log.GetLogger().Info("plan task end", zap.String("taskId", taskId),
		zap.Int("segments", taskPtr.SegmentCount), zap.Float64("totalDuration", taskPtr.TotalDurationSec))
	return nil
}

func (s Service) GetTaskStatus(req dto.GetPlanTaskReq) (*dto.GetPlanTaskResData, error) {
	taskPtr, err := storage.GetTask(req.TaskId)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}
	if taskPtr.Status == types.PlanTaskStatusFailed {
		return nil, fmt.Errorf("任务失败，原因：%s", taskPtr.FailReason)
	}

	data := &dto.GetPlanTaskResData{
		TaskId:           taskPtr.TaskId,
		Status:           taskPtr.Status,
		StatusMsg:        taskPtr.StatusMsg,
		ProcessPercent:   taskPtr.ProcessPct,
		SceneCount:       taskPtr.SceneCount,
		SegmentCount:     taskPtr.SegmentCount,
		TotalDurationSec: taskPtr.TotalDurationSec,
	}
	if taskPtr.Warnings != "" {
		data.Warnings = strings.Split(taskPtr.Warnings, "\n")
	}
	for _, row := range taskPtr.Segments {
		data.Segments = append(data.Segments, dto.SegmentBrief{
			SegmentId:     row.SegmentId,
			SegmentNumber: row.SegmentNumber,
			SceneId:       row.SceneId,
			FinalPrompt:   row.FinalPrompt,
			DurationSec:   row.DurationSec,
			Seed:          row.Seed,
			Status:        row.Status,
		})
	}
	if taskPtr.Status == types.PlanTaskStatusSuccess && taskPtr.PlanJson != "" {
		var result types.PlanResult
		if err := json.Unmarshal([]byte(taskPtr.PlanJson), &result); err == nil {
			data.Result = &result
		} else {
			log.GetLogger().Error("GetTaskStatus unmarshal plan err", zap.String("taskId", req.TaskId), zap.Error(err))
		}
	}
	return data, nil
}

func segmentRows(taskId string, segments []types.TimelineSegment) []types.PlanSegment {
	rows := make([]types.PlanSegment, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, types.PlanSegment{
			TaskId:         taskId,
			SegmentId:      seg.SegmentId,
			SegmentNumber:  seg.SegmentNumber,
			SceneId:        seg.SceneId,
			FinalPrompt:    seg.FinalPrompt,
			NegativePrompt: seg.NegativePrompt,
			DurationSec:    seg.DurationSec,
			Seed:           seg.Seed,
			Status:         seg.Status,
		})
	}
	return rows
}
