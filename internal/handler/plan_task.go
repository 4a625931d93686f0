package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/internal/dto"
	"storyboard-ai/internal/queue"
	"storyboard-ai/internal/response"
	"storyboard-ai/internal/service"
	"storyboard-ai/internal/storage"
	"storyboard-ai/internal/taskrunner"
	"storyboard-ai/log"
	apperrors "storyboard-ai/pkg/errors"
)

func (h *Handler) StartPlanTask(c *gin.Context) {
	var req dto.StartPlanTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartPlanTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartPlanTask received request",
		zap.String("modelId", req.ModelId), zap.Int("scenarioLen", len(req.Scenario)))

	// 检查配置是否需要重新初始化
	if configUpdated {
		log.GetLogger().Info("检测到配置更新，重新初始化服务")
		h.Service = service.NewService()
		configUpdated = false
	}

	data, err := h.Service.CreatePlanTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}

	h.dispatch(data.TaskId)

	response.Success(c, data)
}

// dispatch 把已落库的任务交给执行方：Redis 队列 → 进程内 worker 池 →
// 裸协程，逐级降级，保证任务总会被执行
func (h *Handler) dispatch(taskId string) {
	if h.Queue != nil && config.Conf.Queue.Enabled {
		if err := h.Queue.EnqueuePlanTask(queue.PlanTaskPayload{TaskID: taskId}); err == nil {
			return
		} else {
			log.GetLogger().Error("dispatch enqueue err, falling back to in-process execution",
				zap.String("taskId", taskId), zap.Error(err))
		}
	}
	if h.Runner != nil {
		if err := h.Runner.SubmitPlanTask(taskrunner.PlanTaskPayload{TaskID: taskId}); err == nil {
			return
		} else {
			log.GetLogger().Error("dispatch runner submit err, falling back to goroutine",
				zap.String("taskId", taskId), zap.Error(err))
		}
	}
	h.Service.DispatchPlanTask(taskId)
}

func (h *Handler) GetPlanTask(c *gin.Context) {
	var req dto.GetPlanTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.R(c, response.Response{
			Error: -1,
			Msg:   "参数错误",
			Data:  nil,
		})
		return
	}

	data, err := h.Service.GetTaskStatus(req)
	if err != nil {
		response.R(c, response.Response{
			Error: -1,
			Msg:   err.Error(),
			Data:  nil,
		})
		return
	}
	response.R(c, response.Response{
		Error: 0,
		Msg:   "成功",
		Data:  data,
	})
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	tasks, err := storage.GetTaskHistory(200)
	if err != nil {
		response.R(c, response.Response{
			Error: -1,
			Msg:   "获取历史记录失败: " + err.Error(),
			Data:  nil,
		})
		return
	}
	response.R(c, response.Response{
		Error: 0,
		Msg:   "成功",
		Data:  tasks,
	})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.R(c, response.Response{
			Error: -1,
			Msg:   "taskId不能为空",
			Data:  nil,
		})
		return
	}

	if err := storage.DeleteTask(taskId); err != nil {
		response.R(c, response.Response{
			Error: -1,
			Msg:   "删除任务失败: " + err.Error(),
			Data:  nil,
		})
		return
	}
	response.R(c, response.Response{
		Error: 0,
		Msg:   "成功",
		Data:  nil,
	})
}

func (h *Handler) RetryTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	taskPtr, err := storage.GetTask(taskId)
	if err != nil {
		response.ErrorResponse(c, apperrors.ErrTaskNotFound)
		return
	}
	if strings.TrimSpace(taskPtr.Scenario) == "" {
		response.ErrorResponse(c, apperrors.ErrEmptyScenario)
		return
	}

	data, err := h.Service.CreatePlanTask(dto.StartPlanTaskReq{
		Scenario:             taskPtr.Scenario,
		ModelId:              taskPtr.ModelId,
		Language:             taskPtr.Language,
		TargetDurationSec:    taskPtr.TargetDurationSec,
		Seed:                 taskPtr.Seed,
		EnableFrameChaining:  taskPtr.FrameChaining,
		StyleConsistency:     taskPtr.StyleConsistency,
		CharacterConsistency: taskPtr.CharConsistency,
		ReuseTaskId:          taskId,
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	h.dispatch(data.TaskId)
	response.Success(c, data)
}
