package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storyboard-ai/internal/storage"
	"storyboard-ai/internal/types"
	"storyboard-ai/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 仅本机部署，放开跨域
		return true
	},
}

const (
	wsPollInterval = time.Second
	wsWriteTimeout = 5 * time.Second
)

type taskProgressMessage struct {
	TaskId         string               `json:"task_id"`
	Status         types.PlanTaskStatus `json:"status"`
	StatusMsg      string               `json:"status_msg"`
	ProcessPercent uint8                `json:"process_percent"`
	FailReason     string               `json:"fail_reason,omitempty"`
}

// TaskProgressWS 推送任务进度，任务到达终态或客户端断开即结束。
// 单连接单任务，轮询库表而非进程内状态，队列 worker 执行的任务同样可见。
func (h *Handler) TaskProgressWS(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId不能为空"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("TaskProgressWS upgrade err", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	var lastPayload []byte
	for range ticker.C {
		taskPtr, err := storage.GetTask(taskId)
		if err != nil {
			_ = writeWS(conn, taskProgressMessage{TaskId: taskId, StatusMsg: "任务不存在 Task not found"})
			return
		}

		msg := taskProgressMessage{
			TaskId:         taskPtr.TaskId,
			Status:         taskPtr.Status,
			StatusMsg:      taskPtr.StatusMsg,
			ProcessPercent: taskPtr.ProcessPct,
			FailReason:     taskPtr.FailReason,
		}
		payload, _ := json.Marshal(msg)
		if string(payload) != string(lastPayload) {
			if err := writeWS(conn, msg); err != nil {
				// 客户端断开
				return
			}
			lastPayload = payload
		}

		if taskPtr.Status == types.PlanTaskStatusSuccess || taskPtr.Status == types.PlanTaskStatusFailed {
			return
		}
	}
}

func writeWS(conn *websocket.Conn, msg taskProgressMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
