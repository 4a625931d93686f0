package handler

import (
	"storyboard-ai/internal/queue"
	"storyboard-ai/internal/service"
	"storyboard-ai/internal/taskrunner"
)

type Handler struct {
	Service *service.Service
	Queue   *queue.Queue       // 配置了 Redis 时非 nil
	Runner  *taskrunner.Runner // 无 Redis 时的进程内 worker 池
}

// 配置更新后置位，下一个请求进来时重建服务
var configUpdated bool

func NewHandler(q *queue.Queue) *Handler {
	svc := service.NewService()
	h := &Handler{
		Service: svc,
		Queue:   q,
	}
	if q == nil {
		h.Runner = taskrunner.New(svc, taskrunner.DefaultConfig())
	}
	return h
}
