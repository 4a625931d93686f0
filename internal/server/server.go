package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/internal/queue"
	"storyboard-ai/internal/router"
	"storyboard-ai/internal/service"
	"storyboard-ai/log"
)

// StartBackend 启动 HTTP 服务，配置了 Redis 时同时拉起队列 worker
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.Default()

	var q *queue.Queue
	if config.Conf.Queue.Enabled {
		q = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		go func() {
			if err := queue.StartWorker(q, service.NewService()); err != nil {
				log.GetLogger().Error("队列 worker 退出", zap.Error(err))
			}
		}()
	}

	router.SetupRouter(engine, q)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("服务启动", zap.String("addr", addr))
	return engine.Run(addr)
}
