package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storyboard-ai/internal/handler"
	"storyboard-ai/internal/queue"
)

func SetupRouter(r *gin.Engine, q *queue.Queue) {
	api := r.Group("/api")

	hdl := handler.NewHandler(q)
	{
		api.POST("/plan", hdl.StartPlanTask)
		api.GET("/plan", hdl.GetPlanTask)
		api.GET("/plan/history", hdl.GetTaskHistory)
		api.DELETE("/plan/task/:taskId", hdl.DeleteTask)
		api.POST("/plan/task/:taskId/retry", hdl.RetryTask)
		api.GET("/models", hdl.GetModels)
		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}

	r.GET("/ws/task/:taskId", hdl.TaskProgressWS)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "storyboard-ai", "status": "ok"})
	})
}
