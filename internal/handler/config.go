package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/internal/response"
	"storyboard-ai/log"
	apperrors "storyboard-ai/pkg/errors"
)

func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

// UpdateConfig 覆盖内存配置并落盘，置位 configUpdated 让下个请求重建服务
func (h *Handler) UpdateConfig(c *gin.Context) {
	var newConf config.Config
	if err := c.ShouldBindJSON(&newConf); err != nil {
		log.GetLogger().Error("UpdateConfig ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "参数错误 Invalid parameters", err))
		return
	}

	config.Conf = newConf
	if err := config.CheckConfig(); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "配置不合法 Invalid configuration", err))
		return
	}
	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("UpdateConfig SaveConfig err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "配置保存失败 Failed to save configuration", err))
		return
	}

	configUpdated = true
	response.Success(c, nil)
}
