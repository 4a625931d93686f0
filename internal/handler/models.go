package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"storyboard-ai/internal/dto"
	"storyboard-ai/internal/response"
	"storyboard-ai/internal/types"
)

// GetModels 返回内置模型能力表，供前端填充模型选择
func (h *Handler) GetModels(c *gin.Context) {
	models := lo.Map(h.Service.Registry.List(), func(caps types.ModelCapabilities, _ int) dto.ModelInfo {
		return dto.ModelInfo{
			ModelId:          caps.ModelId,
			DisplayName:      caps.DisplayName,
			MinDurationSec:   caps.MinDurationSec,
			MaxDurationSec:   caps.MaxDurationSec,
			MaxPromptChars:   caps.MaxPromptChars,
			SupportsDialogue: string(caps.SupportsDialogue),
			PromptStyle:      string(caps.PromptStyle),
		}
	})
	response.Success(c, models)
}
