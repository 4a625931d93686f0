package service

import (
	"time"

	"go.uber.org/zap"

	"storyboard-ai/config"
	"storyboard-ai/internal/planner"
	"storyboard-ai/internal/registry"
	"storyboard-ai/internal/types"
	"storyboard-ai/log"
	"storyboard-ai/pkg/improve"
	"storyboard-ai/pkg/openai"
)

type Service struct {
	SceneParser types.SceneParser
	Improver    types.TextImprover
	Registry    *registry.Registry
	Planner     *planner.Planner
}

func NewService() *Service {
	reg := registry.NewDefault()

	var sceneParser types.SceneParser
	ruleParser := NewRuleSceneParser()
	if config.Conf.Llm.ApiKey != "" {
		completer := openai.NewClient(config.Conf.Llm.BaseUrl, config.Conf.Llm.ApiKey, config.Conf.Llm.Model, config.Conf.App.Proxy)
		sceneParser = NewLlmSceneParser(completer, ruleParser)
	} else {
		// 未配置 LLM 时全程走规则解析
		sceneParser = ruleParser
	}
	log.GetLogger().Info("当前选择的场景解析器： ", zap.Bool("llm", config.Conf.Llm.ApiKey != ""))

	improveTimeout := time.Duration(config.Conf.Improver.TimeoutSec) * time.Second
	var improver types.TextImprover
	switch config.Conf.Improver.Provider {
	case "openai":
		improver = openai.NewClient(config.Conf.Improver.BaseUrl, config.Conf.Improver.ApiKey, config.Conf.Improver.Model, config.Conf.App.Proxy)
	case "rest":
		improver = improve.NewRestClient(config.Conf.Improver.BaseUrl, config.Conf.Improver.ApiKey, improveTimeout)
	default:
		// none：纯规则增强
	}
	log.GetLogger().Info("当前选择的润色源： ", zap.String("improver", config.Conf.Improver.Provider))

	pl := planner.New(reg, improver, improveTimeout)
	pl.SetMaxSegmentsWarn(config.Conf.Planner.MaxSegmentsWarn)

	return &Service{
		SceneParser: sceneParser,
		Improver:    improver,
		Registry:    reg,
		Planner:     pl,
	}
}
