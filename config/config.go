package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"storyboard-ai/internal/appdirs"
	"storyboard-ai/log"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	Proxy       string   `toml:"proxy"`
	ParsedProxy *url.URL `toml:"-"`
}

// LlmConfig 场景解析所用的大模型（OpenAI 兼容接口）
type LlmConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// ImproverConfig 提示词润色协作方配置。为空时走本地规则增强。
type ImproverConfig struct {
	Provider   string `toml:"provider"` // openai | rest | none
	BaseUrl    string `toml:"base_url"`
	ApiKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	TimeoutSec int    `toml:"timeout_sec"`
}

type PlannerConfig struct {
	DefaultModel    string `toml:"default_model"`
	MaxSegmentsWarn int    `toml:"max_segments_warn"`
}

type QueueConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	App      AppConfig      `toml:"app"`
	Llm      LlmConfig      `toml:"llm"`
	Improver ImproverConfig `toml:"improver"`
	Planner  PlannerConfig  `toml:"planner"`
	Queue    QueueConfig    `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		Improver: ImproverConfig{
			Provider:   "none",
			TimeoutSec: 15,
		},
		Planner: PlannerConfig{
			DefaultModel:    "kling-v1.6",
			MaxSegmentsWarn: 100,
		},
		Queue: QueueConfig{
			RedisAddr:   "localhost:6379",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig 加载配置文件，不存在时写出默认配置。
// 返回值表示本次是否新建了配置文件。
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, err
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = writeConfig(configPath); err != nil {
			return false, err
		}
		return true, nil
	}

	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("解析配置文件失败 failed to decode config: %w", err)
	}
	applyDefaults()
	return false, nil
}

func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		log.GetLogger().Error("加载配置失败 failed to load config", zap.Error(err))
		return false
	}
	if created {
		log.GetLogger().Info("已生成默认配置文件 default config created")
	}
	return true
}

// CheckConfig 校验配置并解析代理地址。LLM 凭证缺失不算错误，
// 规划流程会退回到规则解析与规则增强。
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("无效的端口号 invalid server port: %d", Conf.Server.Port)
	}
	if Conf.App.Proxy != "" {
		parsed, err := url.Parse(Conf.App.Proxy)
		if err != nil {
			return fmt.Errorf("代理地址不合法 invalid proxy url: %w", err)
		}
		Conf.App.ParsedProxy = parsed
	}
	if Conf.Llm.ApiKey == "" {
		log.GetLogger().Warn("未配置LLM凭证，场景解析将使用规则解析器 no LLM credential, falling back to rule-based scene parser")
	}
	return nil
}

func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return err
	}
	return writeConfig(configPath)
}

func writeConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()
	return toml.NewEncoder(file).Encode(Conf)
}

func applyDefaults() {
	def := defaultConfig()
	if Conf.Server.Host == "" {
		Conf.Server.Host = def.Server.Host
	}
	if Conf.Server.Port == 0 {
		Conf.Server.Port = def.Server.Port
	}
	if Conf.Improver.Provider == "" {
		Conf.Improver.Provider = def.Improver.Provider
	}
	if Conf.Improver.TimeoutSec == 0 {
		Conf.Improver.TimeoutSec = def.Improver.TimeoutSec
	}
	if Conf.Planner.DefaultModel == "" {
		Conf.Planner.DefaultModel = def.Planner.DefaultModel
	}
	if Conf.Planner.MaxSegmentsWarn == 0 {
		Conf.Planner.MaxSegmentsWarn = def.Planner.MaxSegmentsWarn
	}
	if Conf.Queue.RedisAddr == "" {
		Conf.Queue.RedisAddr = def.Queue.RedisAddr
	}
	if Conf.Queue.Concurrency == 0 {
		Conf.Queue.Concurrency = def.Queue.Concurrency
	}
}
