package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	// 服务配置
	ServiceName string
	Host        string // 服务监听地址
	Port        int
	Debug       bool
	GinMode     string // Gin运行模式

	// 博主在WebSocket通道上的身份标识，联系通知推送到该用户
	BloggerUserID string

	// 路径配置
	BlogFilesPath    string // 博客Markdown文件目录
	ModelDir         string // 意图模型checkpoint目录
	VectorIndexPath  string // 向量索引持久化路径
	TrainingDataPath string // 意图训练数据文件

	// 意图模型超参数
	EmbeddingDim int
	HiddenDim    int
	NumLayers    int
	Dropout      float64
	MaxSeqLength int
	MinWordFreq  int
	BatchSize    int
	Epochs       int
	LearningRate float64

	// 意图决策阈值
	LowConfidenceThreshold float64 // 低于此置信度丢弃模型结果走关键词回退
	OverrideBoostThreshold float64 // 关键词增强覆盖阈值（可配置，见 arbiter）
	ConfidenceCeiling      float64 // 置信度上限

	// DeepSeek（OpenAI兼容）配置
	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string
	LLMTimeout      time.Duration

	// Redis配置
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	// 邮件配置
	SMTPServer     string
	SMTPPort       int
	SenderEmail    string
	SenderPassword string
	RecipientEmail string

	// 限流配置
	RateLimitPerMinute int // 每分钟允许的请求数
	MaxQuestionLength  int // 单条问题的最大字符数
}

// Load 从环境变量加载配置
func Load() *Config {
	// 尝试加载.env文件，优先尝试config目录，然后兼容根目录
	envPaths := []string{
		"config/.env",
		".env",
	}

	loaded := false
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				log.Printf("成功加载.env文件: %s", path)
				loaded = true
				break
			}
		}
	}

	if !loaded {
		log.Printf("警告: 未找到.env文件，使用系统环境变量")
	}

	cfg := &Config{
		// 服务配置默认值
		ServiceName: getEnv("SERVICE_NAME", "blog-assistant"),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnvAsInt("PORT", 8000),
		Debug:       getEnvAsBool("DEBUG", false),
		GinMode:     getEnv("GIN_MODE", "release"),

		BloggerUserID: getEnv("BLOGGER_USER_ID", "blogger"),

		// 路径配置
		BlogFilesPath:    getEnv("BLOG_FILES_PATH", "blog_files"),
		ModelDir:         getEnv("MODEL_DIR", filepath.Join("data", "model")),
		VectorIndexPath:  getEnv("VECTOR_INDEX_PATH", filepath.Join("data", "vector_index.json")),
		TrainingDataPath: getEnv("TRAINING_DATA_PATH", filepath.Join("data", "intent_training_data.json")),

		// 意图模型超参数（与历史训练配置保持一致）
		EmbeddingDim: getEnvAsInt("INTENT_EMBEDDING_DIM", 50),
		HiddenDim:    getEnvAsInt("INTENT_HIDDEN_DIM", 64),
		NumLayers:    getEnvAsInt("INTENT_NUM_LAYERS", 1),
		Dropout:      getEnvAsFloat("INTENT_DROPOUT", 0.2),
		MaxSeqLength: getEnvAsInt("INTENT_MAX_SEQ_LENGTH", 30),
		MinWordFreq:  getEnvAsInt("INTENT_MIN_WORD_FREQ", 1),
		BatchSize:    getEnvAsInt("INTENT_BATCH_SIZE", 8),
		Epochs:       getEnvAsInt("INTENT_EPOCHS", 20),
		LearningRate: getEnvAsFloat("INTENT_LEARNING_RATE", 0.001),

		// 意图决策阈值
		LowConfidenceThreshold: getEnvAsFloat("INTENT_LOW_CONFIDENCE", 0.6),
		OverrideBoostThreshold: getEnvAsFloat("INTENT_OVERRIDE_BOOST", 0.3),
		ConfidenceCeiling:      getEnvAsFloat("INTENT_CONFIDENCE_CEILING", 0.95),

		// DeepSeek配置
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		LLMTimeout:      getDurationEnv("LLM_TIMEOUT", 60*time.Second),

		// Redis配置
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6380"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		SessionTTL:    getDurationEnv("SESSION_TTL", 24*time.Hour),

		// 邮件配置
		SMTPServer:     getEnv("SMTP_SERVER", "smtp.qq.com"),
		SMTPPort:       getEnvAsInt("SMTP_PORT", 587),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		RecipientEmail: getEnv("RECIPIENT_EMAIL", ""),

		// 限流配置
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
		MaxQuestionLength:  getEnvAsInt("MAX_QUESTION_LENGTH", 1000),
	}

	return cfg
}

// String 返回配置摘要（不包含敏感信息）
func (c *Config) String() string {
	return fmt.Sprintf("Config{ServiceName: %s, Host: %s, Port: %d, Debug: %v, ModelDir: %s, BlogFilesPath: %s, RedisAddr: %s}",
		c.ServiceName, c.Host, c.Port, c.Debug, c.ModelDir, c.BlogFilesPath, c.RedisAddr)
}

// getEnv 获取环境变量，不存在时返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt 获取整数类型环境变量
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("警告: 环境变量 %s 不是合法整数，使用默认值 %d", key, defaultValue)
	}
	return defaultValue
}

// getEnvAsBool 获取布尔类型环境变量
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsFloat 获取浮点类型环境变量
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDurationEnv 获取时间间隔类型环境变量
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
