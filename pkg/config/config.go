package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the immutable configuration for a benchmark run. It is built
// once at startup and threaded into every component; nothing reads the
// environment directly after Load returns.
type Config struct {
	Service  ServiceConfig
	LLM      LLMConfig
	Paths    PathsConfig
	Datasets DatasetsConfig
	Query    QueryConfig
	Server   ServerConfig
	SQLite   SQLiteConfig
	Logging  LoggingConfig
}

// ServiceConfig points at the memory service under evaluation.
type ServiceConfig struct {
	URL    string
	APIKey string
	Zone   string
}

type LLMConfig struct {
	APIKey         string
	BaseURL        string
	AnswerModel    string
	JudgeModel     string
	EmbeddingModel string
	TimeoutSec     int
}

type PathsConfig struct {
	DataDir    string
	ResultsDir string
}

type DatasetsConfig struct {
	Run              []string
	LocomoSubset     string
	LongMemEvalSplit string
	TOFUForgetPct    int
}

type QueryConfig struct {
	MemorySearchLimit int
	AnswerMaxTokens   int
	JudgeMaxTokens    int
}

type ServerConfig struct {
	Host string
	Port int
}

type SQLiteConfig struct {
	Path string
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("membench")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/membench")

	viper.SetEnvPrefix("MEMBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("service.url", "http://localhost:2026")
	viper.SetDefault("service.apiKey", "")
	viper.SetDefault("service.zone", "corp")

	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "https://api.openai.com/v1")
	viper.SetDefault("llm.answerModel", "gpt-4o-mini")
	viper.SetDefault("llm.judgeModel", "gpt-4o")
	viper.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("paths.dataDir", "data")
	viper.SetDefault("paths.resultsDir", "results")

	viper.SetDefault("datasets.run", []string{"locomo", "longmemeval", "tofu"})
	viper.SetDefault("datasets.locomoSubset", "all")
	viper.SetDefault("datasets.longMemEvalSplit", "S")
	viper.SetDefault("datasets.tofuForgetPct", 10)

	viper.SetDefault("query.memorySearchLimit", 10)
	viper.SetDefault("query.answerMaxTokens", 100)
	viper.SetDefault("query.judgeMaxTokens", 200)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("sqlite.path", "./results/membench.db")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.outputPath", "stdout")
}
