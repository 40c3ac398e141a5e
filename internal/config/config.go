package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"quizforge/internal/domain"
	"quizforge/internal/generator"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Redis      RedisConfig
	Inference  InferenceConfig
	Catalog    CatalogConfig
	Generation GenerationConfig
	Batch      BatchConfig
	Tracing    TracingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

// RedisConfig is optional. An empty address disables the result store and
// the embedding cache.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	ResultTTL    time.Duration
	EmbeddingTTL time.Duration
}

// Inference sources.
const (
	SourceHTTP   = "http"
	SourceOllama = "ollama"
	SourceOpenAI = "openai"
	SourceNone   = "none"
)

// ModelConfig points at one inference backend.
type ModelConfig struct {
	Source  string
	URL     string
	Model   string
	APIKey  string
	Timeout time.Duration
	// MaxRetries applies to the http source only.
	MaxRetries int
}

type InferenceConfig struct {
	QA        ModelConfig
	Seq       ModelConfig
	Embedding ModelConfig
}

type CatalogConfig struct {
	TopicsPath           string
	TemplatesPath        string
	KeywordTemplatesPath string
}

type GenerationConfig struct {
	TemplateBatchSize        int
	OversampleFactor         int
	MinAnswerScore           float64
	UseNeural                bool
	NeuralQuestionCount      int
	MaxInputTokens           int
	MaxNewTokens             int
	NumBeams                 int
	Temperature              float64
	OptionCount              int
	SummaryMinTokens         int
	SummaryMaxTokens         int
	DocumentSummaryChars     int
	DocumentSummaryMinTokens int
	DocumentSummaryMaxTokens int
	TokenizerEncoding        string
}

// TracingConfig controls OpenTelemetry export. Spans go to stdout unless
// an OTLP/HTTP endpoint is set.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type BatchConfig struct {
	Concurrency int
	InputGlob   string
	OutputDir   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.body_limit", 4*1024*1024)

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.result_ttl", "24h")
	v.SetDefault("redis.embedding_ttl", "168h")

	v.SetDefault("inference.qa.source", SourceHTTP)
	v.SetDefault("inference.qa.url", "http://localhost:8000/qa")
	v.SetDefault("inference.qa.timeout", "60s")
	v.SetDefault("inference.qa.max_retries", 2)
	v.SetDefault("inference.seq.source", SourceHTTP)
	v.SetDefault("inference.seq.url", "http://localhost:8000/generate")
	v.SetDefault("inference.seq.timeout", "120s")
	v.SetDefault("inference.seq.max_retries", 2)
	v.SetDefault("inference.embedding.source", SourceNone)
	v.SetDefault("inference.embedding.timeout", "30s")

	d := generator.DefaultParams()
	v.SetDefault("generation.template_batch_size", d.TemplateBatchSize)
	v.SetDefault("generation.oversample_factor", d.OversampleFactor)
	v.SetDefault("generation.min_answer_score", d.MinAnswerScore)
	v.SetDefault("generation.use_neural", d.UseNeural)
	v.SetDefault("generation.neural_question_count", d.NeuralQuestionCount)
	v.SetDefault("generation.max_input_tokens", d.Neural.MaxInputTokens)
	v.SetDefault("generation.max_new_tokens", d.Neural.MaxNewTokens)
	v.SetDefault("generation.num_beams", d.Neural.NumBeams)
	v.SetDefault("generation.temperature", d.Neural.Temperature)
	v.SetDefault("generation.option_count", d.OptionCount)
	v.SetDefault("generation.summary_min_tokens", d.Summary.MinNewTokens)
	v.SetDefault("generation.summary_max_tokens", d.Summary.MaxNewTokens)
	v.SetDefault("generation.document_summary_chars", d.DocumentSummaryChars)
	v.SetDefault("generation.document_summary_min_tokens", d.DocumentSummary.MinNewTokens)
	v.SetDefault("generation.document_summary_max_tokens", d.DocumentSummary.MaxNewTokens)
	v.SetDefault("generation.tokenizer_encoding", "cl100k_base")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "quizforge")
	v.SetDefault("tracing.sample_ratio", 0.1)

	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.input_glob", "./input/*.txt")
	v.SetDefault("batch.output_dir", "./output")
}

// LoadConfig reads config.yaml from the usual locations. Environment
// variables override file values, e.g. REDIS_ADDRESS for redis.address.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	return load(v)
}

// LoadConfigFile reads the given file instead of searching for config.yaml.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return nil, domain.NewConfigLoadError("config file", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		Redis: RedisConfig{
			Address:      v.GetString("redis.address"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			ResultTTL:    v.GetDuration("redis.result_ttl"),
			EmbeddingTTL: v.GetDuration("redis.embedding_ttl"),
		},
		Inference: InferenceConfig{
			QA:        modelConfig(v, "inference.qa"),
			Seq:       modelConfig(v, "inference.seq"),
			Embedding: modelConfig(v, "inference.embedding"),
		},
		Catalog: CatalogConfig{
			TopicsPath:           v.GetString("catalog.topics_path"),
			TemplatesPath:        v.GetString("catalog.templates_path"),
			KeywordTemplatesPath: v.GetString("catalog.keyword_templates_path"),
		},
		Generation: GenerationConfig{
			TemplateBatchSize:        v.GetInt("generation.template_batch_size"),
			OversampleFactor:         v.GetInt("generation.oversample_factor"),
			MinAnswerScore:           v.GetFloat64("generation.min_answer_score"),
			UseNeural:                v.GetBool("generation.use_neural"),
			NeuralQuestionCount:      v.GetInt("generation.neural_question_count"),
			MaxInputTokens:           v.GetInt("generation.max_input_tokens"),
			MaxNewTokens:             v.GetInt("generation.max_new_tokens"),
			NumBeams:                 v.GetInt("generation.num_beams"),
			Temperature:              v.GetFloat64("generation.temperature"),
			OptionCount:              v.GetInt("generation.option_count"),
			SummaryMinTokens:         v.GetInt("generation.summary_min_tokens"),
			SummaryMaxTokens:         v.GetInt("generation.summary_max_tokens"),
			DocumentSummaryChars:     v.GetInt("generation.document_summary_chars"),
			DocumentSummaryMinTokens: v.GetInt("generation.document_summary_min_tokens"),
			DocumentSummaryMaxTokens: v.GetInt("generation.document_summary_max_tokens"),
			TokenizerEncoding:        v.GetString("generation.tokenizer_encoding"),
		},
		Batch: BatchConfig{
			Concurrency: v.GetInt("batch.concurrency"),
			InputGlob:   v.GetString("batch.input_glob"),
			OutputDir:   v.GetString("batch.output_dir"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("tracing.enabled"),
			ServiceName: v.GetString("tracing.service_name"),
			Endpoint:    v.GetString("tracing.endpoint"),
			Insecure:    v.GetBool("tracing.insecure"),
			SampleRatio: v.GetFloat64("tracing.sample_ratio"),
		},
	}

	// The OpenAI key is commonly exported without a prefix.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for _, mc := range []*ModelConfig{&cfg.Inference.QA, &cfg.Inference.Seq, &cfg.Inference.Embedding} {
			if mc.Source == SourceOpenAI && mc.APIKey == "" {
				mc.APIKey = key
			}
		}
	}

	return cfg, nil
}

func modelConfig(v *viper.Viper, prefix string) ModelConfig {
	return ModelConfig{
		Source:  strings.ToLower(v.GetString(prefix + ".source")),
		URL:     v.GetString(prefix + ".url"),
		Model:   v.GetString(prefix + ".model"),
		APIKey:  v.GetString(prefix + ".api_key"),
		Timeout: v.GetDuration(prefix + ".timeout"),

		MaxRetries: v.GetInt(prefix + ".max_retries"),
	}
}

// Params converts the generation section into engine parameters.
func (g GenerationConfig) Params() generator.Params {
	p := generator.DefaultParams()
	p.TemplateBatchSize = g.TemplateBatchSize
	p.OversampleFactor = g.OversampleFactor
	p.MinAnswerScore = g.MinAnswerScore
	p.UseNeural = g.UseNeural
	p.NeuralQuestionCount = g.NeuralQuestionCount
	p.Neural.MaxInputTokens = g.MaxInputTokens
	p.Neural.MaxNewTokens = g.MaxNewTokens
	p.Neural.NumBeams = g.NumBeams
	p.Neural.Temperature = g.Temperature
	p.OptionCount = g.OptionCount
	p.Summary.MinNewTokens = g.SummaryMinTokens
	p.Summary.MaxNewTokens = g.SummaryMaxTokens
	p.DocumentSummaryChars = g.DocumentSummaryChars
	p.DocumentSummary.MinNewTokens = g.DocumentSummaryMinTokens
	p.DocumentSummary.MaxNewTokens = g.DocumentSummaryMaxTokens
	return p
}
