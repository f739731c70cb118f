package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	PublicURL     string
	PresetsFile   string
	MaxWorkspaces int
	LLM           LLMConfig
	Export        ExportConfig
}

type LLMConfig struct {
	Fake           bool
	APIKey         string
	ImageModel     string
	ChatModel      string
	RequestTimeout time.Duration
}

type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Expiry    time.Duration
}

func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs reads .env, then flags, then environment overrides.
func LoadArgs(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8080", "server port")
	presets := fs.String("presets", "", "YAML preset catalog")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:          *port,
		Env:           env,
		PublicURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		PresetsFile:   firstNonEmpty(strings.TrimSpace(os.Getenv("PRESETS_FILE")), *presets),
		MaxWorkspaces: envInt("MAX_WORKSPACES", 256),
		LLM:           loadLLMConfig(),
		Export:        loadExportConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	key := firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")))
	return LLMConfig{
		Fake:           envBool("LLM_FAKE", false) || key == "",
		APIKey:         key,
		ImageModel:     strings.TrimSpace(os.Getenv("GEMINI_IMAGE_MODEL")),
		ChatModel:      strings.TrimSpace(os.Getenv("GEMINI_CHAT_MODEL")),
		RequestTimeout: envDuration("LLM_REQUEST_TIMEOUT", 2*time.Minute),
	}
}

func loadExportConfig(env string) ExportConfig {
	if isLocal(env) {
		return localExportConfig()
	}
	endpoint := strings.TrimSpace(os.Getenv("EXPORT_S3_ENDPOINT"))
	return ExportConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("EXPORT_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("EXPORT_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("EXPORT_S3_BUCKET")), "interiorviz-renders"),
		UseSSL:    envBool("EXPORT_S3_USE_SSL", true),
		Expiry:    envDuration("EXPORT_URL_EXPIRY", time.Hour),
	}
}

func isLocal(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "local")
}

func envInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envBool(name string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envDuration(name string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// CanUseS3 reports whether the export S3 settings are complete.
func (c ExportConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}
