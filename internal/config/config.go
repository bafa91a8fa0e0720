package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	DynamoEndpoint     string
	S3Endpoint         string

	DataTableName string
	AuthTableName string
	ElementBucket string

	JWTSecret string

	AdminUsername string
	AdminPassword string

	LLMProvider        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	DefaultModel       string
	DefaultTemperature float64
	SystemPrompt       string
}

func Load() *Config {
	// .env is optional; deployments normally use the process environment.
	_ = godotenv.Load()

	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		AWSRegion:          getEnv("AWS_REGION", "ap-northeast-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		DynamoEndpoint:     os.Getenv("DYNAMO_ENDPOINT"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),

		DataTableName: getEnv("DATA_TABLE", "ChatData"),
		AuthTableName: getEnv("AUTH_TABLE", "UserAuth"),
		ElementBucket: getEnv("ELEMENT_BUCKET", "chat-elements"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LLMProvider:        getEnv("LLM_PROVIDER", "bedrock"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		DefaultModel:       getEnv("DEFAULT_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),
		DefaultTemperature: getFloat("DEFAULT_TEMPERATURE", 0.7),
		SystemPrompt:       os.Getenv("SYSTEM_PROMPT"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
