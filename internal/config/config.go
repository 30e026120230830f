package config

import (
	"os"
	"strconv"
	"time"

	"placement-service/internal/adaptive"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	RabbitMQ RabbitMQConfig
	Bank     BankConfig
	Advisor  AdvisorConfig
	Media    MediaConfig
	Test     *adaptive.PlacementConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type BankConfig struct {
	// Source is "file" or "mongo".
	Source string
	File   string
}

type AdvisorConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

type MediaConfig struct {
	TTSBaseURL string
	TTSVoice   string
}

func Load() *Config {
	test := adaptive.DefaultPlacementConfig()
	test.QuestionsPerTest = getEnvAsInt("QUESTIONS_PER_TEST", test.QuestionsPerTest)
	test.CalibrationQuestions = getEnvAsInt("CALIBRATION_QUESTIONS", test.CalibrationQuestions)
	test.PerformanceWindowSize = getEnvAsInt("PERFORMANCE_WINDOW_SIZE", test.PerformanceWindowSize)
	test.LevelUpThreshold = getEnvAsFloat("LEVEL_UP_THRESHOLD", test.LevelUpThreshold)
	test.LevelDownThreshold = getEnvAsFloat("LEVEL_DOWN_THRESHOLD", test.LevelDownThreshold)
	test.StrongJumpAccuracy = getEnvAsFloat("STRONG_JUMP_ACCURACY", test.StrongJumpAccuracy)
	test.StrongJumpStreak = getEnvAsInt("STRONG_JUMP_STREAK", test.StrongJumpStreak)
	test.AdjustCooldown = getEnvAsInt("ADJUST_COOLDOWN", test.AdjustCooldown)
	test.AdvisorTimeout = time.Duration(getEnvAsInt("ADVISOR_TIMEOUT_SECONDS", 30)) * time.Second
	test.AdvisorEnabled = getEnvAsBool("ADVISOR_ENABLED", true)

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "6677"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "placement_service"),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", ""),
		},
		Bank: BankConfig{
			Source: getEnv("BANK_SOURCE", "file"),
			File:   getEnv("BANK_FILE", "data/questions.json"),
		},
		Advisor: AdvisorConfig{
			Enabled: test.AdvisorEnabled,
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		},
		Media: MediaConfig{
			TTSBaseURL: getEnv("TTS_BASE_URL", "https://cdn.novakidschool.com/api/0/text_to_speech"),
			TTSVoice:   getEnv("TTS_VOICE", "Brian"),
		},
		Test: test,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
