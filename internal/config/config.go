package config

import (
	"os"
	"strconv"
)

// Config holds all PlantScope configuration.
type Config struct {
	Server Server
	Engine Engine
	Remote Remote
}

// Server holds HTTP listener settings.
type Server struct {
	Addr       string
	LogLevel   string
	LogConsole bool
}

// Engine holds local-classifier settings.
type Engine struct {
	ModelPath           string
	ClassesPath         string
	ConfidenceThreshold float64
}

// Remote holds cloud-model settings. An empty APIKey disables both remote
// collaborators without preventing startup.
type Remote struct {
	APIKey      string
	VisionModel string
	TextModel   string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Server: Server{
			Addr:       getenv("PLANTSCOPE_ADDR", ":8000"),
			LogLevel:   getenv("PLANTSCOPE_LOG_LEVEL", "info"),
			LogConsole: getenvBool("PLANTSCOPE_LOG_CONSOLE", false),
		},
		Engine: Engine{
			ModelPath:           getenv("PLANTSCOPE_MODEL_PATH", "models/vit_plantvillage.onnx"),
			ClassesPath:         getenv("PLANTSCOPE_CLASSES_PATH", "models/plant_classes.json"),
			ConfidenceThreshold: getenvFloat("PLANTSCOPE_CONFIDENCE_THRESHOLD", 40.0),
		},
		Remote: Remote{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			VisionModel: getenv("PLANTSCOPE_GEMINI_VISION_MODEL", "gemini-1.5-flash"),
			TextModel:   getenv("PLANTSCOPE_GEMINI_TEXT_MODEL", "gemini-1.5-flash"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
