package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	SessionPath string `yaml:"session_path" env:"SESSION_PATH" env-default:"./session.json"`
	HTTPServer  `yaml:"http_server"`
	Upstream    `yaml:"upstream"`
	Redis       `yaml:"redis"`
	Booking     `yaml:"booking"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

type Upstream struct {
	BaseURL    string        `yaml:"base_url" env:"UPSTREAM_BASE_URL" env-required:"true"`
	Timeout    time.Duration `yaml:"timeout" env-default:"60s"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

type Redis struct {
	// Empty address disables the response cache.
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"30s"`
}

type Booking struct {
	SlotStepMinutes int `yaml:"slot_step_minutes" env-default:"30"`
	HorizonDays     int `yaml:"horizon_days" env-default:"30"`
}

func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return &cfg
}
