package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Realtime RealtimeConfig `yaml:"realtime"`
	ChatLog  ChatLogConfig  `yaml:"chat_log"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS"`
}

type RealtimeConfig struct {
	// BuzzerTTL is how long an activated buzzer stays on server-side.
	BuzzerTTL time.Duration `yaml:"buzzer_ttl" env:"BUZZER_TTL" env-default:"10s"`
	// MonitorInterval is the liveness sweep period.
	MonitorInterval time.Duration `yaml:"monitor_interval" env:"MONITOR_INTERVAL" env-default:"2m"`
	// StaleAfter is the idle threshold before a connection gets pinged.
	StaleAfter time.Duration `yaml:"stale_after" env:"STALE_AFTER" env-default:"5m"`
	// PongGrace is how long a pinged connection has to show life.
	PongGrace time.Duration `yaml:"pong_grace" env:"PONG_GRACE" env-default:"5s"`
	// ChatHistory caps the per-studio in-memory chat ring.
	ChatHistory int `yaml:"chat_history" env:"CHAT_HISTORY" env-default:"200"`
}

type ChatLogConfig struct {
	// DSN is the Postgres connection string for durable chat persistence.
	// Empty disables persistence; routing never depends on it.
	DSN string `yaml:"dsn" env:"CHAT_LOG_DSN"`
}

// MustLoad reads the config file named by -config or CONFIG_PATH. A missing
// path falls back to defaults from struct tags and the environment.
func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		return mustLoadEnv()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mustLoadEnv()
	}
	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}
	return &cfg
}

func mustLoadEnv() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("cannot read config from environment: " + err.Error())
	}
	return &cfg
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
