package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type ClientConfig struct {
	TokenURL string `mapstructure:"token_url"`

	Room     string `mapstructure:"room"`
	Identity string `mapstructure:"identity"`

	Role   string   `mapstructure:"role"`
	JD     string   `mapstructure:"jd"`
	Skills []string `mapstructure:"skills"`

	STUNURLs    []string      `mapstructure:"stun_urls"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`

	MicPath     string `mapstructure:"mic_path"`
	SpeakerPath string `mapstructure:"speaker_path"`
}

type TokendConfig struct {
	Port          int           `mapstructure:"port"`
	URL           string        `mapstructure:"url"`
	APIKey        string        `mapstructure:"api_key"`
	APISecret     string        `mapstructure:"api_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AllowedOrigin string        `mapstructure:"allowed_origin"`
}

type Config struct {
	Mode   string       `mapstructure:"mode"`
	Client ClientConfig `mapstructure:"client"`
	Tokend TokendConfig `mapstructure:"tokend"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("client.token_url", "http://localhost:8880")
	v.SetDefault("client.identity", "operator")
	v.SetDefault("client.stun_urls", []string{"stun:stun.l.google.com:19302"})
	v.SetDefault("client.dial_timeout", "15s")
	v.SetDefault("client.mic_path", "/dev/audio")
	v.SetDefault("client.speaker_path", "/dev/audio")
	v.SetDefault("tokend.port", 8880)
	v.SetDefault("tokend.url", "ws://localhost:7880")
	v.SetDefault("tokend.token_ttl", "1h")
	v.SetDefault("tokend.allowed_origin", "http://localhost:3000")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
