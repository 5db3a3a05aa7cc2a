package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	UploadDir      string        `mapstructure:"upload_dir"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	Secret         string        `mapstructure:"secret"`
	CatapultAPIURL string        `mapstructure:"catapult_api_url"`
	RingAudioURL   string        `mapstructure:"ring_audio_url"`
	AuthLimit      int           `mapstructure:"auth_limit"`
	AuthWindow     time.Duration `mapstructure:"auth_window"`
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
	v.SetDefault("port", 3000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("upload_dir", os.TempDir())
	v.SetDefault("read_limit", 32768)
	v.SetDefault("catapult_api_url", "https://api.catapult.inetwork.com")
	v.SetDefault("ring_audio_url", "https://s3.amazonaws.com/bwdemos/media/ring.mp3")
	v.SetDefault("auth_limit", 5)
	v.SetDefault("auth_window", "1m")

	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
