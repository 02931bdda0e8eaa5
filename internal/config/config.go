package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	MaxBodyKB      int64         `mapstructure:"MAX_BODY_KB"`
	StorageBackend string        `mapstructure:"STORAGE_BACKEND"`
	BlobAPIURL     string        `mapstructure:"BLOB_API_URL"`
	BlobToken      string        `mapstructure:"BLOB_READ_WRITE_TOKEN"`
	BlobPrefix     string        `mapstructure:"BLOB_PREFIX"`
	BlobRatePerSec float64       `mapstructure:"BLOB_RATE_PER_SEC"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	DataDir        string        `mapstructure:"DATA_DIR"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_BODY_KB", 512)
	v.SetDefault("STORAGE_BACKEND", "memory")
	v.SetDefault("BLOB_API_URL", "https://blob.vercel-storage.com")
	v.SetDefault("BLOB_READ_WRITE_TOKEN", "")
	v.SetDefault("BLOB_PREFIX", "timelinetracker-")
	v.SetDefault("BLOB_RATE_PER_SEC", 10)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATA_DIR", "./data")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
