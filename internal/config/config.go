package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Debug    bool   `yaml:"debug" env:"EOM_DEBUG" env-default:"false"`
	Location string `yaml:"location" env-default:"UTC"`
	LogPath  string `yaml:"log_path" env-default:""`
	Listen   struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"8080"`
	} `yaml:"listen"`
	SQL struct {
		Enabled  bool   `yaml:"enabled" env-default:"true"`
		Driver   string `yaml:"driver" env-default:"mysql"`
		HostName string `yaml:"hostname" env-default:"localhost"`
		UserName string `yaml:"username" env-default:"root"`
		Password string `yaml:"password" env:"EOM_SQL_PASSWORD" env-default:""`
		Database string `yaml:"database" env-default:""`
		Port     string `yaml:"port" env-default:"3306"`
		Prefix   string `yaml:"prefix" env-default:"wp_"`
	} `yaml:"sql"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env:"EOM_MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env-default:"easyorders"`
	} `yaml:"mongo"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BotName string `yaml:"bot_name" env-default:""`
		ApiKey  string `yaml:"api_key" env:"EOM_TELEGRAM_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
	} `yaml:"telegram"`
	Auth struct {
		Secret     string        `yaml:"secret" env:"EOM_AUTH_SECRET" env-required:"true"`
		SessionTTL time.Duration `yaml:"session_ttl" env-default:"12h"`
		NonceTTL   time.Duration `yaml:"nonce_ttl" env-default:"24h"`
	} `yaml:"auth"`
	RateLimit struct {
		Limit  int           `yaml:"limit" env-default:"10"`
		Window time.Duration `yaml:"window" env-default:"60s"`
	} `yaml:"rate_limit"`
	Http struct {
		RPS            float64  `yaml:"rps" env-default:"20"`
		Burst          int      `yaml:"burst" env-default:"40"`
		Timeout        int      `yaml:"timeout" env-default:"5"`
		AllowedOrigins []string `yaml:"allowed_origins" env-default:"*"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"http"`
	Columns struct {
		Strict       bool              `yaml:"strict" env-default:"false"`
		CustomFields map[string]string `yaml:"custom_fields"`
	} `yaml:"columns"`
	Statuses []string `yaml:"statuses" env-default:"on-hold,processing,completed"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// TimeLocation resolves the configured location, UTC when it is unknown.
func (c *Config) TimeLocation() *time.Location {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
