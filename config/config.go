package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Api struct {
		Host    string        `envconfig:"API_HOST" default:"hubs.pushmesh.io" required:"true"`
		Path    string        `envconfig:"API_PATH" default:"/v1/hubs" required:"true"`
		Port    uint16        `envconfig:"API_PORT" default:"443" required:"true"`
		Token   string        `envconfig:"API_TOKEN" required:"true"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"1m" required:"true"`
	}
	Log struct {
		Level int `envconfig:"LOG_LEVEL" default:"-4" required:"true"`
	}
}

func NewConfigFromEnv() (cfg Config, err error) {
	err = envconfig.Process("", &cfg)
	return
}
