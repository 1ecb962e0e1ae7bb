package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	URL string `envconfig:"SOCKET_URL" default:"ws://localhost:8080/ws"`
	// TESTER_DURATION stops the tester after a while, 0 waits for Ctrl+C
	Duration time.Duration `envconfig:"TESTER_DURATION" default:"0s"`
	// TESTER_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"TESTER_COLOURS" default:"true"`
	// TESTER_SEND_EVENT is sent once after connecting, with TESTER_SEND_DATA as data
	SendEvent string `envconfig:"TESTER_SEND_EVENT"`
	SendData  string `envconfig:"TESTER_SEND_DATA" default:"{}"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
