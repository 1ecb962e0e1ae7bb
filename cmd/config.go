package main

import (
	"socket-deva/runtime"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	BusBufferSize        int           `env:"BUS_BUFFER_SIZE,default=1024"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	DedupWindow          time.Duration `env:"DEDUP_WINDOW,default=1m"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	ClientID             string        `env:"CLIENT_ID"`
	ClientName           string        `env:"CLIENT_NAME,default=socket-deva"`
}

func (c Config) Relay() runtime.Config {
	return runtime.Config{
		Host:                 c.Host,
		Port:                 c.Port,
		ConnectionBufferSize: c.ConnectionBufferSize,
		DedupWindow:          c.DedupWindow,
		RestartInterval:      c.RestartInterval,
		MetricInterval:       c.MetricInterval,
	}
}
