package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_LOG_LEVEL controls the session logger during scenarios
	LogLevel string `envconfig:"E2E_LOG_LEVEL" default:"info"`
	// E2E_BUFFER_SIZE sizes the presence channels of the loopback hub
	BufferSize int `envconfig:"E2E_BUFFER_SIZE" default:"16"`
	// E2E_RESTART_INTERVAL is the supervisor's worker restart delay
	RestartInterval time.Duration `envconfig:"E2E_RESTART_INTERVAL" default:"100ms"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
