package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                string        `env:"HOST"`
	Port                int           `env:"PORT,required=true"`
	BadgerFilepath      string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath       string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel            string        `env:"LOG_LEVEL,required=true"`
	SweepInterval       time.Duration `env:"SWEEP_INTERVAL,required=true"`
	InactivityThreshold time.Duration `env:"INACTIVITY_THRESHOLD,required=true"`
	MetricInterval      time.Duration `env:"METRIC_INTERVAL,required=true"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,required=true"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT,required=true"`
	LimitMessages       *int          `env:"LIMIT_MESSAGES"`
	CharReplacement     string        `env:"CHARACTER_REPLACEMENT,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
