package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"5250"`

		// Path to the sqlite database file
		DatabasePath string `env:"DATABASE_PATH" envDefault:"database/compscout.db"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of comp batches buffered before pushes fail
		QueueSize int `env:"BATCH_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	// Geocoding configuration
	Geocoding struct {
		// Minutes between background geocoding passes
		RefreshInterval int `env:"GEOCODE_REFRESH_MINUTES" envDefault:"30"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
