package internal

import "time"

type Config struct {
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	JWTSecret  string        `env:"JWT_SECRET,required=true"`
	SessionTTL time.Duration `env:"SESSION_TTL,default=5h"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=3s"`
	ReadTimeout          time.Duration `env:"READ_TIMEOUT,default=5m"`
	PersistenceTimeout   time.Duration `env:"PERSISTENCE_TIMEOUT,default=2s"`

	SweepInterval    time.Duration `env:"SWEEP_INTERVAL,default=15m"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,default=30s"`
	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,default=4096"`
}
