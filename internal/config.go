package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	UploadDir      string `env:"UPLOAD_DIR,default=uploads"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL,default="`

	JwtSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=30s"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=16"`

	CensoredWords   string `env:"CENSORED_WORDS,default="`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`
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
