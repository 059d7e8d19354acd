package config

import "time"

// Default configuration values.
const (
	DefaultFlushMode     = "lazy"
	DefaultFlushInterval = time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default database configuration.
func Default() *Spec {
	return &Spec{
		PrettyPrint: true,
		WAL: WALSection{
			Enabled:       true,
			FlushMode:     DefaultFlushMode,
			FlushInterval: DefaultFlushInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
