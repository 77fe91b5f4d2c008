package devstub

import "time"

// Config holds configuration for the stub upstream.
type Config struct {
	Addr          string        // listen address for cmd/devstub
	Headlines     int           // items returned per feed search
	Latency       time.Duration // artificial delay added to every response
	FailEntities  []string      // searches for these entities answer 503
	BrokenModelOn string        // inference answers 500 for inputs containing this text
}

// DefaultConfig returns the settings cmd/devstub starts with.
func DefaultConfig() Config {
	return Config{
		Addr:      "127.0.0.1:9091",
		Headlines: 10,
	}
}
