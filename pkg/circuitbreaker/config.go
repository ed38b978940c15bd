package circuitbreaker

import "time"

// Config describes a breaker guarding one storage backend.
type Config struct {
	Name    string
	Enabled bool

	// MaxRequests bounds trial calls while half-open; zero means one.
	MaxRequests uint

	// Interval clears failure counts while closed; zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	FailureThreshold uint

	// IgnoredErrors never count as failures. Domain rejections such as a
	// duplicate id belong here so they cannot open the circuit.
	IgnoredErrors []error

	OnStateChange func(name string, from, to State)
}
