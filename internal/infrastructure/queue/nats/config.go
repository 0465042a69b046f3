package nats

import "time"

// Config holds JetStream connection and delivery settings.
type Config struct {
	URL            string
	Stream         string
	Subject        string
	Durable        string
	MaxDeliver     int
	BackOff        []time.Duration
	AttemptTimeout time.Duration
}

// DefaultConfig returns the delivery settings the verification worker runs with.
func DefaultConfig() Config {
	return Config{
		URL:        "nats://localhost:4222",
		Stream:     "COMMISSION_EVENTS",
		Subject:    "commissions.payment.affecting",
		Durable:    "verification-worker",
		MaxDeliver: 3,
		BackOff: []time.Duration{
			30 * time.Second,
			60 * time.Second,
			120 * time.Second,
		},
		AttemptTimeout: 120 * time.Second,
	}
}
