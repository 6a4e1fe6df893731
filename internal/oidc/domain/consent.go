package domain

import "time"

// Consent records when a user last approved a client.
type Consent struct {
	Subject     string
	ClientID    string
	ConsentedAt time.Time
}
