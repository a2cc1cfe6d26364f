package monitor

import "time"

type Status struct {
	Store           bool      `json:"store"`
	StoreDriver     string    `json:"store_driver"`
	StoreTx         *TxStats  `json:"store_tx,omitempty"`
	Redis           bool      `json:"redis"`
	RedisConfigured bool      `json:"redis_configured"`
	Relay           bool      `json:"relay"`
	RelayBacklog    int       `json:"relay_backlog"`
	LastCheck       time.Time `json:"last_check"`
}

// TxStats is the transaction activity of a file-backed store.
type TxStats struct {
	Started int `json:"started"`
	Open    int `json:"open"`
}

// Healthy reports whether every configured dependency answered the last check.
func (s Status) Healthy() bool {
	if !s.Store {
		return false
	}
	if s.RedisConfigured && !s.Redis {
		return false
	}
	return true
}
