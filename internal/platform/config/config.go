package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Agent captures everything the field agent needs at startup. Values come from
// environment variables so main stays lean and demos can flip behavior without
// rebuilding.
type Agent struct {
	// Addr is the localhost bind address for the UI-facing API.
	Addr string `env:"JEEVAN_ADDR" envDefault:"127.0.0.1:8045"`

	// DataPath is the device-local SQLite file holding every collection.
	// Empty selects the in-memory store (demos, tests).
	DataPath string `env:"JEEVAN_DATA_PATH" envDefault:"jeevan.db"`

	// VaultPassphrase seeds the vault's symmetric key. Demo-grade: real
	// deployments provision this through device key management.
	VaultPassphrase string `env:"JEEVAN_VAULT_PASSPHRASE" envDefault:"jeevan-demo-vault-passphrase"`

	// TokenSigningKey signs the submission receipt tokens handed back to the
	// UI. Demo-grade for the same reason as the vault passphrase.
	TokenSigningKey string `env:"JEEVAN_TOKEN_SIGNING_KEY" envDefault:"jeevan-demo-receipt-key"`

	// UploadURL is the remote batch endpoint. Empty selects the simulated
	// uploader.
	UploadURL string `env:"JEEVAN_UPLOAD_URL"`

	// UploadDelay is the artificial latency of the simulated uploader,
	// standing in for rural network round trips.
	UploadDelay time.Duration `env:"JEEVAN_UPLOAD_DELAY" envDefault:"1500ms"`

	// ForceOffline starts the agent with the manual offline override set,
	// regardless of actual connectivity. Used for controlled demos.
	ForceOffline bool `env:"JEEVAN_FORCE_OFFLINE"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"JEEVAN_LOG_LEVEL" envDefault:"info"`
}

// FromEnv builds the agent config from environment variables.
func FromEnv() (Agent, error) {
	var cfg Agent
	if err := env.Parse(&cfg); err != nil {
		return Agent{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
