package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Ledger holds the connection parameters for the external ledger node.
type Ledger struct {
	Endpoint        string  `yaml:"endpoint"`
	ContractAddress string  `yaml:"contract_address"`
	ChainID         int64   `yaml:"chain_id"`
	GasCeiling      uint64  `yaml:"gas_ceiling"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	RequestsPerSec  float64 `yaml:"requests_per_sec"`
}

// Timeout is the per-call deadline for ledger writes. A ledger call times
// out rather than hang; the workflow treats a timeout like any other
// failed write.
func (l Ledger) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// Config is the application configuration loaded from config.yaml with
// environment-variable overrides for deployment.
type Config struct {
	Ledger Ledger `yaml:"ledger"`
}

// Defaults applied when neither the file nor the environment sets a value.
const (
	defaultGasCeiling     = 500_000
	defaultTimeout        = 15 * time.Second
	defaultRequestsPerSec = 5
)

// Load reads the YAML config file if present, then applies environment
// overrides. A missing file is not an error; the environment alone can
// configure everything.
//
// Environment variables:
//   - LEDGER_ENDPOINT: JSON-RPC endpoint of the ledger node
//   - LEDGER_CONTRACT: address of the recorder contract
//   - LEDGER_CHAIN_ID: numeric chain id
//   - LEDGER_GAS_CEILING: upper bound applied to gas estimates
func Load(path string) (Config, error) {
	cfg := Config{
		Ledger: Ledger{
			GasCeiling:     defaultGasCeiling,
			RequestsPerSec: defaultRequestsPerSec,
		},
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if v := os.Getenv("LEDGER_ENDPOINT"); v != "" {
		cfg.Ledger.Endpoint = v
	}
	if v := os.Getenv("LEDGER_CONTRACT"); v != "" {
		cfg.Ledger.ContractAddress = v
	}
	if v := os.Getenv("LEDGER_CHAIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("LEDGER_CHAIN_ID: %w", err)
		}
		cfg.Ledger.ChainID = id
	}
	if v := os.Getenv("LEDGER_GAS_CEILING"); v != "" {
		ceiling, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("LEDGER_GAS_CEILING: %w", err)
		}
		cfg.Ledger.GasCeiling = ceiling
	}

	return cfg, nil
}
