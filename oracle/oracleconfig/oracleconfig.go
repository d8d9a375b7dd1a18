// Package oracleconfig loads chain-query oracle settings from a JSON file.
package oracleconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/oracle/grpcoracle"
)

// Config describes how to reach the chain-query oracle.
//
// Example:
//
//	{
//	  "target": "127.0.0.1:9090",
//	  "timeout_ms": 3000,
//	  "cache_ttl_ms": 300000
//	}
type Config struct {
	// Target is the gRPC address of the oracle service.
	Target string `json:"target"`
	// TimeoutMS bounds each oracle RPC. Zero means no per-RPC timeout.
	TimeoutMS int `json:"timeout_ms,omitempty"`
	// CacheTTLMS is the lookup cache lifetime. Zero selects the default TTL.
	CacheTTLMS int `json:"cache_ttl_ms,omitempty"`
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("oracleconfig: empty path")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("oracleconfig: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("oracleconfig: %w", err)
	}
	if cfg.Target == "" {
		return cfg, errors.New("oracleconfig: target is required")
	}
	if cfg.TimeoutMS < 0 || cfg.CacheTTLMS < 0 {
		return cfg, errors.New("oracleconfig: negative duration")
	}
	return cfg, nil
}

// Open dials the configured oracle and wraps it in a TTL cache.
// The returned closer shuts the underlying connection down.
func Open(cfg Config) (oracle.ChainQuery, func() error, error) {
	client, err := grpcoracle.Dial(cfg.Target, grpcoracle.DialOptions{
		Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}
	client.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	cache := oracle.NewCache(client, time.Duration(cfg.CacheTTLMS)*time.Millisecond)
	return cache, client.Close, nil
}
