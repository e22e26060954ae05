// Package config loads the validator node's TOML configuration file, the
// way cmd/gtos loads its node config: github.com/naoina/toml unmarshaled
// into a plain struct, with a small set of defaults applied first.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
)

// Pubkey is a 32-byte validator identity, encoded in TOML as a hex string.
type Pubkey [32]byte

// MarshalText implements encoding.TextMarshaler so Pubkey fields round-trip
// through TOML as hex strings instead of byte arrays.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(p[:])), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Pubkey) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("config: invalid pubkey hex: %w", err)
	}
	if len(b) != len(p) {
		return fmt.Errorf("config: pubkey must be %d bytes, got %d", len(p), len(b))
	}
	copy(p[:], b)
	return nil
}

// Config is the validator node's full runtime configuration.
type Config struct {
	// Self is this node's validator identity.
	Self Pubkey

	// Validators is the fixed round-robin leader schedule.
	Validators []Pubkey

	// RotationInterval is the number of ledger entries each validator
	// authors per turn before rotating to the next.
	RotationInterval uint64

	// LedgerPath is the on-disk LevelDB directory. Empty means run with an
	// in-memory ledger (useful for local testing, never for production).
	LedgerPath string `toml:",omitempty"`

	// ListenAddr is the DBR's bound UDP endpoint, host:port.
	ListenAddr string

	// VoteResponderAddr is the destination the vote responder sends leader
	// vote blobs to.
	VoteResponderAddr string

	// VoteQueueCapacity bounds the vote responder's send queue. Zero uses
	// the package default.
	VoteQueueCapacity int `toml:",omitempty"`
}

var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// Load reads and parses the TOML config file at path, starting from
// Defaults so an omitted field keeps its default rather than zeroing out.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	cfg := Defaults
	err = tomlSettings.NewDecoder(f).Decode(&cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = fmt.Errorf("config: %s, %w", path, err)
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("config: parse %s", path), err)
	}
	return &cfg, nil
}

// Defaults holds the config values a node starts from before a file is
// applied on top.
var Defaults = Config{
	RotationInterval:  10,
	ListenAddr:        "0.0.0.0:8001",
	VoteQueueCapacity: 64,
}
