package dao

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/mapdao/dao/store"
)

type (
	// Options controls how a named DAO is created the first time it is opened.
	//
	// Example YAML:
	//
	//	shardCount: 16
	//	maxSize: 10000
	//	metrics: true
	//	snapshot:
	//	  path: ./users.snapshot
	//	  maxEntries: 1000000
	//	  maxBytes: 256MB
	Options struct {
		// ShardCount sets the number of shards of the backing MapStore.
		// If <= 0, defaults to runtime.NumCPU().
		// If > store.MaxShardCount, capped at store.MaxShardCount.
		ShardCount int `yaml:"shardCount"`

		// MaxSize bounds the DAO to its MaxSize most recently put records.
		// Zero leaves the DAO unbounded.
		MaxSize int64 `yaml:"maxSize"`

		// Metrics registers Prometheus collectors for the DAO when the
		// registry was created with a Registerer.
		Metrics bool `yaml:"metrics"`

		// Snapshot enables Backup and Restore. Nil disables them.
		Snapshot *SnapshotOptions `yaml:"snapshot"`
	}

	// SnapshotOptions configures the bbolt snapshot of a DAO.
	SnapshotOptions struct {
		// Path is the snapshot file. Empty selects store.DefaultSnapshotPath.
		Path string `yaml:"path"`

		// MaxEntries caps how many records Restore loads. Zero disables the cap.
		MaxEntries int64 `yaml:"maxEntries"`

		// MaxBytes caps the payload Restore hydrates. Zero disables the cap.
		//
		// Accepted types:
		//   - number: bytes.
		//   - string: size, e.g. "64MB", "1GiB".
		MaxBytes any `yaml:"maxBytes"`
	}
)

// LoadOptions reads and validates the YAML options file at path.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("%w: read %q: %w", ErrOptionsRead, path, err)
	}

	return ParseOptions(data)
}

// ParseOptions decodes and validates YAML options. Unknown fields are rejected
// so typos fail fast instead of silently selecting defaults.
func ParseOptions(data []byte) (Options, error) {
	var opts Options

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	// An empty document decodes to the defaults.
	if err := decoder.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("%w: parse yaml: %w", ErrOptionsRead, err)
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

// Validate checks structural constraints on the options.
func (o Options) Validate() error {
	if o.MaxSize < 0 {
		return fmt.Errorf("%w: maxSize must not be negative: %d", ErrOptionsInvalid, o.MaxSize)
	}

	return o.Snapshot.Validate()
}

// Equal checks if two Options describe the same DAO.
func (o Options) Equal(other Options) bool {
	return o.getShardCount() == other.getShardCount() &&
		o.MaxSize == other.MaxSize &&
		o.Metrics == other.Metrics &&
		o.Snapshot.Equal(other.Snapshot)
}

// ToMapConfig converts the options into a store-level MapConfig.
func (o Options) ToMapConfig() *store.MapConfig {
	return &store.MapConfig{
		ShardCount: o.ShardCount,
	}
}

// ToLRUConfig converts the options into a store-level LRUConfig.
// It returns nil when the DAO is unbounded.
func (o Options) ToLRUConfig() *store.LRUConfig {
	if o.MaxSize <= 0 {
		return nil
	}

	return &store.LRUConfig{
		MaxSize: o.MaxSize,
	}
}

// getShardCount collapses automatic shard selection into a single comparable value.
func (o Options) getShardCount() int {
	if o.ShardCount <= 0 {
		return 0
	}

	return min(o.ShardCount, store.MaxShardCount)
}

// Validate validates SnapshotOptions and returns an error if invalid.
func (so *SnapshotOptions) Validate() error {
	if so == nil {
		return nil
	}

	if so.MaxEntries < 0 {
		return fmt.Errorf("%w: snapshot.maxEntries must not be negative: %d", ErrOptionsInvalid, so.MaxEntries)
	}

	if _, err := sizeToInt64(so.MaxBytes); err != nil {
		return fmt.Errorf("%w: snapshot.maxBytes: %w", ErrOptionsInvalid, err)
	}

	return nil
}

// Equal checks if two SnapshotOptions are equal. Sizes are compared by value,
// so "1MiB" equals 1048576.
func (so *SnapshotOptions) Equal(other *SnapshotOptions) bool {
	if so == nil || other == nil {
		return so == nil && other == nil
	}

	return so.Path == other.Path &&
		so.MaxEntries == other.MaxEntries &&
		sizeValuesEqual(so.MaxBytes, other.MaxBytes)
}

// ToRestoreOptions converts the snapshot options into store-level RestoreOptions.
func (so *SnapshotOptions) ToRestoreOptions() (*store.RestoreOptions, error) {
	if so == nil {
		return nil, ErrSnapshotDisabled
	}

	maxBytes, err := sizeToInt64(so.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot.maxBytes: %w", ErrOptionsInvalid, err)
	}

	return &store.RestoreOptions{
		FileName:   so.Path,
		MaxEntries: so.MaxEntries,
		MaxBytes:   maxBytes,
	}, nil
}
