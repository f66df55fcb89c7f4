package dao

import (
	"context"
	"log/slog"

	"github.com/oshokin/mapdao/dao/store"
)

// DAO is a named, shared record store opened through a Registry.
//
// It exposes every store.Store operation directly and adds Backup and
// Restore driven by its Options.
type DAO[K comparable, V any] struct {
	store.Store[K, V]

	name   string
	opts   Options
	codec  store.Codec[V]
	logger *slog.Logger
}

// Name returns the name the DAO was opened with.
func (d *DAO[K, V]) Name() string {
	return d.name
}

// Options returns the options the DAO was created with.
func (d *DAO[K, V]) Options() Options {
	return d.opts
}

// Backup writes the records matching q to the configured snapshot file.
// The zero Query backs up everything.
func (d *DAO[K, V]) Backup(ctx context.Context, q store.Query[V]) (*store.BackupSummary, error) {
	if d.opts.Snapshot == nil {
		return nil, classifyError(ErrSnapshotDisabled)
	}

	summary, err := store.Backup(ctx, d.Store, d.codec, &store.BackupOptions[V]{
		FileName: d.opts.Snapshot.Path,
		Query:    q,
		Logger:   d.logger.With("dao", d.name),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	return summary, nil
}

// Restore replaces the DAO's records with the configured snapshot file,
// honoring the snapshot budgets.
func (d *DAO[K, V]) Restore() (*store.RestoreSummary, error) {
	opts, err := d.opts.Snapshot.ToRestoreOptions()
	if err != nil {
		return nil, classifyError(err)
	}

	opts.Logger = d.logger.With("dao", d.name)

	summary, err := store.Restore(d.Store, d.codec, opts)
	if err != nil {
		return nil, classifyError(err)
	}

	return summary, nil
}

// Query runs q and collects the matching records.
// A query that ends with Error returns the classified error along with the
// records delivered before it.
func (d *DAO[K, V]) Query(ctx context.Context, q store.Query[V]) ([]V, error) {
	sink := store.NewListSink[V]()
	d.Select(ctx, sink, q)

	return sink.Records(), classifyError(sink.Err())
}
