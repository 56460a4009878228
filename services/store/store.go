package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kshyun328/storesnap/internal/scrape"
	serrors "kshyun328/storesnap/pkg/errors"
)

// SnapshotStore persists full-catalog snapshots keyed by (store URL, bucket)
type SnapshotStore interface {
	// HasSnapshot reports whether a snapshot exists for the key
	HasSnapshot(ctx context.Context, storeURL string, bucket int64) (bool, error)

	// ReadSnapshot returns the products stored under the key
	ReadSnapshot(ctx context.Context, storeURL string, bucket int64) ([]scrape.Product, error)

	// WriteSnapshot replaces the snapshot under the key in a single transaction
	WriteSnapshot(ctx context.Context, storeURL string, bucket int64, products []scrape.Product) error

	// History returns the buckets recorded for a store, newest first
	History(ctx context.Context, storeURL string) ([]int64, error)

	// Close releases the underlying connections
	Close()
}

// PGStore implements SnapshotStore on a pgx connection pool
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres and returns a snapshot store
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, serrors.NewConfiguration("invalid postgres dsn", err)
	}
	if cfg.MaxConns < 2 {
		cfg.MaxConns = 2
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, serrors.NewStorage("store", "postgres connect failed", err)
	}
	return &PGStore{pool: pool}, nil
}

// EnsureSchema creates the snapshot tables if they do not exist
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshot_products (
			store_url        TEXT        NOT NULL,
			bucket           BIGINT      NOT NULL,
			product_id       BIGINT      NOT NULL,
			title            TEXT        NOT NULL,
			price            BIGINT      NOT NULL,
			popularity_index INT         NOT NULL,
			is_sold_out      BOOLEAN     NOT NULL,
			category         TEXT        NOT NULL DEFAULT '',
			PRIMARY KEY (store_url, bucket, product_id)
		)`,
		`CREATE TABLE IF NOT EXISTS snapshot_history (
			store_url  TEXT        NOT NULL,
			bucket     BIGINT      NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (store_url, bucket)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return serrors.NewStorage("store", "schema create failed", err)
		}
	}
	return nil
}

// HasSnapshot reports whether a snapshot exists for (storeURL, bucket)
func (s *PGStore) HasSnapshot(ctx context.Context, storeURL string, bucket int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM snapshot_history WHERE store_url = $1 AND bucket = $2)`,
		storeURL, bucket,
	).Scan(&exists)
	if err != nil {
		return false, serrors.NewStorage("store", "snapshot lookup failed", err)
	}
	return exists, nil
}

// ReadSnapshot loads the products stored under (storeURL, bucket)
// in popularity order
func (s *PGStore) ReadSnapshot(ctx context.Context, storeURL string, bucket int64) ([]scrape.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, title, price, popularity_index, is_sold_out, category
		 FROM snapshot_products
		 WHERE store_url = $1 AND bucket = $2
		 ORDER BY popularity_index`,
		storeURL, bucket,
	)
	if err != nil {
		return nil, serrors.NewStorage("store", "snapshot read failed", err)
	}
	defer rows.Close()

	var products []scrape.Product
	for rows.Next() {
		var p scrape.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.PopularityIndex, &p.IsSoldOut, &p.Category); err != nil {
			return nil, serrors.NewStorage("store", "snapshot row scan failed", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, serrors.NewStorage("store", "snapshot read failed", err)
	}
	return products, nil
}

// WriteSnapshot replaces the snapshot under (storeURL, bucket) and records
// the bucket in the history table. The delete and batch insert run in one
// transaction so readers never see a half-written snapshot.
func (s *PGStore) WriteSnapshot(ctx context.Context, storeURL string, bucket int64, products []scrape.Product) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return serrors.NewStorage("store", "snapshot tx begin failed", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM snapshot_products WHERE store_url = $1 AND bucket = $2`,
		storeURL, bucket,
	); err != nil {
		return serrors.NewStorage("store", "snapshot delete failed", err)
	}

	b := &pgx.Batch{}
	for _, p := range products {
		b.Queue(
			`INSERT INTO snapshot_products
			 (store_url, bucket, product_id, title, price, popularity_index, is_sold_out, category)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			storeURL, bucket, p.ID, p.Title, p.Price, p.PopularityIndex, p.IsSoldOut, p.Category,
		)
	}
	b.Queue(
		`INSERT INTO snapshot_history (store_url, bucket, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (store_url, bucket) DO NOTHING`,
		storeURL, bucket, time.Now().UTC(),
	)

	br := tx.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return serrors.NewStorage("store", "snapshot insert failed", err)
		}
	}
	if err := br.Close(); err != nil {
		return serrors.NewStorage("store", "snapshot batch close failed", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return serrors.NewStorage("store", "snapshot commit failed", err)
	}
	return nil
}

// History returns the buckets recorded for a store, newest first
func (s *PGStore) History(ctx context.Context, storeURL string) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT bucket FROM snapshot_history WHERE store_url = $1 ORDER BY bucket DESC`,
		storeURL,
	)
	if err != nil {
		return nil, serrors.NewStorage("store", "history read failed", err)
	}
	defer rows.Close()

	var buckets []int64
	for rows.Next() {
		var b int64
		if err := rows.Scan(&b); err != nil {
			return nil, serrors.NewStorage("store", "history row scan failed", err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, serrors.NewStorage("store", "history read failed", err)
	}
	return buckets, nil
}

// Close releases the connection pool
func (s *PGStore) Close() {
	s.pool.Close()
}
