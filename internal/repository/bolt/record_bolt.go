package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"datapost/internal/model"
	"datapost/internal/repository"
)

// RecordBolt is an embedded implementation of repository.RecordRepository for
// single-node deployments and local tooling. Each collection is one bucket
// keyed by record ID; values are JSON-encoded records.
//
// Lookups scan the collection bucket, which is fine for the small number of
// records a collection is meant to hold.
type RecordBolt struct {
	db     *bbolt.DB
	bucket []byte
}

var _ repository.RecordRepository = (*RecordBolt)(nil)

// Open opens or creates the bbolt file at path and ensures the collection
// bucket exists.
func Open(path, collection string) (*RecordBolt, error) {
	if collection == "" {
		return nil, fmt.Errorf("bolt: collection is required")
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open: %w", err)
	}

	bucket := []byte(collection)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt create bucket: %w", err)
	}

	return &RecordBolt{db: db, bucket: bucket}, nil
}

// Close releases the database file.
func (r *RecordBolt) Close() error {
	return r.db.Close()
}

// PingContext reports whether the database is still open.
func (r *RecordBolt) PingContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(func(*bbolt.Tx) error { return nil })
}

// Insert stores a new record. Title and type tag must be unused in the
// collection; the check and the write share one transaction.
func (r *RecordBolt) Insert(ctx context.Context, rec *model.Record) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	err = r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(r.bucket)
		if b.Get([]byte(rec.ID)) != nil {
			return repository.ErrDuplicate
		}
		dup := false
		err := eachRecord(b, func(existing model.Record) {
			if existing.TypeTag == rec.TypeTag && existing.Title == rec.Title {
				dup = true
			}
		})
		if err != nil {
			return err
		}
		if dup {
			return repository.ErrDuplicate
		}
		return b.Put([]byte(rec.ID), data)
	})
	if err != nil {
		return nil, err
	}

	out := *rec
	return &out, nil
}

// FindByID returns the record stored under id.
func (r *RecordBolt) FindByID(ctx context.Context, id string) (*model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec model.Record
	err := r.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(r.bucket).Get([]byte(id))
		if value == nil {
			return repository.ErrNotFound
		}
		// value is only valid inside the transaction; Unmarshal copies.
		return json.Unmarshal(value, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update rewrites title and content in place.
func (r *RecordBolt) Update(ctx context.Context, id, title, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(r.bucket)
		value := b.Get([]byte(id))
		if value == nil {
			return repository.ErrNotFound
		}

		var rec model.Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		rec.Title = title
		rec.Content = content
		rec.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

// Query returns matching records ordered newest first, then by ID descending,
// which is the same order the Postgres store uses.
func (r *RecordBolt) Query(ctx context.Context, q repository.RecordQuery) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]model.Record, 0)
	err := r.db.View(func(tx *bbolt.Tx) error {
		return eachRecord(tx.Bucket(r.bucket), func(rec model.Record) {
			if rec.TypeTag != q.TypeTag {
				return
			}
			if q.Match == repository.MatchExact {
				if rec.Title != q.Title {
					return
				}
			} else if !strings.Contains(rec.Title, q.Title) {
				return
			}
			items = append(items, rec)
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit := q.EffectiveLimit(); len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Delete removes a record. Deleting a missing key is not an error in bbolt.
func (r *RecordBolt) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(r.bucket).Delete([]byte(id))
	})
}

func eachRecord(b *bbolt.Bucket, fn func(model.Record)) error {
	return b.ForEach(func(_, value []byte) error {
		var rec model.Record
		if err := json.Unmarshal(value, &rec); err != nil {
			return err
		}
		fn(rec)
		return nil
	})
}
