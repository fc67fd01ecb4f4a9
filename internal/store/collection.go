package store

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection is the generic persistence surface for one named collection.
// It is the sole integration point with the backing store; repositories wrap
// it with typed domain queries.
type Collection[T any] struct {
	db   *gorm.DB
	name string
	pub  Publisher
}

func NewCollection[T any](db *gorm.DB, name string, pub Publisher) *Collection[T] {
	if pub == nil {
		pub = NopPublisher{}
	}
	return &Collection[T]{db: db, name: name, pub: pub}
}

// WithTx returns a copy of the collection bound to the given transaction.
// Change events still publish through the original publisher.
func (c *Collection[T]) WithTx(tx *gorm.DB) *Collection[T] {
	return &Collection[T]{db: tx, name: c.name, pub: c.pub}
}

// Name returns the collection name used in change subjects.
func (c *Collection[T]) Name() string {
	return c.name
}

// DB exposes the underlying handle for aggregate queries that outgrow the
// filter primitives (joins, counts). Still repository-layer territory only.
func (c *Collection[T]) DB() *gorm.DB {
	return c.db
}

// Find returns all matching records in the given order. No match is an empty
// slice, never an error.
func (c *Collection[T]) Find(ctx context.Context, filters []Filter, order *Order, limit int) ([]T, error) {
	records := make([]T, 0)
	err := withRetry(ctx, func() error {
		q := Apply(c.db.WithContext(ctx), filters)
		if order != nil {
			q = q.Order(order.clause())
		}
		if limit > 0 {
			q = q.Limit(limit)
		}
		return Classify(q.Find(&records).Error, c.name)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// FindOne returns the first matching record, or NotFound.
func (c *Collection[T]) FindOne(ctx context.Context, filters []Filter) (*T, error) {
	var record T
	err := withRetry(ctx, func() error {
		q := Apply(c.db.WithContext(ctx), filters)
		return Classify(q.First(&record).Error, c.name)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Count returns the number of matching records.
func (c *Collection[T]) Count(ctx context.Context, filters []Filter) (int64, error) {
	var model T
	var count int64
	err := withRetry(ctx, func() error {
		q := Apply(c.db.WithContext(ctx).Model(&model), filters)
		return Classify(q.Count(&count).Error, c.name)
	})
	return count, err
}

func (c *Collection[T]) Insert(ctx context.Context, record *T) error {
	err := withRetry(ctx, func() error {
		return Classify(c.db.WithContext(ctx).Create(record).Error, c.name)
	})
	if err != nil {
		return err
	}
	c.publish(ChangeInsert, record)
	return nil
}

// InsertMany creates several records in one statement.
func (c *Collection[T]) InsertMany(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}
	err := withRetry(ctx, func() error {
		return Classify(c.db.WithContext(ctx).Create(&records).Error, c.name)
	})
	if err != nil {
		return err
	}
	for i := range records {
		c.publish(ChangeInsert, &records[i])
	}
	return nil
}

// Update applies the given column values to all matching records and returns
// the number of rows touched.
func (c *Collection[T]) Update(ctx context.Context, filters []Filter, values map[string]any) (int64, error) {
	var model T
	var affected int64
	err := withRetry(ctx, func() error {
		q := Apply(c.db.WithContext(ctx).Model(&model), filters)
		res := q.Updates(values)
		affected = res.RowsAffected
		return Classify(res.Error, c.name)
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		c.publish(ChangeUpdate, map[string]any{"filters": describeFilters(filters), "values": values})
	}
	return affected, nil
}

func (c *Collection[T]) Delete(ctx context.Context, filters []Filter) error {
	var model T
	err := withRetry(ctx, func() error {
		q := Apply(c.db.WithContext(ctx), filters)
		return Classify(q.Delete(&model).Error, c.name)
	})
	if err != nil {
		return err
	}
	c.publish(ChangeDelete, map[string]any{"filters": describeFilters(filters)})
	return nil
}

// UpsertIgnore inserts the record, doing nothing on conflict over the given
// columns. This is the exactly-once primitive for lazily created records:
// concurrent first accesses race on the insert, one wins, nobody errors.
func (c *Collection[T]) UpsertIgnore(ctx context.Context, record *T, conflictColumns []string) error {
	cols := make([]clause.Column, 0, len(conflictColumns))
	for _, name := range conflictColumns {
		cols = append(cols, clause.Column{Name: name})
	}
	var affected int64
	err := withRetry(ctx, func() error {
		res := c.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: cols, DoNothing: true}).
			Create(record)
		affected = res.RowsAffected
		return Classify(res.Error, c.name)
	})
	if err != nil {
		return err
	}
	// A conflict that was ignored inserted nothing; no event for it.
	if affected > 0 {
		c.publish(ChangeInsert, record)
	}
	return nil
}

func (c *Collection[T]) publish(kind ChangeKind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	c.pub.Publish(ChangeEvent{Collection: c.name, Kind: kind, Payload: data})
}

func describeFilters(filters []Filter) []map[string]any {
	out := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		out = append(out, map[string]any{"field": f.Field, "op": string(f.Op), "value": f.Value})
	}
	return out
}
