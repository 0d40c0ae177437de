package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
//
// Keys are laid out as:
//
//	<prefix><id>                          -> JSON document
//	<prefix>idx:<name>:<value>            -> id   (unique index)
//	<prefix>idx:<name>:<value>:<id>       -> ""   (non-unique index)
//	<prefix>idx:ref:<id>                  -> ""   (written by referencing writes)
//
// Index maintenance, unique checks and guards all run inside the same
// read-write transaction as the document write. Badger detects conflicts on
// keys, not ranges, so a referencing write also touches the target's ref key
// and a guarded delete reads it; one of two racing transactions then fails
// with badger.ErrConflict and is retried.
type Entity[T any] struct {
	db           *badger.DB
	prefix       string
	unique       []Index[T]
	indexes      []Index[T]
	writeGuards  []WriteGuard[T]
	deleteGuards []DeleteGuard
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name   string
	keyGen func(*T) []string
}

// WriteGuard runs inside the transaction of a Create or Update.
type WriteGuard[T any] func(txn *badger.Txn, entity *T) error

// DeleteGuard runs inside the transaction of a Delete, before anything is removed.
type DeleteGuard func(txn *badger.Txn, id string) error

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](db *badger.DB, prefix string) *Entity[T] {
	return &Entity[T]{db: db, prefix: prefix}
}

// WithUniqueIndex adds an index whose values must be unique across entities.
// A write that would reuse a value fails with ErrAlreadyExists.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.unique = append(e.unique, Index[T]{name: name, keyGen: keyGen})
	return e
}

// WithIndex adds a non-unique secondary index.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{name: name, keyGen: keyGen})
	return e
}

// WithWriteGuard adds a check run on every Create and Update.
func (e *Entity[T]) WithWriteGuard(g WriteGuard[T]) *Entity[T] {
	e.writeGuards = append(e.writeGuards, g)
	return e
}

// WithDeleteGuard adds a check run on every Delete of an existing entity.
func (e *Entity[T]) WithDeleteGuard(g DeleteGuard) *Entity[T] {
	e.deleteGuards = append(e.deleteGuards, g)
	return e
}

// maxTxnAttempts bounds retries of a write that lost a conflict.
const maxTxnAttempts = 3

func (e *Entity[T]) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnAttempts {
		err = e.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (e *Entity[T]) refKey(id string) []byte {
	return []byte(e.prefix + "idx:ref:" + id)
}

func (e *Entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *Entity[T]) uniqueKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

func (e *Entity[T]) indexPrefix(name, value string) string {
	return e.prefix + "idx:" + name + ":" + value + ":"
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if the ID or a unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(e.key(id)); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		for _, g := range e.writeGuards {
			if err := g(txn, entity); err != nil {
				return err
			}
		}

		if err := e.checkUnique(txn, entity, nil); err != nil {
			return err
		}

		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetMany retrieves the entities with the given IDs in one transaction.
// Missing IDs are skipped; order follows ids.
func (e *Entity[T]) GetMany(ctx context.Context, ids []string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(ids))
	err := e.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			entity, err := e.getTxn(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether id is stored, within txn.
func (e *Entity[T]) Exists(txn *badger.Txn, id string) (bool, error) {
	_, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return true, nil
}

// GetByIndex retrieves an entity by a unique index value.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.uniqueKey(indexName, value))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// ListByIndex returns every entity whose non-unique index name has value.
func (e *Entity[T]) ListByIndex(ctx context.Context, indexName, value string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []*T
	err := e.db.View(func(txn *badger.Txn) error {
		ids, err := e.indexedIDs(txn, indexName, value, 0)
		if err != nil {
			return err
		}
		for _, id := range ids {
			entity, err := e.getTxn(txn, id)
			if err != nil {
				return err
			}
			out = append(out, entity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountByIndex counts the entities whose non-unique index name has value.
func (e *Entity[T]) CountByIndex(ctx context.Context, indexName, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := e.db.View(func(txn *badger.Txn) error {
		ids, err := e.indexedIDs(txn, indexName, value, 0)
		n = len(ids)
		return err
	})
	return n, err
}

// indexedIDs returns up to limit ids under a non-unique index value.
// A limit of zero means no limit.
func (e *Entity[T]) indexedIDs(txn *badger.Txn, indexName, value string, limit int) ([]string, error) {
	prefix := []byte(e.indexPrefix(indexName, value))

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, string(it.Item().Key()[len(prefix):]))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	return ids, nil
}

// Update updates an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	return e.update(func(txn *badger.Txn) error {
		old, err := e.getTxn(txn, id)
		if err != nil {
			return err
		}

		for _, g := range e.writeGuards {
			if err := g(txn, entity); err != nil {
				return err
			}
		}

		if err := e.checkUnique(txn, entity, old); err != nil {
			return err
		}

		if err := e.deleteIndexes(txn, id, old); err != nil {
			return err
		}
		if err := txn.Set(e.key(id), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return e.update(func(txn *badger.Txn) error {
		entity, err := e.getTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		for _, g := range e.deleteGuards {
			if err := g(txn, id); err != nil {
				return err
			}
		}

		if err := e.deleteIndexes(txn, id, entity); err != nil {
			return err
		}
		if err := txn.Delete(e.refKey(id)); err != nil {
			return fmt.Errorf("failed to delete ref key: %w", err)
		}
		if err := txn.Delete(e.key(id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})
}

// List returns an iterator over all entities in key order.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		_ = e.db.View(func(txn *badger.Txn) error {
			prefix := []byte(e.prefix)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				if e.isIndexKey(it.Item().Key()) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// All collects List into a slice.
func (e *Entity[T]) All(ctx context.Context) ([]*T, error) {
	var out []*T
	for entity, err := range e.List(ctx) {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Count returns the number of stored entities without decoding them.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := e.db.View(func(txn *badger.Txn) error {
		prefix := []byte(e.prefix)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if !e.isIndexKey(it.Item().Key()) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (e *Entity[T]) isIndexKey(key []byte) bool {
	return strings.HasPrefix(string(key[len(e.prefix):]), "idx:")
}

func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// checkUnique fails when entity claims a unique value held by another
// entity. Values old already holds are not conflicts.
func (e *Entity[T]) checkUnique(txn *badger.Txn, entity, old *T) error {
	for _, idx := range e.unique {
		held := map[string]bool{}
		if old != nil {
			for _, v := range idx.keyGen(old) {
				held[v] = true
			}
		}
		for _, v := range idx.keyGen(entity) {
			if held[v] {
				continue
			}
			_, err := txn.Get(e.uniqueKey(idx.name, v))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, v, ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.unique {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set(e.uniqueKey(idx.name, v), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Set([]byte(e.indexPrefix(idx.name, v)+id), nil); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.unique {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete(e.uniqueKey(idx.name, v)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, idx := range e.indexes {
		for _, v := range idx.keyGen(entity) {
			if err := txn.Delete([]byte(e.indexPrefix(idx.name, v) + id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}

// RequireExisting returns a write guard that fails with ErrInvalidReference
// when any id produced by refs is not stored in target.
func RequireExisting[T, R any](target *Entity[R], what string, refs func(*T) []string) WriteGuard[T] {
	return func(txn *badger.Txn, entity *T) error {
		for _, id := range refs(entity) {
			ok, err := target.Exists(txn, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s %s: %w", what, id, ErrInvalidReference)
			}
			if err := txn.Set(target.refKey(id), nil); err != nil {
				return fmt.Errorf("failed to set ref key: %w", err)
			}
		}
		return nil
	}
}

// RejectReferenced returns a delete guard for owner. It fails with ErrReferenced while any dependent entity lists the
// deleted id under its index.
func RejectReferenced[O, R any](owner *Entity[O], dependent *Entity[R], indexName, what string) DeleteGuard {
	return func(txn *badger.Txn, id string) error {
		// Registers the ref key in the read set; the error is irrelevant.
		_, _ = txn.Get(owner.refKey(id))

		ids, err := dependent.indexedIDs(txn, indexName, id, 1)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			return fmt.Errorf("%s still reference %s: %w", what, id, ErrReferenced)
		}
		return nil
	}
}
