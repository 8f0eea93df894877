// Package reconcile keeps a client-held collection consistent across an
// optimistic local mutation, the remote write's eventual outcome, and an
// independently pushed change event describing the same record.
//
// The local insert and the pushed confirmation race: either can arrive
// first, and neither carries the other's identifier. The collection
// therefore deduplicates twice: by server identifier when it is known, and
// by semantic-field equality against a still-pending placeholder when it is
// not. Every event is applied as one whole state transition, so the visible
// state converges to the same result regardless of arrival order.
package reconcile

import (
	"strings"

	"github.com/google/uuid"
)

// localIDPrefix tags locally generated placeholder identifiers so they can
// never collide with, or be mistaken for, a server-issued id.
const localIDPrefix = "local-"

// NewLocalID returns a fresh placeholder identifier.
func NewLocalID() string {
	return localIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id was generated by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}

// Change is the kind of a pushed record-change event.
type Change string

const (
	ChangeInsert Change = "insert"
	ChangeUpdate Change = "update"
	ChangeDelete Change = "delete"
)

// Record is a collection element: it exposes its identifier and can decide
// whether another record carries the same semantic fields (ignoring ids).
type Record[T any] interface {
	Key() string
	SameAs(T) bool
}

// Collection is the visible, UI-owned state of one record set. It is not
// safe for concurrent use; callers apply one event at a time.
type Collection[T Record[T]] struct {
	items   []T
	removed map[string]removedEntry[T]
}

type removedEntry[T any] struct {
	record T
	index  int
}

// NewCollection wraps a loaded snapshot. The slice is copied.
func NewCollection[T Record[T]](items []T) *Collection[T] {
	c := &Collection[T]{
		items:   make([]T, len(items)),
		removed: make(map[string]removedEntry[T]),
	}
	copy(c.items, items)
	return c
}

// Items returns a copy of the visible records, newest first.
func (c *Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

// SubmitCreate inserts a placeholder at the front of the collection before
// any network confirmation exists. The placeholder's key should come from
// NewLocalID.
func (c *Collection[T]) SubmitCreate(placeholder T) {
	c.items = append([]T{placeholder}, c.items...)
}

// ConfirmCreate resolves a successful remote write: the placeholder created
// under localID is replaced by the authoritative record. When a push event
// already replaced the placeholder, the confirmation is a no-op — the
// record with the server id is kept and no duplicate appears.
func (c *Collection[T]) ConfirmCreate(localID string, authoritative T) {
	if c.indexOf(authoritative.Key()) >= 0 {
		// Push got here first; discard the placeholder if it lingers.
		c.removeAt(c.indexOf(localID))
		return
	}
	if i := c.indexOf(localID); i >= 0 {
		c.items[i] = authoritative
		return
	}
	c.items = append([]T{authoritative}, c.items...)
}

// FailCreate rolls back an optimistic insert whose remote write failed.
func (c *Collection[T]) FailCreate(localID string) {
	c.removeAt(c.indexOf(localID))
}

// ApplyPush merges an asynchronously delivered change event.
//
// Inserts are idempotent by server id; an unknown id is first matched
// semantically against a pending placeholder (replacing it in place), and
// only prepended as genuinely new when no placeholder matches. Updates
// replace an existing record and are otherwise ignored. Deletes remove by
// id and also clear any retained pending-delete entry for the same record.
func (c *Collection[T]) ApplyPush(change Change, record T) {
	switch change {
	case ChangeInsert:
		if c.indexOf(record.Key()) >= 0 {
			return
		}
		for i, item := range c.items {
			if IsLocalID(item.Key()) && item.SameAs(record) {
				c.items[i] = record
				return
			}
		}
		c.items = append([]T{record}, c.items...)
	case ChangeUpdate:
		if i := c.indexOf(record.Key()); i >= 0 {
			c.items[i] = record
		}
	case ChangeDelete:
		c.removeAt(c.indexOf(record.Key()))
		delete(c.removed, record.Key())
	}
}

// SubmitDelete removes a record immediately, retaining it (and its
// position) until the remote delete's outcome is known. The removed record
// is returned for the caller's own bookkeeping.
func (c *Collection[T]) SubmitDelete(id string) (T, bool) {
	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, false
	}
	record := c.items[i]
	c.removed[id] = removedEntry[T]{record: record, index: i}
	c.removeAt(i)
	return record, true
}

// ConfirmDelete discards the retained copy after the remote delete
// succeeded.
func (c *Collection[T]) ConfirmDelete(id string) {
	delete(c.removed, id)
}

// FailDelete reinstates a record whose remote delete failed, at its
// original position where possible.
func (c *Collection[T]) FailDelete(id string) {
	entry, ok := c.removed[id]
	if !ok {
		return
	}
	delete(c.removed, id)
	i := entry.index
	if i > len(c.items) {
		i = len(c.items)
	}
	c.items = append(c.items[:i], append([]T{entry.record}, c.items[i:]...)...)
}

func (c *Collection[T]) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, item := range c.items {
		if item.Key() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) removeAt(i int) {
	if i < 0 || i >= len(c.items) {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}
