// Package notification holds transient user notifications and the activity
// log of store events.
package notification

import (
	"fmt"
	"sync"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

// Kind distinguishes success from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Defaults for a Center.
const (
	DefaultTTL      = 3 * time.Second
	DefaultCapacity = 50
)

// Notification is a transient message shown to the user until it expires
// or is dismissed.
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Center is a bounded queue of notifications with auto-dismiss.
// It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	items    []Notification
	ttl      time.Duration
	capacity int
	now      func() time.Time
	newID    func() string
}

// NewCenter creates a notification center. A non-positive ttl uses DefaultTTL.
func NewCenter(ttl time.Duration) (*Center, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	return &Center{
		items:    make([]Notification, 0),
		ttl:      ttl,
		capacity: DefaultCapacity,
		now:      time.Now,
		newID:    gen,
	}, nil
}

// Success pushes a success notification.
func (c *Center) Success(message string) Notification {
	return c.Push(KindSuccess, message)
}

// Error pushes an error notification.
func (c *Center) Error(message string) Notification {
	return c.Push(KindError, message)
}

// Push appends a notification, dropping the oldest beyond capacity.
func (c *Center) Push(kind Kind, message string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := Notification{
		ID:        c.newID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append(c.items[:0:0], c.items[over:]...)
	}
	return n
}

// Active prunes expired notifications and returns the rest, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.items = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes the notification with the given id. It reports whether
// one was removed.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}
