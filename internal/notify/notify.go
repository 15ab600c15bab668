// Package notify holds transient, per-session user notifications.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL      = 5 * time.Second
	DefaultCapacity = 16
)

type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Notifier accepts fire-and-forget messages.
type Notifier interface {
	Error(message string)
	Info(message string)
}

// Center queues notifications until they are drained or expire. When full the
// oldest entry is dropped.
type Center struct {
	ttl      time.Duration
	capacity int
	now      func() time.Time

	mu      sync.Mutex
	pending []Notification
}

func NewCenter(ttl time.Duration, capacity int) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Center{
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

func (c *Center) Error(message string) {
	c.push(LevelError, message)
}

func (c *Center) Info(message string) {
	c.push(LevelInfo, message)
}

func (c *Center) push(level Level, message string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = append(c.pending, Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})

	if over := len(c.pending) - c.capacity; over > 0 {
		c.pending = append(c.pending[:0], c.pending[over:]...)
	}
}

// Drain returns the unexpired notifications in arrival order and clears the queue.
func (c *Center) Drain() []Notification {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Notification, 0, len(c.pending))
	for _, n := range c.pending {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	c.pending = nil

	return out
}

// Len reports how many notifications are waiting, expired ones included.
func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}
