package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// SessionID identifies this document session on the host bridge.
var SessionID = uuid.NewString()

// Clock hands out draw-order ids. Ids are never reused, even across pages.
type Clock struct {
	next atomic.Int64
}

// Next returns a fresh draw-order id.
func (c *Clock) Next() int64 {
	return c.next.Add(1) - 1
}

// Peek returns the id the next call to Next will return.
func (c *Clock) Peek() int64 {
	return c.next.Load()
}

// Observe makes sure future ids are greater than order.
func (c *Clock) Observe(order int64) {
	for {
		cur := c.next.Load()
		if order < cur {
			return
		}
		if c.next.CompareAndSwap(cur, order+1) {
			return
		}
	}
}

// Reset sets the counter so the next id is n.
func (c *Clock) Reset(n int64) {
	c.next.Store(n)
}
