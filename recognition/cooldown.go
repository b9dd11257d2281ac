package recognition

import (
	"fmt"
	"image"
	"time"
)

// regionKeyBucket quantizes region coordinates so that small jitter between
// frames maps to the same key. This is a coarse positional key, not a face
// identity: a face that moves across the frame produces new keys and can
// bypass the cooldown. Multi-frame tracking is deliberately not attempted.
const regionKeyBucket = 32

func regionKey(r image.Rectangle) string {
	return fmt.Sprintf("%d:%d:%d:%d",
		r.Min.X/regionKeyBucket,
		r.Min.Y/regionKeyBucket,
		r.Dx()/regionKeyBucket,
		r.Dy()/regionKeyBucket,
	)
}

// alertCooldown rate-limits alert writes per region key. It is private to
// the single-threaded engine loop and needs no locking.
type alertCooldown struct {
	window time.Duration
	last   map[string]time.Time
}

func newAlertCooldown(window time.Duration) *alertCooldown {
	return &alertCooldown{window: window, last: make(map[string]time.Time)}
}

// ready reports whether an alert may be written for the region at the given
// time. It does not stamp; call stamp only after a confirmed write so a
// failed write stays eligible for retry.
func (c *alertCooldown) ready(region image.Rectangle, now time.Time) bool {
	if c.window <= 0 {
		return true
	}
	ts, ok := c.last[regionKey(region)]
	if !ok {
		return true
	}
	return now.Sub(ts) >= c.window
}

func (c *alertCooldown) stamp(region image.Rectangle, now time.Time) {
	c.last[regionKey(region)] = now
	if len(c.last) > 4096 {
		c.compact(now)
	}
}

func (c *alertCooldown) compact(now time.Time) {
	for k, ts := range c.last {
		if now.Sub(ts) > c.window {
			delete(c.last, k)
		}
	}
}
