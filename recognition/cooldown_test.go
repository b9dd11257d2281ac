package recognition

import (
	"image"
	"testing"
	"time"
)

func TestRegionKeyAbsorbsJitter(t *testing.T) {
	a := image.Rect(100, 100, 200, 200)
	b := image.Rect(105, 98, 204, 203) // a few pixels of per-frame jitter
	if regionKey(a) != regionKey(b) {
		t.Fatalf("jittered regions should share a key: %s vs %s", regionKey(a), regionKey(b))
	}

	c := image.Rect(400, 100, 500, 200)
	if regionKey(a) == regionKey(c) {
		t.Fatal("distant regions must not share a key")
	}
}

func TestCooldownWindow(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	region := image.Rect(100, 100, 200, 200)
	c := newAlertCooldown(5 * time.Second)

	if !c.ready(region, base) {
		t.Fatal("first sighting must be ready")
	}
	c.stamp(region, base)

	if c.ready(region, base.Add(2*time.Second)) {
		t.Fatal("region inside the window must be suppressed")
	}
	if c.ready(region, base.Add(4999*time.Millisecond)) {
		t.Fatal("region just inside the window must be suppressed")
	}
	if !c.ready(region, base.Add(5*time.Second)) {
		t.Fatal("region at the window boundary must be ready")
	}
}

func TestCooldownReadyWithoutStamp(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	region := image.Rect(0, 0, 64, 64)
	c := newAlertCooldown(5 * time.Second)

	// ready alone must not start a window; only a confirmed write stamps
	if !c.ready(region, base) || !c.ready(region, base.Add(time.Second)) {
		t.Fatal("unstamped region must stay ready")
	}
}

func TestZeroCooldownDisablesRateLimit(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	region := image.Rect(0, 0, 64, 64)
	c := newAlertCooldown(0)

	c.stamp(region, base)
	if !c.ready(region, base) {
		t.Fatal("zero window must never suppress")
	}
}
