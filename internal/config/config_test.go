package config

import (
	"testing"
	"time"
)

func TestLoadSweepConfigDefaults(t *testing.T) {
	t.Setenv("SWEEP_ENABLED", "")
	t.Setenv("SWEEP_CRON", "")
	t.Setenv("SWEEP_LOCK_TTL", "")
	c := LoadSweepConfig()
	if !c.Enabled || c.Schedule != "*/15 * * * *" || c.LockTTL != 2*time.Minute {
		t.Fatalf("defaults = %+v", c)
	}

	t.Setenv("SWEEP_ENABLED", "off")
	t.Setenv("SWEEP_CRON", "5 * * * *")
	t.Setenv("SWEEP_LOCK_TTL", "30s")
	c = LoadSweepConfig()
	if c.Enabled || c.Schedule != "5 * * * *" || c.LockTTL != 30*time.Second {
		t.Fatalf("overrides = %+v", c)
	}
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	c := LoadRateLimitConfig()
	if c.Capacity != 1 || c.TTL != 10*time.Second {
		t.Fatalf("config = %+v", c)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	if loc := (Config{Timezone: "Mars/Olympus"}).Location(); loc != time.UTC {
		t.Fatalf("location = %v", loc)
	}
	if loc := (Config{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("location = %v", loc)
	}
}

func TestParseMethods(t *testing.T) {
	m := parseMethods(" get, head ,,")
	if len(m) != 2 || !m["GET"] || !m["HEAD"] {
		t.Fatalf("methods = %v", m)
	}
}
