package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := parse([]byte(`{"port": "8080", "default_rating": 1900, "hard_deadline_grace_ms": 250}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Port != "8080" || c.DefaultRating != 1900 || c.HardDeadlineGrace() != 250*time.Millisecond {
		t.Fatalf("unexpected config %+v", c)
	}
	if c.QueueCapacity != Default().QueueCapacity || c.TTMaxEntries != Default().TTMaxEntries {
		t.Fatalf("missing fields lost their defaults: %+v", c)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"port":`,
		"empty port":     `{"port": ""}`,
		"zero queue":     `{"queue_capacity": 0}`,
		"negative grace": `{"hard_deadline_grace_ms": -1}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parse([]byte(data)); err == nil {
				t.Fatalf("expected an error for %s", data)
			}
		})
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	c := Default()
	env := map[string]string{"PORT": "9999", "MINECHESS_LOG_LEVEL": "debug"}
	applyEnv(&c, func(key string) string { return env[key] })
	if c.Port != "9999" || c.Level() != zerolog.DebugLevel {
		t.Fatalf("env not applied: %+v", c)
	}
}

func TestOriginsAreTrimmed(t *testing.T) {
	c := Default()
	c.AllowOrigins = "http://a.test, http://b.test ,,"
	got := c.Origins()
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("origins = %q", got)
	}
}

func TestLevelFallsBackToInfo(t *testing.T) {
	c := Default()
	c.LogLevel = "loud"
	if c.Level() != zerolog.InfoLevel {
		t.Fatalf("level = %v", c.Level())
	}
}

func TestGetWithoutLoadReturnsDefaults(t *testing.T) {
	if cfg != nil {
		t.Skip("configuration already loaded by another test")
	}
	if got := Get(); got.Port != Default().Port {
		t.Fatalf("Get() = %+v", got)
	}
}
