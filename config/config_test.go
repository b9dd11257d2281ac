package config

import (
	"testing"
	"time"
)

func TestValidSession(t *testing.T) {
	for _, label := range Sessions {
		if !ValidSession(label) {
			t.Errorf("expected %q to be a valid session label", label)
		}
	}
	for _, label := range []string{"", "morning", "Night", "Morning "} {
		if ValidSession(label) {
			t.Errorf("expected %q to be rejected", label)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.ConfidenceThreshold != defaultConfidenceThreshold {
		t.Errorf("expected default confidence threshold %g, got %g", defaultConfidenceThreshold, cfg.ConfidenceThreshold)
	}
	if cfg.FaceSizeWidth != defaultFaceSizeWidth || cfg.FaceSizeHeight != defaultFaceSizeHeight {
		t.Errorf("unexpected default face size %dx%d", cfg.FaceSizeWidth, cfg.FaceSizeHeight)
	}
	if cfg.AlertCooldown != defaultAlertCooldownSecs*time.Second {
		t.Errorf("expected default alert cooldown %ds, got %v", defaultAlertCooldownSecs, cfg.AlertCooldown)
	}
	if !ValidSession(cfg.SessionLabel) {
		t.Errorf("default session label %q is not valid", cfg.SessionLabel)
	}
}

func TestLoadConfigRejectsBadSessionLabel(t *testing.T) {
	t.Setenv("SESSION_LABEL", "Midnight")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for an unknown session label")
	}
}

func TestLoadConfigRejectsNegativeCooldown(t *testing.T) {
	t.Setenv("ALERT_COOLDOWN_SECONDS", "-3")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for a negative cooldown")
	}
}
