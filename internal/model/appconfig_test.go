package model

import (
	"fmt"
	"testing"
)

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultStackCap != defaults.StackCap {
		t.Errorf("StackCap mismatch: config=%d settings=%d", cfg.DefaultStackCap, defaults.StackCap)
	}
	if cfg.RecentPlans == nil {
		t.Error("RecentPlans should not be nil")
	}
	if cfg.DefaultContainers == nil {
		t.Error("DefaultContainers should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultStackCap = 3

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.StackCap != 3 {
		t.Errorf("expected StackCap=3, got %d", s.StackCap)
	}
}

func TestAddRecentPlan(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentPlan("a.json")
	cfg.AddRecentPlan("b.json")
	cfg.AddRecentPlan("a.json")

	if len(cfg.RecentPlans) != 2 || cfg.RecentPlans[0] != "a.json" || cfg.RecentPlans[1] != "b.json" {
		t.Errorf("unexpected recent plans: %v", cfg.RecentPlans)
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentPlan(fmt.Sprintf("plan-%d.json", i))
	}
	if len(cfg.RecentPlans) != maxRecentPlans {
		t.Errorf("expected %d recent plans, got %d", maxRecentPlans, len(cfg.RecentPlans))
	}
	if cfg.RecentPlans[0] != "plan-19.json" {
		t.Errorf("expected newest first, got %s", cfg.RecentPlans[0])
	}
}
