package adventure

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LORE_WEAVER_AUTH_SECRET", "s3cret")

	fs := flag.NewFlagSet("adventure", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8090" || cfg.GRPCAddr != ":8091" {
		t.Fatalf("addrs = %q %q", cfg.HTTPAddr, cfg.GRPCAddr)
	}
	if cfg.StartingBalance != 5 {
		t.Fatalf("starting balance = %v", cfg.StartingBalance)
	}
	if cfg.IdleTimeout != 300*time.Second || cfg.ConfirmTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v %v", cfg.IdleTimeout, cfg.ConfirmTimeout)
	}
	if cfg.DBPath != "data/adventure.db" || cfg.Locale != "en-US" {
		t.Fatalf("db path = %q locale = %q", cfg.DBPath, cfg.Locale)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LORE_WEAVER_AUTH_SECRET", "s3cret")
	t.Setenv("LORE_WEAVER_HTTP_ADDR", "env-http")
	t.Setenv("LORE_WEAVER_ADMIN_USER_ID", "env-admin")
	t.Setenv("LORE_WEAVER_IDLE_TIMEOUT", "10s")

	fs := flag.NewFlagSet("adventure", flag.ContinueOnError)
	args := []string{
		"-http-addr", "flag-http",
		"-starting-balance", "2.5",
		"-locale", "pt-BR",
	}
	cfg, err := ParseConfig(fs, args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-http" {
		t.Fatalf("expected flag http addr, got %q", cfg.HTTPAddr)
	}
	if cfg.AdminUserID != "env-admin" {
		t.Fatalf("expected env admin, got %q", cfg.AdminUserID)
	}
	if cfg.IdleTimeout != 10*time.Second {
		t.Fatalf("expected env idle timeout, got %v", cfg.IdleTimeout)
	}
	if cfg.StartingBalance != 2.5 || cfg.Locale != "pt-BR" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestParseConfigRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LORE_WEAVER_AUTH_SECRET", "")

	fs := flag.NewFlagSet("adventure", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected missing secret error")
	}
}
