// Package adventure parses adventure server flags and runs the server.
package adventure

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/Womp-Womp/AdventureBot/internal/platform/cmd"
	server "github.com/Womp-Womp/AdventureBot/internal/services/adventure/app"
)

// Config holds adventure command configuration.
type Config struct {
	HTTPAddr        string        `env:"LORE_WEAVER_HTTP_ADDR"        envDefault:":8090"`
	GRPCAddr        string        `env:"LORE_WEAVER_GRPC_ADDR"        envDefault:":8091"`
	DBPath          string        `env:"LORE_WEAVER_DB_PATH"          envDefault:"data/adventure.db"`
	AuthSecret      string        `env:"LORE_WEAVER_AUTH_SECRET"`
	AdminUserID     string        `env:"LORE_WEAVER_ADMIN_USER_ID"`
	StartingBalance float64       `env:"LORE_WEAVER_STARTING_BALANCE" envDefault:"5.00"`
	IdleTimeout     time.Duration `env:"LORE_WEAVER_IDLE_TIMEOUT"     envDefault:"300s"`
	ConfirmTimeout  time.Duration `env:"LORE_WEAVER_CONFIRM_TIMEOUT"  envDefault:"30s"`
	Locale          string        `env:"LORE_WEAVER_LOCALE"           envDefault:"en-US"`
	Debug           bool          `env:"LORE_WEAVER_DEBUG"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP and WebSocket listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "operator gRPC listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.AdminUserID, "admin-user-id", cfg.AdminUserID, "user allowed to grant credits")
	fs.Float64Var(&cfg.StartingBalance, "starting-balance", cfg.StartingBalance, "credits granted to new players")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "adventure inactivity timeout")
	fs.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", cfg.ConfirmTimeout, "reset confirmation timeout")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "default locale for player text")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log generator prompts")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("LORE_WEAVER_AUTH_SECRET is required")
	}
	return cfg, nil
}

// Run starts the adventure server with telemetry.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAdventure, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:        cfg.HTTPAddr,
			GRPCAddr:        cfg.GRPCAddr,
			DBPath:          cfg.DBPath,
			AuthSecret:      cfg.AuthSecret,
			AdminUserID:     cfg.AdminUserID,
			StartingBalance: cfg.StartingBalance,
			IdleTimeout:     cfg.IdleTimeout,
			ConfirmTimeout:  cfg.ConfirmTimeout,
			Locale:          cfg.Locale,
			Debug:           cfg.Debug,
		}); err != nil {
			return fmt.Errorf("serve adventure: %w", err)
		}
		return nil
	})
}
