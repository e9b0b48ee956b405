// Package admin implements the operator command line: it mints player
// tokens and reads or grants credits through the operator gRPC API.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	entrypoint "github.com/Womp-Womp/AdventureBot/internal/platform/cmd"
	platformgrpc "github.com/Womp-Womp/AdventureBot/internal/platform/grpc"
	"github.com/Womp-Womp/AdventureBot/internal/platform/timeouts"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/api/grpc/operator"
	"github.com/Womp-Womp/AdventureBot/internal/services/adventure/auth"
)

// Commands understood by Run.
const (
	CommandToken   = "token"
	CommandBalance = "balance"
	CommandGrant   = "grant"
)

// Config holds admin command configuration.
type Config struct {
	GRPCAddr    string        `env:"LORE_WEAVER_GRPC_TARGET"   envDefault:"localhost:8091"`
	AuthSecret  string        `env:"LORE_WEAVER_AUTH_SECRET"`
	AdminUserID string        `env:"LORE_WEAVER_ADMIN_USER_ID"`
	DialTimeout time.Duration `env:"LORE_WEAVER_DIAL_TIMEOUT"  envDefault:"5s"`
	TokenTTL    time.Duration `env:"LORE_WEAVER_TOKEN_TTL"     envDefault:"24h"`

	Command string
	UserID  string
	Amount  float64
}

// ParseConfig parses environment and flags into a Config. The first
// positional argument selects the command.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "operator gRPC address")
	fs.StringVar(&cfg.AdminUserID, "as", cfg.AdminUserID, "user the operator calls are made as")
	fs.DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "how long to wait for the server to become healthy")
	fs.DurationVar(&cfg.TokenTTL, "ttl", cfg.TokenTTL, "lifetime of minted tokens")
	fs.StringVar(&cfg.UserID, "user", "", "target user id")
	fs.Float64Var(&cfg.Amount, "amount", 0, "credits to grant")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}

	cfg.Command = strings.ToLower(strings.TrimSpace(fs.Arg(0)))
	if cfg.Command == CommandGrant && cfg.Amount == 0 && fs.NArg() > 1 {
		amount, err := strconv.ParseFloat(fs.Arg(1), 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse amount %q: %w", fs.Arg(1), err)
		}
		cfg.Amount = amount
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return errors.New("LORE_WEAVER_AUTH_SECRET is required")
	}
	switch c.Command {
	case CommandToken:
		if strings.TrimSpace(c.UserID) == "" {
			return errors.New("token requires -user")
		}
	case CommandBalance:
		if strings.TrimSpace(c.UserID) == "" && strings.TrimSpace(c.AdminUserID) == "" {
			return errors.New("balance requires -user or -as")
		}
	case CommandGrant:
		if strings.TrimSpace(c.UserID) == "" {
			return errors.New("grant requires -user")
		}
		if strings.TrimSpace(c.AdminUserID) == "" {
			return errors.New("grant requires -as or LORE_WEAVER_ADMIN_USER_ID")
		}
	case "":
		return errors.New("command is required: token, balance, or grant")
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}
	return nil
}

// Run executes the configured command and writes its result to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	tokens := auth.Config{Secret: []byte(cfg.AuthSecret), TTL: cfg.TokenTTL}
	if cfg.Command == CommandToken {
		token, err := auth.Issue(tokens, cfg.UserID)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		_, err = fmt.Fprintln(out, token)
		return err
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAdmin, func(ctx context.Context) error {
		caller := strings.TrimSpace(cfg.AdminUserID)
		if caller == "" {
			caller = strings.TrimSpace(cfg.UserID)
		}
		token, err := auth.Issue(tokens, caller)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}

		timeout := cfg.DialTimeout
		if timeout <= 0 {
			timeout = timeouts.GRPCDial
		}
		conn, err := platformgrpc.Dial(ctx, cfg.GRPCAddr, operator.ServiceName, timeout, log.Printf)
		if err != nil {
			return fmt.Errorf("dial operator %s: %w", cfg.GRPCAddr, err)
		}
		defer conn.Close()

		client := operator.NewOperatorClient(conn)
		callCtx := operator.WithBearer(ctx, token)
		switch cfg.Command {
		case CommandBalance:
			balance, err := client.GetBalance(callCtx, cfg.UserID)
			if err != nil {
				return fmt.Errorf("get balance: %w", err)
			}
			target := cfg.UserID
			if target == "" {
				target = caller
			}
			_, err = fmt.Fprintf(out, "%s %.2f\n", target, balance)
			return err
		default:
			result, err := client.GrantCredits(callCtx, cfg.UserID, cfg.Amount)
			if err != nil {
				return fmt.Errorf("grant credits: %w", err)
			}
			_, err = fmt.Fprintln(out, result.Text)
			return err
		}
	})
}
