package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dataclassification/config"
	"dataclassification/launch"
	"dataclassification/logger"
	"dataclassification/query"
	"dataclassification/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logger.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "run"
	if len(args) > 0 && (args[0] == "run" || args[0] == "serve") {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return serve(ctx, args)
	default:
		return export(ctx, args)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info().
		Str("config", path).
		Str("driver", cfg.Database.Driver).
		Str("timezone", cfg.Query.Timezone).
		Msg("configuration loaded")
	return cfg, nil
}

func export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml (defaults to DB_* environment variables)")
	user := fs.String("user", "", `Only export activity of this user (DOMAIN\user)`)
	from := fs.String("from", "", "First day to export, YYYY-MM-DD")
	to := fs.String("to", "", "Last day to export, YYYY-MM-DD")
	noPrompt := fs.Bool("no-prompt", false, "Never ask for missing values")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	return launch.StartProgramme(ctx, cfg, launch.Options{
		UserName: *user,
		From:     *from,
		To:       *to,
		NoPrompt: *noPrompt,
	})
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config.yaml")
	addr := fs.String("addr", "127.0.0.1:8080", "Listen address")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return errors.New("serve needs store.path in the configuration")
	}

	db, err := query.InitStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	return web.StartServer(ctx, db, *addr)
}
