package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/history"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/manifest"
	"git.home.luguber.info/inful/blogbuilder/internal/preview"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"github.com/alecthomas/kong"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"blogbuilder.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory override"`
	} `cmd:"" help:"Build the site model from the content directory"`

	Serve struct {
		Addr string `short:"a" help:"Listen address override"`
	} `cmd:"" help:"Serve the site model locally, rebuilding on content changes"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if CLI.Build.Output != "" {
			cfg.Output.Dir = CLI.Build.Output
		}
		if err := runBuild(cfg); err != nil {
			slog.Error("Build failed", logfields.Error(err))
			os.Exit(1)
		}
	case "serve":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if CLI.Serve.Addr != "" {
			cfg.Serve.Addr = CLI.Serve.Addr
		}
		if err := runServe(cfg); err != nil {
			slog.Error("Serve failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
	}
}

func runBuild(cfg *config.Config) error {
	start := time.Now()

	assembler := site.NewAssembler(cfg)
	model, err := assembler.Build(context.Background())
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Output.Dir, cfg.Output.Manifest)
	if err := manifest.Write(manifest.FromModel(model), path); err != nil {
		return err
	}

	slog.Info("Build finished",
		logfields.BuildID(model.BuildID),
		logfields.Posts(model.PostCount()),
		logfields.Path(path),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return nil
}

func runServe(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := history.NewStore(cfg.Serve.HistoryDB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}()

	server := preview.New(cfg, store)
	return server.Run(ctx)
}
