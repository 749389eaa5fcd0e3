package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-farm/internal/bot"
	"github.com/pixil98/go-farm/internal/client"
	"github.com/pixil98/go-farm/internal/replica"
	"github.com/pixil98/go-farm/internal/sim"
	"github.com/pixil98/go-farm/internal/state"
	"github.com/pixil98/go-farm/internal/tuning"
	"github.com/pixil98/go-service"
)

// Config is read from FARMBOT_* environment variables.
type Config struct {
	URL        string        `env:"URL" envDefault:"ws://127.0.0.1:2567/ws"`
	Name       string        `env:"NAME" envDefault:"Farmbot"`
	Class      string        `env:"CLASS" envDefault:"farmer"`
	Appearance string        `env:"APPEARANCE"`
	TuningPath string        `env:"TUNING_PATH"`
	Speed      float64       `env:"SPEED" envDefault:"120"`
	Crops      []string      `env:"CROPS" envSeparator:","`
	Interval   time.Duration `env:"INTERVAL" envDefault:"100ms"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("running farmbot", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting")
}

func run() error {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "FARMBOT_"}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	t, err := tuning.Load(cfg.TuningPath)
	if err != nil {
		return err
	}

	r := replica.New(sim.NewRules(t.Params()), replica.Identity{
		Name:       cfg.Name,
		Class:      state.Class(cfg.Class),
		Appearance: cfg.Appearance,
	}, replica.WithLayout(t.Layout()))

	botOpts := []bot.BotOpt{bot.WithSpeed(cfg.Speed), bot.WithInterval(cfg.Interval)}
	if len(cfg.Crops) > 0 {
		botOpts = append(botOpts, bot.WithCrops(cfg.Crops...))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(cfg.URL, r, client.WithConnectionHook(func(connected bool) {
		slog.InfoContext(ctx, "connection changed", "connected", connected, "mode", r.Mode())
	}))

	workers := service.WorkerList{
		"client": c,
		"bot":    bot.New(r, botOpts...),
	}
	return workers.Start(ctx)
}
