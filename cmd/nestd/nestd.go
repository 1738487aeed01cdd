// nestd is a nested Wayland compositor daemon. It accepts Wayland
// clients on its own socket and renders their windows onto a
// fixed-size software canvas, which can be snapshotted as a PNG by
// sending the daemon SIGUSR1.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deedles.dev/nest/compositor"
	"deedles.dev/nest/config"
	"deedles.dev/nest/present"
	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/colornames"
)

var rootCmd struct {
	Config   string `short:"c" help:"Path to the configuration file." placeholder:"PATH"`
	Socket   string `short:"s" help:"Override the socket name to listen on." placeholder:"NAME"`
	LogLevel string `help:"Override the configured log level." placeholder:"LEVEL"`
	Snapshot string `help:"Write a PNG of the canvas here on SIGUSR1." placeholder:"PATH"`

	Run RunCmd `cmd:"" default:"1" help:"Run the compositor."`
}

// RunCmd is the 'nestd run' command.
type RunCmd struct{}

func (c *RunCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(rootCmd.Config)
	if err != nil {
		return err
	}
	if rootCmd.Socket != "" {
		cfg.Socket = rootCmd.Socket
	}
	if rootCmd.LogLevel != "" {
		cfg.LogLevel = rootCmd.LogLevel
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = config.Default().TickRate
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := config.Default()
		cfg.Width, cfg.Height = def.Width, def.Height
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logrus.SetLevel(level)

	bg, ok := colornames.Map[cfg.Background]
	if !ok {
		logrus.WithField("background", cfg.Background).Warnln("Unknown background color, using black")
		bg = colornames.Black
	}

	canvas := present.NewCanvas(cfg.Width, cfg.Height, bg)
	comp := compositor.New(canvas, compositor.Config{
		Socket:       cfg.Socket,
		OutputWidth:  cfg.Width,
		OutputHeight: cfg.Height,
	})
	if err := comp.Start(); err != nil {
		return err
	}
	defer comp.Shutdown()

	snap := make(chan os.Signal, 1)
	if rootCmd.Snapshot != "" {
		signal.Notify(snap, syscall.SIGUSR1)
		defer signal.Stop(snap)
	}

	tick := time.NewTicker(time.Second / time.Duration(cfg.TickRate))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-snap:
			if err := writeSnapshot(canvas, rootCmd.Snapshot); err != nil {
				logrus.WithError(err).Errorln("Writing snapshot failed")
			}

		case <-tick.C:
			if err := comp.Tick(); err != nil {
				logrus.WithError(err).Errorln("Dispatch failed")
			}
		}
	}
}

func writeSnapshot(canvas *present.Canvas, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := canvas.EncodePNG(file); err != nil {
		return err
	}
	logrus.WithField("path", path).Infoln("Snapshot written")
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&rootCmd,
		kong.Name("nestd"),
		kong.Description("A nested Wayland compositor that renders client windows onto a software canvas."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if err := kongCtx.Run(); err != nil {
		logrus.WithError(err).Fatalln("nestd failed")
	}
}
