package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/tomz197/asteroidfield/internal/audio"
	"github.com/tomz197/asteroidfield/internal/config"
	"github.com/tomz197/asteroidfield/internal/game"
	"github.com/tomz197/asteroidfield/internal/logger"
	"github.com/tomz197/asteroidfield/internal/loop"
	"github.com/tomz197/asteroidfield/internal/spectate"
)

func main() {
	app := cli.NewApp()
	app.Name = "asteroidfield"
	app.Usage = "Fly through an endless asteroid field in your terminal"
	app.Flags = []cli.Flag{
		cli.Int64Flag{Name: "seed", Usage: "Seed for the asteroid field (0 = random)"},
		cli.StringFlag{Name: "log-file", EnvVar: "LOG_FILE", Usage: "Write logs to this file"},
		cli.BoolFlag{Name: "mute", Usage: "Disable sound"},
		cli.StringFlag{Name: "spectate", EnvVar: "SPECTATE_ADDR", Usage: "Serve a spectator page on this address, e.g. :8080"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	// stdout is the screen, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := c.String("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer f.Close()
		logOut = f
	}
	log := logger.New(logOut)

	cfg, err := game.ConfigFromEnv()
	if err != nil {
		return err
	}

	var sound game.Audio
	if !c.Bool("mute") {
		player, err := audio.NewPlayer()
		if err != nil {
			log.Warn("audio unavailable, playing silently", "err", err)
		} else {
			defer player.Close()
			sound = player
		}
	}

	var hub *spectate.Hub
	if addr := c.String("spectate"); addr != "" {
		hub = spectate.NewHub(log)
		srv := &http.Server{
			Addr:    addr,
			Handler: hub.Router(config.GetEnv("SSH_DISPLAY_HOST", "localhost")),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("spectator server", "err", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		log.Info("spectator server listening", "addr", addr)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return errors.Wrap(err, "enable raw mode")
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := loop.NewHost(cfg, hub, log)
	return host.Play(ctx, loop.Session{
		User:   config.GetEnv("USER", "player"),
		Reader: os.Stdin,
		Writer: os.Stdout,
		Audio:  sound,
		Seed:   c.Int64("seed"),
	})
}
