package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/tomz197/tetris/internal/config"
	"github.com/tomz197/tetris/internal/draw"
	"github.com/tomz197/tetris/internal/input"
	"github.com/tomz197/tetris/internal/logging"
	"github.com/tomz197/tetris/internal/loop"
	"github.com/tomz197/tetris/internal/piece"
	"golang.org/x/term"
)

func main() {
	settings, err := config.LoadSettings(config.GetEnv(config.EnvSettings, ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := logging.NewFile("tetris")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := draw.CheckSize(draw.DefaultTermSizeFunc); err != nil {
		logger.Warn("terminal may be too small", "err", err)
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	screen := draw.NewScreen(os.Stdout, draw.ScreenOptions{
		ShowHelp: settings.ShowHelp,
		ShowNext: settings.ShowNext,
		Color:    settings.Color,
	})
	if w, h, err := draw.DefaultTermSizeFunc(); err == nil {
		screen.Resize(w, h)
	}
	keys := input.StartStream(bufio.NewReader(os.Stdin))

	res, err := loop.Run(context.Background(), keys, screen, loop.Options{
		Rules:      settings.Rules(),
		Randomizer: piece.NewUniform(settings.Seed),
		Logger:     logger,
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("session finished", "reason", res.Reason, "score", res.Score.Points)
}
