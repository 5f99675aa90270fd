package main

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/workbench/logging"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	sceneName := pflag.StringP("scene", "s", "workbench", "scene file or embedded scene name")
	peers := pflag.StringSlice("peers", []string{"alice", "bob"}, "participants to simulate; the first one is viewed")
	watch := pflag.BoolP("watch", "w", true, "reload the scene when its file changes on disk")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	logFile := pflag.String("log-file", "", "also write JSON logs to this file")
	pflag.Parse()

	log, err := logging.New(logging.Config{Level: *logLevel, File: *logFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	game, err := NewGame(log, *sceneName, *peers, *watch)
	if err != nil {
		log.Fatal("start workbench", zap.Error(err))
	}
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("workbench")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal("run workbench", zap.Error(err))
	}
}
