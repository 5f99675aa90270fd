package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/milk9111/workbench/logging"
	"github.com/milk9111/workbench/scene"
	"github.com/milk9111/workbench/sim"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	sceneName := pflag.StringP("scene", "s", "workbench", "scene file or embedded scene name")
	scriptName := pflag.StringP("script", "x", "late_join", "tengo script file or embedded script name")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	logFile := pflag.String("log-file", "", "also write JSON logs to this file")
	pflag.Parse()

	log, err := logging.New(logging.Config{Level: *logLevel, File: *logFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, *sceneName, *scriptName); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, sceneName, scriptName string) error {
	spec, err := scene.LoadSpec(sceneName)
	if err != nil {
		return err
	}
	src, err := scene.LoadScript(scriptName)
	if err != nil {
		return fmt.Errorf("load script %s: %w", scriptName, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	h := sim.New(spec, log)
	out, err := h.RunScript(ctx, src)
	for _, line := range out {
		fmt.Println(line)
	}
	if err != nil {
		return err
	}

	for _, p := range h.Peers() {
		owner, _ := p.GizmoOwner()
		log.Info("participant state",
			zap.String("peer", p.Name),
			zap.Bool("connected", p.Session.Connected()),
			zap.Strings("entities", p.Names()),
			zap.String("gizmo", owner))
	}
	return nil
}
