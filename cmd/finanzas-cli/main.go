// Command finanzas-cli interprets messages typed on stdin against the
// configured ledger, one message per line. Replies go to stdout and logs to
// stderr.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"finanzas/internal/backend"
	"finanzas/internal/cli"
	"finanzas/internal/config"
	applog "finanzas/internal/log"
)

func main() {
	sender := flag.String("sender", "cli", "sender recorded with each entry")
	once := flag.String("m", "", "interpret a single message and exit")
	flag.Parse()

	cli.LoadEnvFile()
	cfg := config.Load()
	logCfg := applog.DefaultConfig()
	logCfg.Level = applog.ParseLevel(cfg.LogLevel)
	logCfg.Component = applog.ComponentCLI
	logCfg.Output = os.Stderr
	logger := applog.New(logCfg)
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer be.Close()

	interpreter, err := cli.NewInterpreter(cfg, be.Store)
	if err != nil {
		logger.Error("Failed to build interpreter", applog.FieldError, err)
		os.Exit(1)
	}

	if *once != "" {
		fmt.Println(interpreter.Interpret(ctx, *once, *sender, time.Now()).Reply)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for ctx.Err() == nil {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "salir" || line == "exit" {
			break
		}
		fmt.Println(interpreter.Interpret(ctx, line, *sender, time.Now()).Reply)
	}
	if err := scanner.Err(); err != nil {
		logger.Error("Read stdin failed", applog.FieldError, err)
	}
}
