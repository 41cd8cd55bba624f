package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/board-settings/internal/application"
	"github.com/eugenenazirov/board-settings/internal/config"
	"github.com/eugenenazirov/board-settings/internal/logging"
	"github.com/eugenenazirov/board-settings/internal/settings"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("boardcfg", "Board settings - resolves, validates and publishes the firmware settings table")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	led := kingpinApp.Flag("led", "LED wiring: single:PIN, rgb:R,G,B or ws2812:PIN").String()
	timer := kingpinApp.Flag("timer", "Timer source: ticker, timer_one or timer_three").String()
	var debugSet bool
	debug := kingpinApp.Flag("debug", "Enable debug output (APP_DEBUG)").IsSetByUser(&debugSet).Bool()

	serveCmd := kingpinApp.Command("serve", "Serve the resolved settings over HTTP").Default()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").String()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	validateCmd := kingpinApp.Command("validate", "Check the resolved settings and report every violation")

	headerCmd := kingpinApp.Command("header", "Render the firmware settings header")
	headerOutput := headerCmd.Flag("output", "Write the header to this path instead of stdout").Short('o').String()

	getCmd := kingpinApp.Command("get", "Print one setting")
	getName := getCmd.Arg("name", "Setting name, e.g. BOARD_LED_PIN_WS2812").Required().String()

	command := kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *led != "" {
		overrides.LED = led
	}

	if *timer != "" {
		overrides.Timer = timer
	}

	if debugSet {
		overrides.Debug = debug
	}

	if *port != "" {
		overrides.Port = port
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		if command == validateCmd.FullCommand() {
			os.Exit(reportViolations(err))
		}
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.Board.Debug)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case validateCmd.FullCommand():
		application.LogSettings(logger, cfg.Board)
		logger.Info("board settings are valid")
	case headerCmd.FullCommand():
		if err := writeHeader(cfg.Board, *headerOutput, os.Stdout); err != nil {
			logger.Fatal("failed to write header", zap.Error(err))
		}
		if *headerOutput != "" {
			logger.Info("header written", zap.String("path", *headerOutput))
		}
	case getCmd.FullCommand():
		if err := printValue(os.Stdout, cfg.Board, *getName); err != nil {
			logger.Fatal("failed to read setting", zap.Error(err))
		}
	default:
		serve(cfg, logger)
	}
}

func serve(cfg config.Config, logger *zap.Logger) {
	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// reportViolations logs every violation in err and returns the process exit code.
func reportViolations(err error) int {
	logger, logErr := logging.New(false)
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, violation := range settings.Violations(err) {
		logger.Error("invalid board settings", zap.Error(violation))
	}
	return 1
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
