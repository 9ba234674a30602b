package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"i4.energy/across/oocsigw/modem"
	"i4.energy/across/oocsigw/oocsi"
)

func main() {
	configFile := flag.String("config", "", "Path to a TOML configuration file")
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the ESP8266")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("wifi-ssid", "", "Wi-Fi network to join")
	flag.String("wifi-password", "", "Wi-Fi password")
	flag.String("server", "super.oocsi.net", "OOCSI broker host")
	flag.String("name", "oocsigw_####", "OOCSI client name")
	flag.String("channels", "", "Comma separated channels to subscribe")
	flag.String("mqtt-broker", "", "MQTT broker URL for the relay (empty disables it)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err == nil {
		err = config.Validate()
	}
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)}))

	modemConfig, err := modem.NewConfigBuilder().
		WithLogger(logger).
		WithDialer(modem.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create modem config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, err := modem.New(ctx, modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	logger.Info("Starting OOCSI Gateway", "modem", m)

	if !m.Init() {
		logger.Error("Modem did not come up")
		os.Exit(1)
	}
	m.JoinWifi(config.WifiSSID, config.WifiPassword)
	if !waitForWifi(ctx, m, time.Duration(config.JoinTimeout)*time.Second) {
		logger.Error("Wi-Fi not connected", "ssid", config.WifiSSID)
		os.Exit(1)
	}

	var relay *Relay
	opts := []oocsi.ClientOption{oocsi.WithLogger(logger)}
	if config.MQTTBroker != "" {
		relay = NewRelay(config, logger)
		opts = append(opts, oocsi.WithMessageHandler(relay.Forward))
	}
	client := oocsi.NewClient(m, opts...)

	if !client.Connect(config.Server, config.Name) {
		logger.Error("Failed to join OOCSI broker", "server", config.Server)
		os.Exit(1)
	}
	for _, channel := range config.Channels {
		if !client.Subscribe(channel) {
			logger.Warn("Subscribe skipped", "channel", channel)
		}
	}

	if relay != nil {
		if err := relay.Start(client); err != nil {
			logger.Error("MQTT relay disabled", "error", err)
		}
		defer relay.Close()
	}

	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Receive loop stopped", "error", err)
			stop()
		}
	}()

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Client: client,
			Modem:  m,
		},
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WifiChecker reports whether the station is associated.
type WifiChecker interface {
	IsWifiConnected() bool
}

// waitForWifi polls the station status once a second until it reports a
// connection, the timeout passes or ctx is done.
func waitForWifi(ctx context.Context, w WifiChecker, timeout time.Duration) bool {
	return pollUntil(ctx, w.IsWifiConnected, timeout, time.Second)
}

func pollUntil(ctx context.Context, cond func() bool, timeout, interval time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if cond() {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}
