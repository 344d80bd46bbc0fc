package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shaderpark/internal/api"
	"shaderpark/internal/config"
	"shaderpark/internal/event"
	"shaderpark/internal/logging"
	"shaderpark/internal/metrics"
	"shaderpark/internal/reload"
	"shaderpark/internal/render"
	wgpubackend "shaderpark/internal/render/wgpu"
	"shaderpark/internal/shader"
)

const pollInterval = 16 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "shaderpark:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML settings file")
	dir := flag.String("dir", "", "watched shader directory (overrides config)")
	prefix := flag.String("prefix", "", "only reload shaders whose stem starts with this prefix")
	backendName := flag.String("backend", "", "rendering backend: wgpu or null")
	listen := flag.String("listen", "", "address for the message stream and metrics endpoints")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dir != "" {
		settings.Dir = *dir
	}
	if *prefix != "" {
		settings.Prefix = *prefix
	}
	if *backendName != "" {
		settings.Backend = *backendName
	}
	if *listen != "" {
		settings.Listen = *listen
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	logger := logging.NewLogger(settings.Level())
	registry := metrics.Default

	backend, compiler, cleanup := buildBackend(settings, logger)
	defer cleanup()

	controller, err := reload.New(reload.Options{
		Dir:      settings.Dir,
		Backend:  backend,
		Compiler: compiler,
		DrawMode: settings.Mode(),
		Prefix:   settings.Prefix,
		Debounce: settings.Debounce(),
		Logger:   logger,
		Registry: registry,
	})
	if err != nil {
		return err
	}
	defer controller.Close()

	logger.Info("watching for shader changes", map[string]string{
		"dir":     settings.Dir,
		"prefix":  settings.Prefix,
		"backend": settings.Backend,
	})

	bus := event.NewBus[reload.Message](event.BusOptions{})
	defer bus.Close()

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, bus, registry, logger, settings.AllowedOrigins)
	server := &http.Server{Addr: settings.Listen, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", map[string]string{
				"listen": settings.Listen,
				"error":  err.Error(),
			})
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := server.Shutdown(shutdownCtx)
			cancel()
			return err
		case <-ticker.C:
			message, err := controller.Poll()
			if err != nil {
				// A mid-swap failure leaves no live material. Keep
				// polling: a later successful edit restores it.
				logger.Error("material swap failed", map[string]string{
					"error": err.Error(),
				})
				continue
			}
			if message != nil {
				logger.Info(message.String(), nil)
				bus.Publish(*message)
			}
		}
	}
}

func buildBackend(settings config.Settings, logger *logging.Logger) (render.Backend, shader.Compiler, func()) {
	if settings.Backend == config.BackendWGPU {
		gpu, err := wgpubackend.New(wgpubackend.Options{Logger: logger})
		if err == nil {
			return gpu, gpu.Compiler(), gpu.Close
		}
		logger.Warn("webgpu unavailable, using null backend", map[string]string{
			"error": err.Error(),
		})
	}

	// The null backend registers materials without a GPU; source text
	// passes through uncompiled.
	passthrough := shader.CompilerFunc(func(source string, stage shader.Stage, label string) ([]byte, error) {
		return []byte(source), nil
	})
	return render.NewNullBackend(), passthrough, func() {}
}
