// Command orchestrator-demo drives one request through the
// orchestration core end-to-end with simulated collaborators, printing
// progress events to stdout as they arrive. Modeled on the teacher's
// cobra-based cmd/codeforge/cmd root command structure.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/council-ai/orchestrator-core/internal/app"
	"github.com/council-ai/orchestrator-core/internal/availability"
	"github.com/council-ai/orchestrator-core/internal/breaker"
	"github.com/council-ai/orchestrator-core/internal/config"
	"github.com/council-ai/orchestrator-core/internal/health"
	"github.com/council-ai/orchestrator-core/internal/orchestrator"
	"github.com/council-ai/orchestrator-core/internal/progress"
	"github.com/council-ai/orchestrator-core/internal/registry"
	"github.com/council-ai/orchestrator-core/internal/telemetry"
)

var (
	mode          string
	failRate      float64
	serveProgress bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orchestrator-demo [content]",
		Short: "Drive one request through the orchestration core",
		Args:  cobra.ExactArgs(1),
		RunE:  runDemo,
	}
	root.Flags().StringVar(&mode, "mode", "balanced", "execution mode: fast, balanced, best_quality")
	root.Flags().Float64Var(&failRate, "fail-rate", 0.0, "simulated provider failure probability (0..1)")
	root.Flags().BoolVar(&serveProgress, "serve-progress", false, "push progress events over a local websocket as well as stdout")
	return root
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := telemetry.New(cfg.LogLevel)

	execMode := orchestrator.ExecutionMode(mode)
	switch execMode {
	case orchestrator.ModeFast, orchestrator.ModeBalanced, orchestrator.ModeBestQuality:
	default:
		return fmt.Errorf("invalid --mode %q", mode)
	}

	reg := registry.New()
	if cfg.CatalogPath != "" {
		data, err := os.ReadFile(cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		if _, err := reg.LoadTOML(data); err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
	} else if _, err := reg.LoadTOML([]byte(registry.DefaultCatalogTOML)); err != nil {
		return fmt.Errorf("load default catalog: %w", err)
	}

	oracle := availability.New(config.ProviderEnv, nil)
	breakers := breaker.NewRegistry(
		breaker.WithFailureThreshold(cfg.BreakerFailureThresh),
		breaker.WithBaseTimeout(time.Duration(cfg.BreakerBaseTimeoutS)*time.Second),
	)
	checker := health.New(app.NewDemoProber(7, failRate), breakers)

	bus := progress.NewEventBus()
	defer bus.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sub := bus.Subscribe(ctx)
	go printEvents(sub)

	var wsServer *progressWSServer
	if serveProgress {
		wsServer = newProgressWSServer(bus)
		go wsServer.Serve(ctx, ":8089")
		logger.Info("progress websocket listening", "addr", ":8089")
	}

	recorder := &app.DemoCostRecorder{
		OnRecord: func(requestID string, usage []orchestrator.ProviderCostUsage) {
			logger.Debug("cost recorded", "request_id", requestID, "lines", len(usage))
		},
	}

	orch := app.Build(app.Dependencies{
		Registry:            reg,
		Availability:        oracle,
		Breakers:            breakers,
		HealthChecker:       checker,
		Invoker:             app.NewDemoInvoker(42, failRate),
		Sink:                bus,
		Recorder:            recorder,
		Mode:                execMode,
		ParallelismOverride: cfg.ParallelismOverride,
	})

	// Warn when no provider looks configured; Process then ends with
	// no_providers_available.
	if !oracle.HasAnyConfigured() {
		logger.Warn("no provider credentials detected; the request will fail with no_providers_available")
	}

	resp := orch.Process(ctx, orchestrator.Request{Content: args[0], Mode: execMode})

	fmt.Println("---")
	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))

	if !resp.Success {
		return fmt.Errorf("request failed: %s", resp.ErrorMessage)
	}
	return nil
}

func printEvents(ch <-chan orchestrator.ProgressEvent) {
	for evt := range ch {
		fmt.Printf("[%s] %s\n", evt.Type, summarize(evt))
	}
}

func summarize(evt orchestrator.ProgressEvent) string {
	b, err := json.Marshal(evt.Payload)
	if err != nil || evt.Payload == nil {
		return ""
	}
	return string(b)
}
