// zonesync keeps DNS zones hosted at providers in step with zone files.
// It loads desired state from YAML or TOML zone files, reads current state
// from each configured provider and applies the difference.
//
// Usage:
//
//	zonesync [flags] <command>
//
// Commands:
//
//	dump   print the current hosted records for each configured zone
//	plan   show pending changes; exits 1 when changes are pending
//	sync   apply pending changes to the providers
//	zones  list the zones hosted at each provider
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gitlab.bluewillows.net/root/zonesync/internal/config"
	"gitlab.bluewillows.net/root/zonesync/internal/metrics"
	"gitlab.bluewillows.net/root/zonesync/pkg/plan"
	"gitlab.bluewillows.net/root/zonesync/pkg/provider"
	"gitlab.bluewillows.net/root/zonesync/pkg/record"
	"gitlab.bluewillows.net/root/zonesync/providers/vultr"
	"gitlab.bluewillows.net/root/zonesync/sources/zonefile"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-08-24"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// errChangesPending makes `zonesync plan` exit non-zero when the hosted
// state differs from the zone files, for use in CI checks.
var errChangesPending = errors.New("changes pending")

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, errChangesPending) {
			slog.Error("fatal error", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "zonesync.yaml", "path to the configuration file")
	zoneFilter := flag.String("zone", "", "limit to a single zone name")
	metricsListen := flag.String("metrics-listen", "", "metrics listen address, overrides the config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("zonesync %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
		return nil
	}

	command := flag.Arg(0)
	switch command {
	case "dump", "plan", "sync", "zones":
	case "":
		flag.Usage()
		return fmt.Errorf("a command is required: dump, plan, sync or zones")
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Info("zonesync starting",
		slog.String("version", Version),
		slog.String("command", command),
		slog.Int("zones", len(cfg.Zones)),
		slog.Int("providers", len(cfg.Providers)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := provider.NewRegistry(logger)
	registry.RegisterFactory("vultr", vultr.Factory())
	for _, p := range cfg.Providers {
		if err := registry.CreateInstance(p.Name, p.Type, p.Settings); err != nil {
			return fmt.Errorf("creating provider %s: %w", p.Name, err)
		}
	}

	if cfg.MetricsListen != "" {
		startMetricsServer(ctx, cfg.MetricsListen, logger)
	}

	app := &app{cfg: cfg, registry: registry, logger: logger, zoneFilter: *zoneFilter}

	switch command {
	case "dump":
		return app.dump(ctx)
	case "plan":
		return app.plan(ctx)
	case "sync":
		return app.sync(ctx)
	case "zones":
		return app.zones(ctx)
	}
	return nil
}

type app struct {
	cfg        *config.Config
	registry   *provider.Registry
	logger     *slog.Logger
	zoneFilter string
}

// selectedZones returns the configured zones, narrowed by -zone when set.
func (a *app) selectedZones() ([]config.ZoneConfig, error) {
	if a.zoneFilter == "" {
		return a.cfg.Zones, nil
	}
	for _, z := range a.cfg.Zones {
		if z.Name == a.zoneFilter {
			return []config.ZoneConfig{z}, nil
		}
	}
	return nil, fmt.Errorf("zone %q is not configured", a.zoneFilter)
}

func (a *app) dump(ctx context.Context) error {
	zones, err := a.selectedZones()
	if err != nil {
		return err
	}
	for _, zc := range zones {
		for _, name := range zc.Providers {
			inst, ok := a.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown provider %q", name)
			}

			zone, err := record.NewZone(zc.Name)
			if err != nil {
				return err
			}
			exists, err := inst.Populate(ctx, zone, false, false)
			if err != nil {
				return err
			}

			fmt.Printf("%s @ %s", zone.Name, name)
			if !exists {
				fmt.Println(" (zone not hosted)")
				continue
			}
			fmt.Println()
			for _, r := range zone.Records() {
				fmt.Printf("  %s\n", recordLine(zone, r))
			}
		}
	}
	return nil
}

// recordLine renders one record with its fully qualified name for dump
// output.
func recordLine(zone *record.Zone, r *record.Record) string {
	data := make([]string, len(r.Values))
	for i, v := range r.Values {
		data[i] = v.Data
	}
	return fmt.Sprintf("%s %s ttl=%d [%s]", r.FQDN(zone.Name), r.Type, r.TTL, strings.Join(data, " "))
}

// planZone builds the pending plan for one zone against one provider.
func (a *app) planZone(ctx context.Context, zc config.ZoneConfig, inst provider.Provider) (*plan.Plan, error) {
	desired, err := zonefile.Load(zc.File, zc.Name, a.cfg.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("zone %s: %w", zc.Name, err)
	}

	existing, err := record.NewZone(zc.Name)
	if err != nil {
		return nil, err
	}
	if _, err := inst.Populate(ctx, existing, true, false); err != nil {
		return nil, err
	}

	return plan.Diff(existing, desired)
}

func (a *app) plan(ctx context.Context) error {
	zones, err := a.selectedZones()
	if err != nil {
		return err
	}

	pending := false
	for _, zc := range zones {
		for _, name := range zc.Providers {
			inst, ok := a.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown provider %q", name)
			}

			pl, err := a.planZone(ctx, zc, inst)
			if err != nil {
				return err
			}

			fmt.Printf("%s @ %s: %d change(s)\n", zc.Name, name, len(pl.Changes))
			for _, change := range pl.Changes {
				fmt.Printf("  %s\n", change)
			}
			if pl.HasChanges() {
				pending = true
			}
		}
	}

	if pending {
		return errChangesPending
	}
	return nil
}

func (a *app) sync(ctx context.Context) error {
	zones, err := a.selectedZones()
	if err != nil {
		return err
	}

	for _, zc := range zones {
		for _, name := range zc.Providers {
			inst, ok := a.registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown provider %q", name)
			}

			pl, err := a.planZone(ctx, zc, inst)
			if err != nil {
				return err
			}
			if !pl.HasChanges() {
				a.logger.Info("zone in sync",
					slog.String("zone", zc.Name),
					slog.String("provider", name),
				)
				continue
			}

			applied, err := inst.Apply(ctx, pl)
			if err != nil {
				return fmt.Errorf("zone %s @ %s: applied %d of %d changes: %w",
					zc.Name, name, applied, len(pl.Changes), err)
			}
			a.logger.Info("zone synced",
				slog.String("zone", zc.Name),
				slog.String("provider", name),
				slog.Int("changes", applied),
			)
		}
	}
	return nil
}

// zoneLister is implemented by providers that can enumerate hosted zones.
type zoneLister interface {
	Zones(ctx context.Context) ([]string, error)
}

func (a *app) zones(ctx context.Context) error {
	for _, inst := range a.registry.All() {
		lister, ok := inst.(zoneLister)
		if !ok {
			a.logger.Warn("provider cannot list zones", slog.String("provider", inst.Name()))
			continue
		}
		names, err := lister.Zones(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n", inst.Name(), inst.Type())
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

// startMetricsServer serves /metrics in the background for the lifetime of
// the command. Sync runs are short; the server dies with the process.
func startMetricsServer(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics server listening", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server error", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLogLevel(level)

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
