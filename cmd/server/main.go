package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v11"

	persistlog "villagerlink.ai/internal/persistence/log"
	"villagerlink.ai/internal/sim/catalogs"
	"villagerlink.ai/internal/sim/link"
	"villagerlink.ai/internal/sim/multiworld"
	"villagerlink.ai/internal/sim/tuning"
)

// envOverrides take precedence over flags.
type envOverrides struct {
	Tuning       string `env:"VL_TUNING"`
	Worlds       string `env:"VL_WORLDS"`
	DataDir      string `env:"VL_DATA"`
	Debug        bool   `env:"VL_DEBUG"`
	DisableDB    bool   `env:"VL_DISABLE_DB"`
	IndexBackend string `env:"VL_INDEX_BACKEND" envDefault:"sqlite"`
}

func main() {
	var (
		tuningPath = flag.String("tuning", "./configs/linker.yaml", "path to linker.yaml")
		worldsPath = flag.String("worlds", "./configs/worlds.yaml", "worlds config path (defaults are used when missing)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		debug      = flag.Bool("debug", false, "log every detected anchor change")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite audit index")
		noConsole  = flag.Bool("no_console", false, "do not read operator commands from stdin")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		logger.Fatalf("parse env: %v", err)
	}
	if ov.Tuning != "" {
		*tuningPath = ov.Tuning
	}
	if ov.Worlds != "" {
		*worldsPath = ov.Worlds
	}
	if ov.DataDir != "" {
		*dataDir = ov.DataDir
	}
	*debug = *debug || ov.Debug
	*disableDB = *disableDB || ov.DisableDB

	cats := catalogs.Default()
	loadTuning := func() (tuning.Tuning, error) {
		t, err := tuning.Load(*tuningPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return t, err
			}
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			t = tuning.Defaults()
		}
		for _, w := range t.Normalize(cats) {
			logger.Printf("tuning: %s", w)
		}
		t.Debug = t.Debug || *debug
		return t, nil
	}
	tune, err := loadTuning()
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	wp := strings.TrimSpace(*worldsPath)
	if wp != "" {
		if _, err := os.Stat(wp); err != nil {
			logger.Printf("worlds config not found (%s); using defaults", wp)
			wp = ""
		}
	}
	wcfg, err := multiworld.Load(wp)
	if err != nil {
		logger.Fatalf("load worlds config: %v", err)
	}

	idx, err := openRuntimeIndex(*dataDir, ov.IndexBackend, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index backend: upsert catalogs: %v", err)
		}
	}

	auditLog := persistlog.NewAuditLogger(*dataDir)
	scanLog := persistlog.NewScanLogger(*dataDir)
	defer auditLog.Close()
	defer scanLog.Close()

	audit := link.MultiAudit{auditLog}
	scans := multiScanLogger{scanLog}
	if idx != nil {
		audit = append(audit, idx)
		scans = append(scans, idx)
	}

	m, err := multiworld.NewManager(wcfg, multiworld.Options{
		Tuning:   tune,
		Catalogs: cats,
		Audit:    audit,
		ScanLog:  scans,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatalf("multiworld: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	reload := func() error {
		t, err := loadTuning()
		if err != nil {
			return err
		}
		m.Reload(t)
		if idx != nil {
			if err := idx.UpsertCatalogs(cats, t); err != nil {
				logger.Printf("index backend: upsert catalogs: %v", err)
			}
		}
		return nil
	}
	go watchReload(ctx, reload, logger)

	if !*noConsole {
		c := newConsole(m, os.Stdout, reload)
		go func() {
			if err := c.run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("console: %v", err)
			}
		}()
	}

	logger.Printf("linker running: worlds=%v tick_rate=%dHz scan_every=%d cooldown=%d",
		m.WorldIDs(), tune.TickRateHz, tune.Scan.IntervalTicks, tune.Cooldowns.PerAgentTicks)
	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("manager stopped: %v", err)
	}
	m.Close()
	logger.Printf("shutdown complete")
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// watchReload re-reads tuning on SIGHUP.
func watchReload(ctx context.Context, reload func() error, logger *log.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP)
	defer signal.Stop(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ch:
			if err := reload(); err != nil {
				logger.Printf("reload: %v", err)
				continue
			}
			logger.Printf("reload requested")
		}
	}
}
