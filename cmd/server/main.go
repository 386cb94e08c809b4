package main

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	httpadapter "stagehand/internal/adapter/http"
	metricsinmem "stagehand/internal/adapter/metrics/inmemory"
	gormrepo "stagehand/internal/adapter/repo/gorm"
	memrepo "stagehand/internal/adapter/repo/memory"
	"stagehand/internal/app/ports"
	"stagehand/internal/app/replay"
	"stagehand/internal/app/schedule"
	"stagehand/internal/app/status"
	"stagehand/internal/app/trigger"
	"stagehand/internal/config"
	"stagehand/internal/domain/troupe"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	logger := log.New(os.Stdout, "stagehand ", log.LstdFlags)

	cfgPath := strings.TrimSpace(os.Getenv("STAGEHAND_CONFIG"))
	if cfgPath == "" {
		cfgPath = "stagehand.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	eventRepo, snapshotRepo := buildRepos(logger)

	roster, err := cfg.Roster()
	if err != nil {
		logger.Fatalf("roster: %v", err)
	}
	actions, err := cfg.Catalog()
	if err != nil {
		logger.Fatalf("catalog: %v", err)
	}
	triggerDefs, err := cfg.TriggerDefs()
	if err != nil {
		logger.Fatalf("triggers: %v", err)
	}

	registry, err := schedule.NewRegistry(roster)
	if err != nil {
		logger.Fatalf("registry: %v", err)
	}
	catalog, err := schedule.NewCatalog(actions)
	if err != nil {
		logger.Fatalf("catalog: %v", err)
	}
	eval, err := trigger.NewEvaluator(triggerDefs, nil)
	if err != nil {
		logger.Fatalf("evaluator: %v", err)
	}

	ledger := cfg.SeedLedger()
	restoreSnapshot(logger, snapshotRepo, registry, ledger)

	kpiRecorder := metricsinmem.NewRecorder()
	sched := schedule.New(schedule.Config{
		Registry: registry,
		Catalog:  catalog,
		Ledger:   ledger,
		Events:   eventRepo,
		Metrics:  kpiRecorder,
		Logger:   logger,
	})
	host := newSimHost(hostConfig{
		Scheduler: sched,
		Evaluator: eval,
		Ledger:    ledger,
		Events:    eventRepo,
		Snapshots: snapshotRepo,
		Logger:    logger,
	})
	sched.SetNotifier(host)

	tickInterval := time.Duration(intEnv("STAGEHAND_TICK_MS", 1000)) * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go host.runTickLoop(ctx, tickInterval)

	h := httpadapter.Handler{
		Sim:      host,
		StatusUC: status.UseCase{Sim: host, Catalog: catalog},
		ReplayUC: replay.UseCase{Events: eventRepo},
		KPI:      kpiRecorder,
	}

	addr := strings.TrimSpace(os.Getenv("STAGEHAND_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	s := server.Default(server.WithHostPorts(addr))
	h.RegisterRoutes(s)

	logger.Printf("stagehand server listening on %s (config %s, tick %v)", addr, cfg.Path, tickInterval)
	s.Spin()
}

// buildRepos wires postgres when STAGEHAND_DB_DSN is set, memory otherwise.
func buildRepos(logger *log.Logger) (ports.EventRepository, ports.SnapshotRepository) {
	dsn := strings.TrimSpace(os.Getenv("STAGEHAND_DB_DSN"))
	if dsn == "" {
		logger.Println("STAGEHAND_DB_DSN not set, using in-memory repositories")
		store := memrepo.NewStore()
		return memrepo.NewEventRepo(store), memrepo.NewSnapshotRepo(store)
	}

	db, err := gormrepo.OpenPostgres(dsn)
	if err != nil {
		logger.Fatalf("open postgres: %v", err)
	}
	if dir := strings.TrimSpace(os.Getenv("STAGEHAND_MIGRATIONS_DIR")); dir != "" {
		if err := gormrepo.ApplyMigrations(context.Background(), db, dir); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
	}
	return gormrepo.NewEventRepo(db), gormrepo.NewSnapshotRepo(db)
}

// restoreSnapshot replaces the seeded roster stats and ledger with the last
// persisted state. Members that were mid-action when the snapshot was taken
// come back idle; their engagement is forfeited.
func restoreSnapshot(logger *log.Logger, repo ports.SnapshotRepository, registry *schedule.Registry, ledger *troupe.Ledger) {
	if repo == nil {
		return
	}
	snap, err := repo.Load(context.Background())
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			logger.Printf("load snapshot: %v (starting from config seed)", err)
		}
		return
	}
	registry.Restore(snap.Members)
	if snap.Ledger.Morale == nil {
		snap.Ledger.Morale = map[string]int{}
	}
	*ledger = snap.Ledger
	logger.Printf("restored snapshot from %s", snap.SavedAt.Format(time.RFC3339))
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
