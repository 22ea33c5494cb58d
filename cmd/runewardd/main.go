package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/runeward/server/internal/auth"
	"github.com/runeward/server/internal/config"
	"github.com/runeward/server/internal/core/event"
	coresys "github.com/runeward/server/internal/core/system"
	"github.com/runeward/server/internal/data"
	"github.com/runeward/server/internal/game/chat"
	"github.com/runeward/server/internal/game/exchange"
	"github.com/runeward/server/internal/game/npc"
	"github.com/runeward/server/internal/game/resource"
	"github.com/runeward/server/internal/game/skill"
	"github.com/runeward/server/internal/handler"
	"github.com/runeward/server/internal/metrics"
	gonet "github.com/runeward/server/internal/net"
	"github.com/runeward/server/internal/persist"
	"github.com/runeward/server/internal/protocol"
	"github.com/runeward/server/internal/scripting"
	"github.com/runeward/server/internal/system"
	"github.com/runeward/server/internal/tick"
	"github.com/runeward/server/internal/validate"
	"github.com/runeward/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           runeward  v0.1.0                \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      authoritative shard server           \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mshard:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RUNEWARD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Connect to PostgreSQL and run migrations
	printSection("database")

	bootCtx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(bootCtx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	printOK("postgres connected")

	if err := persist.RunMigrations(bootCtx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")
	fmt.Println()

	// 4. Create repositories
	accountRepo := persist.NewAccountRepo(db)
	charRepo := persist.NewCharacterRepo(db)
	skillRepo := persist.NewSkillRepo(db)
	itemRepo := persist.NewItemRepo(db)
	offerRepo := persist.NewOfferRepo(db)
	auditRepo := persist.NewAuditRepo(db)
	highscoreRepo := persist.NewHighscoreRepo(db)

	// 5. Load static data
	printSection("data")

	itemTable, err := data.LoadItemTable("data/yaml/items.yaml")
	if err != nil {
		return fmt.Errorf("load item table: %w", err)
	}
	printStat("item templates", itemTable.Count())

	npcTable, err := data.LoadNpcTable("data/yaml/npcs.yaml")
	if err != nil {
		return fmt.Errorf("load npc table: %w", err)
	}
	printStat("npc templates", npcTable.Count())

	resourceTable, err := data.LoadResourceTable("data/yaml/resources.yaml")
	if err != nil {
		return fmt.Errorf("load resource table: %w", err)
	}
	printStat("resource templates", resourceTable.Count())

	zones, err := data.LoadZoneList("data/yaml/zones.yaml")
	if err != nil {
		return fmt.Errorf("load zone list: %w", err)
	}
	printStat("zones", len(zones))

	spawns, err := data.LoadSpawnList("data/yaml/spawns.yaml")
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}

	// 6. Build the world and core engines
	worldState := world.NewState(zones)
	clock := tick.NewClock(cfg.Network.TickRate)
	bus := event.NewBus()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	skills := skill.NewEngine(cfg.Server.XPRate)
	movement := validate.NewMovement(cfg.Validation, validate.FlatWorld{}, validate.FlatWorld{})
	actions := validate.NewActions(cfg.Validation)
	ledger := validate.NewLedger(auditRepo)

	npcMgr := npc.NewManager(worldState, bus, rng, log)
	printStat("npcs spawned", npcMgr.SpawnAll(spawns.NpcSpawns, npcTable))

	resMgr := resource.NewManager(worldState, bus, rng, auditRepo, log)
	printStat("nodes placed", resMgr.PlaceAll(spawns.ResourceSpawns, resourceTable))

	nodeStates, err := auditRepo.LoadNodeStates(bootCtx)
	if err != nil {
		return fmt.Errorf("load node states: %w", err)
	}
	resMgr.RestoreStates(nodeStates, uint64(time.Now().UnixMilli()))

	// 7. Lua scripting
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	npcMgr.SetDeathHook(luaEngine.OnNpcDeath)
	resMgr.SetHarvestHook(luaEngine.OnHarvest)
	printOK("lua scripts loaded")

	// 8. Handler dependencies, exchange, chat
	deps := &handler.Deps{
		Config:   cfg,
		Log:      log,
		Clock:    clock,
		World:    worldState,
		Sessions: handler.NewSessionTable(),
		Bus:      bus,

		Auth: auth.NewAccountProvider(accountRepo, cfg.Server.AutoCreateAccounts, log),

		AccountRepo: accountRepo,
		CharRepo:    charRepo,
		SkillRepo:   skillRepo,
		ItemRepo:    itemRepo,
		OfferRepo:   offerRepo,
		AuditRepo:   auditRepo,
		Highscores:  highscoreRepo,

		Items:     itemTable,
		Npcs:      npcTable,
		Resources: resourceTable,

		Skills:    skills,
		Movement:  movement,
		Actions:   actions,
		Ledger:    ledger,
		NpcMgr:    npcMgr,
		ResMgr:    resMgr,
		Scripting: luaEngine,
	}

	wallet := &handler.WorldWallet{
		World: worldState,
		CreditOffline: func(charID, amount int64) {
			// Off the simulation goroutine; the row update is idempotent
			// against the next in-world save because offline characters have
			// no live state to overwrite it.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := charRepo.AddGold(ctx, charID, amount); err != nil {
					log.Warn("offline gold credit failed",
						zap.Int64("character", charID), zap.Error(err))
				}
			}()
		},
	}
	deps.Exchange = exchange.NewEngine(cfg.Exchange, itemTable, wallet,
		&handler.WorldItems{World: worldState}, offerRepo, log)

	storedOffers, err := offerRepo.LoadActive(bootCtx)
	if err != nil {
		return fmt.Errorf("load exchange offers: %w", err)
	}
	deps.Exchange.Restore(storedOffers)
	printStat("exchange offers restored", len(storedOffers))

	deps.Chat = chat.NewRouter(worldState, chat.NewFilter(filterWords), auditRepo,
		func(target *world.PlayerInfo, bc protocol.ChatBroadcast) {
			deps.SendToChar(target.CharacterID, protocol.CHAT_BROADCAST, bc)
		}, log)
	fmt.Println()

	// 9. Packet registry and network server
	registry := handler.NewRegistry(log)
	deps.RegisterAll(registry)

	netServer := gonet.NewServer(
		cfg.Network.BindAddress,
		cfg.Network.InQueueSize,
		cfg.Network.OutQueueSize,
		cfg.Network.WriteTimeout,
		log,
	)

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(cfg.Metrics.BindAddress, log)
		metricsSrv.Start()
	}

	// 10. Tick systems
	runner := coresys.NewRunner(log)
	runner.Register(system.NewInput(deps, netServer, registry))
	runner.Register(system.NewEvents(deps, bus))
	runner.Register(system.NewNpcTick(npcMgr))
	runner.Register(system.NewResourceTick(resMgr))
	runner.Register(system.NewExchangeSweep(deps))
	runner.Register(system.NewBotScan(deps))
	runner.Register(system.NewOutput(deps))
	runner.Register(system.NewPersist(deps))
	runner.Register(system.NewCleanup(deps))

	printSection("ready")
	printReady(fmt.Sprintf("listening on %s", cfg.Network.BindAddress))
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Network.TickRate))
	fmt.Println()

	// 11. Run the listener and the game loop until a signal arrives
	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return netServer.ListenAndServe()
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.Network.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				start := time.Now()
				runner.Tick(cfg.Network.TickRate)
				metrics.TickDuration.Observe(time.Since(start).Seconds())
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return netServer.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", zap.Error(err))
	}

	// 12. Final save after the game loop has stopped
	log.Info("shutting down")
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer saveCancel()
	saved := deps.SaveAll(saveCtx)
	log.Info("final save complete", zap.Int("characters", saved))

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(context.Background()); err != nil {
			log.Warn("metrics shutdown failed", zap.Error(err))
		}
	}
	log.Info("server stopped")
	return nil
}

// filterWords is the baseline chat mask list. Operators extend it per shard.
var filterWords = []string{
	"goldseller",
	"rwt",
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
