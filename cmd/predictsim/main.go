package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ddnetgo/predict/internal/config"
	"github.com/ddnetgo/predict/internal/core/event"
	"github.com/ddnetgo/predict/internal/data"
	gonet "github.com/ddnetgo/predict/internal/net"
	"github.com/ddnetgo/predict/internal/net/packet"
	"github.com/ddnetgo/predict/internal/persist"
	"github.com/ddnetgo/predict/internal/replay"
	"github.com/ddnetgo/predict/internal/scripting"
	"github.com/ddnetgo/predict/internal/system"
)

// streamQueue is the number of frames read ahead of the simulation.
const streamQueue = 64

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(cfgPath string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m           ddpredict  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m     DDNet client prediction checker       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mconfig:\033[0m %s\n\n", cfgPath)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main logic ────────────────────────────────────────────────────

func run() error {
	record := flag.String("record", "", "generate a bot replay at this path instead of checking replays")
	mapName := flag.String("map", "", "map for -record (default: first map by name)")
	players := flag.Int("players", 2, "bots for -record")
	ticks := flag.Int("ticks", 500, "ticks for -record")
	worst := flag.Int("worst", 0, "after checking, list the N journaled runs with the most mismatches")
	flag.Parse()

	// 1. Load config
	cfgPath := config.Path()
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

	printBanner(cfgPath)

	// 3. Load maps
	printSection("data")
	maps, err := data.LoadMapTable(cfg.Simulation.MapFile)
	if err != nil {
		return fmt.Errorf("load maps: %w", err)
	}
	printStat("maps", maps.Count())
	fmt.Println()

	if *record != "" {
		return recordReplay(*record, *mapName, *players, *ticks, maps, cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Optional run journal
	var journal system.Journal
	var repo *persist.JournalRepo
	if cfg.Replay.Journal {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		if _, err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")
		fmt.Println()
		repo = persist.NewJournalRepo(db)
		journal = repo
	}

	// 5. Find replays
	paths, err := filepath.Glob(filepath.Join(cfg.Replay.Dir, "*.ddr"))
	if err != nil {
		return fmt.Errorf("list replays: %w", err)
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no replays in %s", cfg.Replay.Dir)
	}

	// 6. One Lua VM per worker; a VM is not safe for concurrent use
	workers := min(cfg.Replay.Workers, len(paths))
	engines := make(chan *scripting.Engine, workers)
	for range workers {
		eng, err := scripting.NewEngine(cfg.Simulation.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("init scripting: %w", err)
		}
		defer eng.Close()
		engines <- eng
	}

	printSection("replays")
	printStat("replays", len(paths))
	printStat("workers", workers)
	printReady("checking")
	fmt.Println()

	reg := replay.NewRegistry(log)
	results := newCollector()
	start := time.Now()

	swg := sizedwaitgroup.New(workers)
	for _, path := range paths {
		if err := swg.AddWithContext(ctx); err != nil {
			break
		}
		go func() {
			defer swg.Done()
			eng := <-engines
			defer func() { engines <- eng }()

			res, err := checkReplay(ctx, path, cfg, maps, eng, reg, journal, log)
			if err != nil {
				log.Error("replay failed", zap.String("replay", path), zap.Error(err))
				results.fail(path)
				return
			}
			results.add(res)
		}()
	}
	swg.Wait()

	printSummary(results, time.Since(start))
	if ctx.Err() != nil {
		return fmt.Errorf("interrupted")
	}
	if *worst > 0 {
		if repo == nil {
			log.Warn("-worst needs the run journal", zap.Int("worst", *worst))
			return nil
		}
		if err := printWorst(ctx, repo, *worst); err != nil {
			return fmt.Errorf("worst runs: %w", err)
		}
	}
	return nil
}

func checkReplay(ctx context.Context, path string, cfg *config.Config, maps *data.MapTable,
	eng *scripting.Engine, reg *packet.Registry, journal system.Journal, log *zap.Logger) (replay.Result, error) {
	name := filepath.Base(path)
	rlog := log.With(zap.String("replay", name))

	stream, err := gonet.OpenStream(path, streamQueue, rlog)
	if err != nil {
		return replay.Result{}, err
	}

	bus := event.NewBus()
	sess := replay.NewSession(replay.Options{
		Name:      name,
		World:     cfg.World.Prediction(),
		Threshold: cfg.Replay.Threshold,
		MaxDiffs:  cfg.Replay.MaxDiffs,
	}, maps, eng, bus, log)

	p := system.NewPipeline(ctx, sess, stream, system.Deps{
		Registry: reg,
		Bus:      bus,
		Journal:  journal,
		Report:   func(res replay.Result) { report(rlog, res) },
		Log:      rlog,
	})
	return p.Run(), nil
}

func report(log *zap.Logger, res replay.Result) {
	fields := []zap.Field{
		zap.String("map", res.Map),
		zap.Int("ticks", res.Ticks),
		zap.Int("snapshots", res.Snapshots),
		zap.Int("mismatches", res.Mismatches),
		zap.Int("errors", res.Errors),
		zap.Duration("took", res.Duration),
	}
	if res.Mismatches > 0 || res.Errors > 0 {
		log.Warn("replay diverged", fields...)
		return
	}
	log.Info("replay ok", fields...)
}

func printSummary(c *collector, took time.Duration) {
	results, failed := c.snapshot()
	p := message.NewPrinter(language.English)

	printSection("summary")
	var ticks, mismatches, errs int
	for _, res := range results {
		ticks += res.Ticks
		mismatches += res.Mismatches
		errs += res.Errors

		mark := "\033[32m✓\033[0m"
		if res.Mismatches > 0 || res.Errors > 0 {
			mark = "\033[31m✗\033[0m"
		}
		p.Printf("  %s %-28s %8d ticks %6d mismatches  %x\n",
			mark, res.Replay, res.Ticks, res.Mismatches, res.Checksum[:6])
	}
	for _, path := range failed {
		fmt.Printf("  \033[31m✗\033[0m %s (unreadable)\n", filepath.Base(path))
	}
	fmt.Println()
	p.Printf("  %d replays, %d ticks, %d mismatches, %d errors in %v\n",
		len(results), ticks, mismatches, errs, took.Round(time.Millisecond))
	if secs := took.Seconds(); secs > 0 {
		p.Printf("  %.0f ticks/s\n", float64(ticks)/secs)
	}
	fmt.Println()
}

// runLister is the part of the journal the worst run report reads.
type runLister interface {
	WorstRuns(ctx context.Context, limit int) ([]persist.RunRecord, error)
}

func printWorst(ctx context.Context, runs runLister, limit int) error {
	worst, err := runs.WorstRuns(ctx, limit)
	if err != nil {
		return err
	}
	printSection("worst runs")
	for _, line := range worstLines(message.NewPrinter(language.English), worst) {
		fmt.Println(line)
	}
	fmt.Println()
	return nil
}

func worstLines(p *message.Printer, runs []persist.RunRecord) []string {
	if len(runs) == 0 {
		return []string{"  no journaled runs"}
	}
	lines := make([]string, 0, len(runs))
	for _, run := range runs {
		lines = append(lines, p.Sprintf("  %-28s %-12s %8d ticks %6d mismatches  %s",
			run.Replay, run.Map, run.Ticks, run.Mismatches, run.StartedAt.Format(time.DateTime)))
	}
	return lines
}

func recordReplay(path, mapName string, players, ticks int, maps *data.MapTable, cfg *config.Config) error {
	if mapName == "" {
		names := maps.Names()
		if len(names) == 0 {
			return fmt.Errorf("no maps loaded")
		}
		mapName = names[0]
	}
	info := maps.Get(mapName)
	if info == nil {
		return fmt.Errorf("unknown map %q", mapName)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay: %w", err)
	}
	bw := bufio.NewWriter(f)
	frames, err := replay.Generate(bw, info, replay.GenerateOptions{
		Players:   players,
		Ticks:     ticks,
		SnapEvery: max(cfg.Simulation.PredictAhead, 1),
		World:     cfg.World.Prediction(),
	})
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", path, err)
	}
	printOK(fmt.Sprintf("recorded %d frames on %s to %s", frames, mapName, path))
	return nil
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
