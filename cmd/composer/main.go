package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"

	"composer/internal/codec"
	"composer/internal/config"
	"composer/internal/core/apperror"
	"composer/internal/domain"
	"composer/internal/fieldcheck"
	"composer/internal/loader"
	"composer/internal/repository/sqlite"
	"composer/internal/service"
	"composer/internal/watcher"
	"composer/pkg/logger"
)

type options struct {
	configPath   string
	catalogPath  string
	snapshotPath string
	dbPath       string
	instanceID   string
	output       string
	format       string
	importOnly   bool
	record       bool
	watch        bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "config file path (default: discovered)")
	flag.StringVar(&opts.catalogPath, "catalog", "", "service catalog file (overrides config)")
	flag.StringVar(&opts.snapshotPath, "snapshot", "", "instance snapshot file (.json or .yaml)")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite inventory path (overrides config)")
	flag.StringVar(&opts.instanceID, "instance", "", "load the snapshot of this instance from the inventory")
	flag.StringVar(&opts.output, "out", "fragment", "what to print: fragment, order or layout")
	flag.StringVar(&opts.format, "format", "", "output format: json or yaml (overrides config)")
	flag.BoolVar(&opts.importOnly, "import", false, "store the -snapshot file in the inventory and exit")
	flag.BoolVar(&opts.record, "record", false, "record the change-set and layout in the inventory")
	flag.BoolVar(&opts.watch, "watch", false, "re-render whenever the catalog file changes")
	flag.Parse()

	if err := run(opts); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "composer: %v\n", err)
		if appErr, ok := apperror.AsAppError(err); ok && len(appErr.Details) > 0 {
			fmt.Fprintf(os.Stderr, "details: %v\n", appErr.Details)
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.catalogPath != "" {
		cfg.Catalog.Path = opts.catalogPath
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.watch {
		cfg.Catalog.Watch = true
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()
	log = log.WithComponent("composer")
	if cfgPath != "" {
		log.Infow("config loaded", "path", cfgPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := codec.ForFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	var inventory *service.InventoryService
	if opts.instanceID != "" || opts.importOnly || opts.record {
		repo, err := sqlite.New(cfg.Database.Path, sqlite.WithCompressThreshold(cfg.Database.CompressThreshold))
		if err != nil {
			return err
		}
		defer repo.Close()
		log.Infow("inventory opened", "path", cfg.Database.Path)
		inventory = service.NewInventoryService(repo, log)
	}

	snapshot, err := loadSnapshot(opts.snapshotPath)
	if err != nil {
		return err
	}
	if opts.importOnly {
		if snapshot == nil {
			return errors.New("-import requires -snapshot")
		}
		return inventory.Import(ctx, snapshot)
	}

	validator, err := fieldcheck.NewCEL()
	if err != nil {
		return err
	}
	bus := service.NewEventBus()

	var current atomic.Pointer[service.Engine]
	engine, err := loadEngine(cfg, validator, bus, log)
	if err != nil {
		return err
	}
	current.Store(engine)

	r := &renderer{
		out:        out,
		w:          os.Stdout,
		output:     opts.output,
		snapshot:   snapshot,
		instanceID: opts.instanceID,
		inventory:  inventory,
		record:     opts.record,
		log:        log,
	}
	if err := r.render(ctx, current.Load()); err != nil {
		return err
	}
	if !cfg.Catalog.Watch {
		return nil
	}

	events := make(chan service.Event, 64)
	bus.Subscribe(events)
	defer bus.Unsubscribe(events)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		w := watcher.New(cfg.Catalog.Path, func() {
			engine, err := loadEngine(cfg, validator, bus, log)
			if err != nil {
				log.Warnw("catalog reload failed, keeping previous catalog", "error", err)
				return
			}
			current.Store(engine)
			bus.Publish(service.Event{Type: service.EventCatalogReloaded, Payload: engine.Catalog().Names()})
			if err := r.render(ctx, current.Load()); err != nil {
				log.Warnw("render failed", "error", err)
			}
		}).WithDebounce(cfg.Catalog.Debounce).WithLogger(log)
		return w.Watch(ctx)
	})
	eg.Go(func() error {
		for {
			select {
			case ev := <-events:
				log.Debugw("event", "type", ev.Type, "payload", ev.Payload)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// loadEngine reads the catalog, checks its validation expressions and
// compiles a fresh engine.
func loadEngine(cfg *config.Config, validator *fieldcheck.CEL, bus *service.EventBus, log *logger.Logger) (*service.Engine, error) {
	c, err := loader.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	if err := validator.CheckCatalog(c.Services()); err != nil {
		return nil, fmt.Errorf("failed to check catalog: %w", err)
	}

	engine := service.NewEngine(c,
		service.WithSanitizer(service.DefaultSanitizer{}),
		service.WithFieldValidator(validator),
		service.WithLayout(cfg.Layout),
		service.WithEventBus(bus),
		service.WithLogger(log),
	)
	log.Infow("catalog loaded", "path", cfg.Catalog.Path, "services", c.Len(), "type_keys", len(engine.Relations()))
	return engine, nil
}

// loadSnapshot reads a snapshot file, picking the codec by extension. An
// empty path yields no snapshot.
func loadSnapshot(path string) (*domain.InstanceSnapshot, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	var in codec.Importer = codec.NewJSONCodec()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		in = codec.NewYAMLCodec()
	}
	return in.ParseSnapshot(f)
}

// renderer opens a session against the current engine and prints the
// requested view of it.
type renderer struct {
	out        codec.Exporter
	w          io.Writer
	output     string
	snapshot   *domain.InstanceSnapshot
	instanceID string
	inventory  *service.InventoryService
	record     bool
	log        *logger.Logger
}

func (r *renderer) open(ctx context.Context, engine *service.Engine) (*service.Session, error) {
	switch {
	case r.snapshot != nil:
		return engine.Open(*r.snapshot)
	case r.instanceID != "" && r.inventory != nil:
		return r.inventory.Open(ctx, engine, r.instanceID)
	}
	return engine.Compose(), nil
}

func (r *renderer) render(ctx context.Context, engine *service.Engine) error {
	session, err := r.open(ctx, engine)
	if err != nil {
		return err
	}

	switch r.output {
	case "fragment":
		if err := r.out.Export(session.Fragment(), r.w); err != nil {
			return err
		}
	case "order":
		items, err := session.Export()
		if err != nil {
			return err
		}
		if err := r.out.ExportOrder(items, r.w); err != nil {
			return err
		}
	case "layout":
		metadata, err := session.LayoutMetadata()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.w, metadata)
	default:
		return fmt.Errorf("unknown output %q", r.output)
	}

	if !r.record || r.inventory == nil {
		return nil
	}
	instanceID := r.instanceID
	if r.snapshot != nil {
		instanceID = r.snapshot.Instance.ID
	}
	if instanceID == "" {
		return errors.New("-record requires -snapshot or -instance")
	}
	_, err = r.inventory.Submit(ctx, instanceID, session)
	return err
}
