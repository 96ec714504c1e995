package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/medreminder/internal/app"
	"github.com/nhle/medreminder/internal/credential"
	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
	"github.com/nhle/medreminder/internal/notify"
	"github.com/nhle/medreminder/internal/reminder"
	"github.com/nhle/medreminder/internal/store"
	appsync "github.com/nhle/medreminder/internal/sync"
)

// shutdownTimeout bounds how long in-flight notifications may delay exit.
const shutdownTimeout = 10 * time.Second

type options struct {
	configPath string
	dbPath     string
	backend    string
	mongoURI   string
	logLevel   string
	headless   bool
}

func main() {
	var opts options
	flag.StringVarP(&opts.configPath, "config", "c", model.DefaultConfigPath(), "path to the configuration file")
	flag.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides store.sqlite_path)")
	flag.StringVar(&opts.backend, "backend", "", "store backend: sqlite or mongo (overrides store.backend)")
	flag.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection URI (overrides store.mongo_uri)")
	flag.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.BoolVar(&opts.headless, "headless", false, "run the reminder loop without the terminal UI")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)

	log, closeLog, err := logging.New(cfg.Log, opts.headless)
	if err != nil {
		return err
	}
	defer closeLog()

	vault, err := credential.Open()
	if err != nil {
		log.Warnw("keyring unavailable, using config and environment secrets only", "error", err)
	} else if filled, err := vault.Fill(&cfg.Notify); err != nil {
		log.Warnw("reading secrets from keyring failed", "error", err)
	} else if len(filled) > 0 {
		log.Infow("loaded secrets from keyring", "keys", filled)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warnw("closing store failed", "error", err)
		}
	}()

	caps := notify.Resolve(cfg.Notify, notify.Environment{})
	for name, reason := range caps.Reasons {
		log.Infow("notification channel disabled", "channel", name, "reason", reason)
	}
	visual := notify.NewVisualSink(16)
	dispatcher := notify.Build(cfg.Notify, caps, visual, log)
	log.Infow("notification channels ready", "channels", dispatcher.SinkNames())

	svc := reminder.NewService(st, log)
	poller := appsync.New(st, dispatcher, time.Duration(cfg.Poll.IntervalSec)*time.Second, log)
	poller.Start()

	defer func() {
		poller.Stop()
		if !dispatcher.Shutdown(shutdownTimeout) {
			log.Warnw("notifications still running at exit", "timeout", shutdownTimeout)
		}
	}()

	if opts.headless {
		return runHeadless(ctx, visual, log)
	}

	var secrets app.SecretStore
	if vault != nil {
		secrets = vault
	}

	program := tea.NewProgram(app.New(app.Deps{
		Service:    svc,
		Poller:     poller,
		Events:     visual.Events(),
		Secrets:    secrets,
		Config:     cfg,
		ConfigPath: opts.configPath,
		Channels:   dispatcher.SinkNames(),
		Log:        log,
	}), tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}

func applyFlags(cfg *model.AppConfig, opts options) {
	if opts.backend != "" {
		cfg.Store.Backend = opts.backend
	}
	if opts.dbPath != "" {
		cfg.Store.SQLitePath = opts.dbPath
	}
	if opts.mongoURI != "" {
		cfg.Store.MongoURI = opts.mongoURI
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
}

func openStore(ctx context.Context, cfg model.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case model.BackendSQLite, "":
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening reminder database: %w", err)
		}
		return st, nil
	case model.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", cfg.Backend, model.BackendSQLite, model.BackendMongo)
	}
}

// runHeadless logs due reminders until ctx is cancelled by a signal.
func runHeadless(ctx context.Context, visual *notify.VisualSink, log *zap.SugaredLogger) error {
	log.Infow("running headless; press Ctrl+C to stop")
	for {
		select {
		case <-ctx.Done():
			log.Infow("shutting down")
			return nil
		case ev := <-visual.Events():
			log.Infow("time to take your medicine",
				"name", ev.Reminder.Name,
				"dosage", ev.Reminder.Dosage,
				"time", ev.Reminder.Clock(),
			)
		}
	}
}
