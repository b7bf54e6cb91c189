package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/kaspanet/txtracker/app/scenario"
	"github.com/kaspanet/txtracker/domain/txtracker"
	"github.com/kaspanet/txtracker/domain/txtracker/model/externalapi"
	"github.com/kaspanet/txtracker/infrastructure/chaindata"
	"github.com/kaspanet/txtracker/infrastructure/config"
	"github.com/kaspanet/txtracker/infrastructure/db/ldb"
	"github.com/kaspanet/txtracker/infrastructure/logger"
	"github.com/kaspanet/txtracker/infrastructure/metrics"
	"github.com/kaspanet/txtracker/infrastructure/os/signal"
	"github.com/kaspanet/txtracker/util/panics"
	"github.com/kaspanet/txtracker/util/profiling"
	"github.com/pkg/errors"
)

const (
	chainDataDirname         = "chaindata"
	metricsServerStopTimeout = 5 * time.Second
)

type txtrackerApp struct {
	cfg *config.Config
}

// StartApp starts the txtracker app, and blocks until it finishes running
func StartApp() error {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		return nil
	}

	logger.InitLog(cfg.LogFile(), cfg.ErrLogFile())
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	err = logger.ParseAndSetLogLevels(cfg.DebugLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Enable http profiling server if requested.
	if cfg.Profile != "" {
		profiling.Start(cfg.Profile, log)
	}

	app := &txtrackerApp{cfg: cfg}
	err = app.main()
	if err != nil {
		log.Criticalf("%+v", err)
		return err
	}
	return nil
}

func (app *txtrackerApp) main() error {
	interrupt := signal.InterruptListener()

	trackedScenario, err := scenario.LoadFromFile(app.cfg.Scenario)
	if err != nil {
		return err
	}

	db, err := ldb.NewLevelDB(filepath.Join(app.cfg.DataDir, chainDataDirname))
	if err != nil {
		return errors.Wrapf(err, "failed opening the chain data database")
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := db.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	provider := chaindata.New(db)
	err = trackedScenario.Seed(provider)
	if err != nil {
		return err
	}

	trackerMetrics := metrics.New()
	if app.cfg.MetricsListen != "" {
		server := trackerMetrics.NewServer(app.cfg.MetricsListen)
		server.Start()
		defer func() {
			err := server.Stop(metricsServerStopTimeout)
			if err != nil {
				log.Errorf("Failed to stop the metrics server: %s", err)
			}
		}()
	}

	printer := newNotificationPrinter(os.Stdout, trackedScenario.BlockNames(), app.cfg.ShowNotifications)
	tracker := txtracker.New(app.cfg.TrackerConfig(),
		trackerMetrics.InstrumentProvider(provider), trackerMetrics.InstrumentSink(printer))

	err = runEventLoop(tracker, trackedScenario.ChainEvents(), trackerMetrics, interrupt)
	if err != nil {
		return err
	}

	log.Infof("Replay finished: %d settled and %d done notifications, %d transactions still tracked, "+
		"%d evicted, last finalized block %s", printer.settledCount, printer.doneCount,
		tracker.TrackedTransactionsCount(), tracker.EvictedTransactionsCount(),
		printer.blockName(tracker.LastFinalized()))
	return nil
}

// runEventLoop feeds events to tracker one at a time, in order. It stops at
// the first failing event, or between events once interrupt is closed.
func runEventLoop(tracker *txtracker.Tracker, events []externalapi.ChainEvent,
	trackerMetrics *metrics.Metrics, interrupt <-chan struct{}) error {

	for i, event := range events {
		select {
		case <-interrupt:
			log.Warnf("Interrupted after %d of %d events", i, len(events))
			return nil
		default:
		}

		err := tracker.HandleEvent(event)
		if err != nil {
			return errors.Wrapf(err, "failed handling event #%d", i)
		}
		trackerMetrics.Observe(tracker)
	}
	return nil
}
