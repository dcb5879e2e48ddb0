package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robfig/cron/v3"

	echoapi "github.com/trezcool/progim/apps/api/echo"
	"github.com/trezcool/progim/core"
	"github.com/trezcool/progim/core/alert"
	"github.com/trezcool/progim/core/tracking"
	"github.com/trezcool/progim/core/user"
	emailsvc "github.com/trezcool/progim/services/email"
	logsvc "github.com/trezcool/progim/services/logger"
	"github.com/trezcool/progim/storage/database"
	"github.com/trezcool/progim/storage/database/fallback"
	"github.com/trezcool/progim/storage/database/inmem"
	"github.com/trezcool/progim/storage/database/pg"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rl := logsvc.NewRollbarLogger(std, core.Conf)
		rl.Enable(true)
		logger = rl
	}

	// The database connection is lazy; a down database does not prevent
	// start-up, it just routes reads and writes to the local store.
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	if err = database.Ping(db); err != nil {
		logger.Warn(fmt.Sprintf("database unreachable, falling back to local store: %v", err), err)
	} else if err = database.Migrate(db); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	localDB, err := inmem.OpenSeeded()
	if err != nil {
		logger.Fatal(fmt.Sprintf("seeding local store: %v", err), err)
	}

	trackingRepo := fallback.NewTrackingRepository(pg.NewTrackingRepository(db), inmem.NewTrackingRepository(localDB), logger)
	userRepo := fallback.NewUserRepository(pg.NewUserRepository(db), inmem.NewUserRepository(localDB), logger)
	alertRepo := fallback.NewAlertRepository(pg.NewAlertRepository(db), inmem.NewAlertRepository(localDB), logger)

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(userRepo)
	trackingSvc := tracking.NewService(trackingRepo)
	alertSvc := alert.NewService(alertRepo, trackingSvc, mailSvc, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Alert Scanner

	if core.Conf.Alerts.Enabled {
		scheduler := cron.New()
		if _, err = scheduler.AddFunc(core.Conf.Alerts.Schedule, func() {
			if err := alertSvc.Scan(context.Background()); err != nil {
				logger.Error(fmt.Sprintf("alert scan: %v", err), err)
			}
		}); err != nil {
			logger.Fatal(fmt.Sprintf("scheduling alert scan: %v", err), err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Logger:      logger,
		UserSvc:     usrSvc,
		TrackingSvc: trackingSvc,
		AlertSvc:    alertSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
