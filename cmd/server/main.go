package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"transroute/internal/config"
	"transroute/internal/controllers"
	"transroute/internal/jobs"
	"transroute/internal/logger"
	"transroute/internal/notifications"
	"transroute/internal/repositories"
	"transroute/internal/routes"
	"transroute/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	// Initialize structured logging to file
	logger.Setup(logger.Options{
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Stdout:     true,
	})
	gin.SetMode(gin.ReleaseMode)

	db, err := config.InitDB(cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	stopRepo := repositories.NewStopRepository(db)
	routeRepo := repositories.NewRouteRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)
	tripRepo := repositories.NewTripRepository(db)
	segmentRepo := repositories.NewSegmentRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)
	clientRepo := repositories.NewClientRepository(db)

	hub := notifications.NewHub(cfg.CORSOrigins)
	defer hub.Close()

	stopSvc := services.NewStopService(stopRepo, cfg.DefaultCountry)
	routeSvc := services.NewRouteService(routeRepo, stopSvc)
	templateSvc := services.NewTemplateService(templateRepo, routeSvc)
	searchSvc := services.NewSearchService(segmentRepo)
	tripSvc := services.NewTripService(tripRepo, segmentRepo, routeSvc, templateSvc,
		services.Publishers{hub, searchSvc}, cfg.DefaultBasePrice)
	reservationSvc := services.NewReservationService(reservationRepo, auditRepo, hub)

	r := routes.SetupRouter(routes.Options{
		APIPrefix:   cfg.APIPrefix,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
	}, routes.Handlers{
		Stops:        controllers.NewStopController(stopSvc),
		Routes:       controllers.NewRouteController(routeSvc),
		Templates:    controllers.NewTemplateController(templateSvc),
		Trips:        controllers.NewTripController(tripSvc),
		Reservations: controllers.NewReservationController(reservationSvc, searchSvc),
		Clients:      controllers.NewClientController(clientRepo),
		Companies:    controllers.NewCompanyController(db),
		Vehicles:     controllers.NewVehicleController(db),
		Ledger:       controllers.NewLedgerController(db),
		Invitations:  controllers.NewInvitationController(db),
		Hub:          hub,
		Health:       controllers.Health(db),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs.NewNoShowJob(reservationSvc, cfg.NoShowInterval, cfg.NoShowGrace).Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Graceful shutdown failed")
	}
}
