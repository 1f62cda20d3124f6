package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cryptogram-sync/core/loader"
	"cryptogram-sync/core/logger"
	"cryptogram-sync/core/middleware/auth"
	"cryptogram-sync/core/middleware/rayid"
	"cryptogram-sync/core/reconcile"
	"cryptogram-sync/feature/games"
	"cryptogram-sync/feature/integrity"
	featuresync "cryptogram-sync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "cryptogram-sync/docs/swagger"
)

// @title Cryptogram Sync API
// @version 1.0
// @description Control API of the cryptogram game record reconciliation engine.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync service",
	Long: `Starts the HTTP control server, runs an app-launch cycle and schedules
background cycles until interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 1. Wire configuration, store and coordinator
		rt, err := newRuntime(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer rt.Close()
		logg := rt.logger.With(zap.String("owner_id", rt.cfg.Sync.OwnerID))
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Register Features
		syncFeature := featuresync.NewFeature(rt.coordinator, logg)
		mgr := loader.NewManager()
		mgr.Register(syncFeature)
		mgr.Register(games.NewFeature(rt.store, rt.cfg.Sync.OwnerID, logg))
		mgr.Register(integrity.NewFeature(rt.objects, rt.cfg.Storage, rt.db, rt.cfg.Sync.OwnerID, logg))

		// RayID first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public routes
		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{})))

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 4. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", rt.cfg.Server.Address()))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Launch cycle and background schedule
		svc := syncFeature.Service()
		svc.TriggerAsync(ctx, reconcile.TriggerAppLaunch)
		svc.RunBackground(ctx, rt.cfg.Server.BackgroundInterval)

		if rt.archiver != nil {
			go func() {
				if n, err := rt.archiver.Prune(ctx); err != nil {
					logg.Warn("Diagnostics prune failed", zap.Error(err))
				} else if n > 0 {
					logg.Info("Pruned old diagnostics", zap.Int("removed", n))
				}
			}()
		}

		// 6. Graceful Shutdown
		<-ctx.Done()
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout); err != nil {
			logg.Warn("Server shutdown failed", zap.Error(err))
		}
		svc.Close()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
