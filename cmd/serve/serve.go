// Package serve implements the HTTP API server command.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	api "github.com/cyclesync/cyclesync-go/internal/api/v2"
	"github.com/cyclesync/cyclesync-go/internal/calendar"
	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/forecast"
	"github.com/cyclesync/cyclesync-go/internal/logging"
	"github.com/cyclesync/cyclesync-go/internal/observability"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Start the API server with the calendar projector, the forecaster, and the background retrain worker.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port to listen on")
	cmd.Flags().IntVar(&settings.Forecast.RetrainInterval, "retraininterval", viper.GetInt("forecast.retraininterval"), "Periodic retrain sweep interval in minutes, 0 disables")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func runServer(settings *conf.Settings) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := ds.Close(); err != nil {
			logging.Error("Failed to close datastore", "error", err)
		}
	}()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	registry, err := forecast.NewRegistry(settings, metrics.Forecast)
	if err != nil {
		return fmt.Errorf("failed to initialize model registry: %w", err)
	}
	trainer := forecast.NewTrainer(registry, settings, metrics.Forecast)
	forecaster := forecast.NewForecaster(registry, settings, metrics.Forecast)
	worker := forecast.NewWorker(trainer, ds, settings)
	projector := calendar.NewProjector(settings, metrics.Calendar)

	e := echo.New()
	e.HideBanner = true
	api.New(e, ds, settings, projector, forecaster, worker, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Starting API server", "port", settings.WebServer.Port)
		if err := e.Start(":" + settings.WebServer.Port); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := worker.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return nil // normal shutdown
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		logging.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
