// Package predict implements the one-shot prediction command.
package predict

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/errors"
	"github.com/cyclesync/cyclesync-go/internal/forecast"
)

// Command creates the predict command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "predict [user-id]",
		Short: "Predict the next cycle start for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(settings, args[0])
		},
	}
}

func runPredict(settings *conf.Settings, userID string) error {
	ds := datastore.New(settings)
	if ds == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := ds.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() { _ = ds.Close() }()

	registry, err := forecast.NewRegistry(settings, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize model registry: %w", err)
	}
	forecaster := forecast.NewForecaster(registry, settings, nil)

	records, err := ds.GetCycleRecords(userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No recorded cycles for user %s\n", userID)
		return nil
	}

	lengths := cycle.Lengths(records)
	lastStart := records[len(records)-1].StartDate

	prediction, err := forecaster.Predict(userID, lengths, lastStart)
	if err != nil {
		if errors.Is(err, errors.ErrPredictionUnavailable) {
			fmt.Println("Prediction unavailable")
			return nil
		}
		return err
	}
	if prediction == nil {
		fmt.Printf("Not enough history: %d lengths recorded, %d needed\n",
			len(lengths), settings.Forecast.NSteps)
		return nil
	}

	fmt.Printf("Predicted next cycle start: %s\n", prediction.PredictedStart.Format("2006-01-02"))
	if prediction.Confidence != nil {
		fmt.Printf("Confidence: %.3f\n", *prediction.Confidence)
	}
	return nil
}
