// Package retrain implements the manual retrain command.
package retrain

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyclesync/cyclesync-go/internal/conf"
	"github.com/cyclesync/cyclesync-go/internal/cycle"
	"github.com/cyclesync/cyclesync-go/internal/datastore"
	"github.com/cyclesync/cyclesync-go/internal/forecast"
)

// Command creates the retrain command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "retrain [user-id]",
		Short: "Retrain personalized models",
		Long:  "Retrain the personalized model for one user, or for every user with recorded cycles when no user is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID := ""
			if len(args) == 1 {
				userID = args[0]
			}
			return runRetrain(cmd, settings, userID)
		},
	}
}

func runRetrain(cmd *cobra.Command, settings *conf.Settings, userID string) error {
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
	trainer := forecast.NewTrainer(registry, settings, nil)

	userIDs := []string{userID}
	if userID == "" {
		userIDs, err = ds.GetUserIDs()
		if err != nil {
			return err
		}
	}

	retrained := 0
	for _, id := range userIDs {
		records, err := ds.GetCycleRecords(id)
		if err != nil {
			return err
		}
		if trainer.MaybeRetrain(cmd.Context(), id, cycle.Lengths(records)) {
			retrained++
			fmt.Printf("Retrained model for user %s\n", id)
		} else {
			fmt.Printf("Skipped user %s: not enough history\n", id)
		}
	}
	fmt.Printf("Retrained %d of %d users\n", retrained, len(userIDs))
	return nil
}
