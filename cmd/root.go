package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cyclesync/cyclesync-go/cmd/predict"
	"github.com/cyclesync/cyclesync-go/cmd/retrain"
	"github.com/cyclesync/cyclesync-go/cmd/serve"
	"github.com/cyclesync/cyclesync-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cyclesync",
		Short: "CycleSync cycle forecasting engine",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		panic(fmt.Errorf("error setting up flags: %w", err))
	}

	subcommands := []*cobra.Command{
		serve.Command(settings),
		predict.Command(settings),
		retrain.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Forecast.ModelPath, "modelpath", viper.GetString("forecast.modelpath"), "Directory holding model artifacts")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
