// validate.go: settings validation at load time
package conf

import (
	"errors"
	"fmt"
)

// ValidateSettings checks the loaded settings for values the engine cannot
// run with. It collects all problems rather than stopping at the first.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if settings.Forecast.NSteps < 1 {
		errs = append(errs, fmt.Errorf("forecast.nsteps must be at least 1, got %d", settings.Forecast.NSteps))
	}
	if settings.Forecast.Epochs < 1 {
		errs = append(errs, fmt.Errorf("forecast.epochs must be at least 1, got %d", settings.Forecast.Epochs))
	}
	if settings.Forecast.LearningRate <= 0 {
		errs = append(errs, fmt.Errorf("forecast.learningrate must be positive, got %g", settings.Forecast.LearningRate))
	}
	if settings.Forecast.ModelPath == "" {
		errs = append(errs, errors.New("forecast.modelpath must not be empty"))
	}
	if settings.Forecast.RetrainInterval < 0 {
		errs = append(errs, fmt.Errorf("forecast.retraininterval must not be negative, got %d", settings.Forecast.RetrainInterval))
	}

	if settings.Calendar.DefaultCycleLength < 1 {
		errs = append(errs, fmt.Errorf("calendar.defaultcyclelength must be positive, got %d", settings.Calendar.DefaultCycleLength))
	}
	if settings.Calendar.DefaultPeriodLength < 1 {
		errs = append(errs, fmt.Errorf("calendar.defaultperiodlength must be positive, got %d", settings.Calendar.DefaultPeriodLength))
	}

	if settings.Database.SQLite.Enabled && settings.Database.MySQL.Enabled {
		errs = append(errs, errors.New("only one of database.sqlite and database.mysql may be enabled"))
	}
	if settings.Database.SQLite.Enabled && settings.Database.SQLite.Path == "" {
		errs = append(errs, errors.New("database.sqlite.path must not be empty"))
	}

	if settings.WebServer.Enabled && settings.WebServer.Port == "" {
		errs = append(errs, errors.New("webserver.port must not be empty"))
	}

	return errors.Join(errs...)
}
