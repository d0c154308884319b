package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Forecast.NSteps = 3
	s.Forecast.Epochs = 50
	s.Forecast.LearningRate = 0.01
	s.Forecast.ModelPath = "models/"
	s.Forecast.RetrainInterval = 1440
	s.Calendar.DefaultCycleLength = 28
	s.Calendar.DefaultPeriodLength = 5
	s.Database.SQLite.Enabled = true
	s.Database.SQLite.Path = "cyclesync.db"
	s.WebServer.Enabled = true
	s.WebServer.Port = "8080"
	return s
}

func TestValidateSettingsAcceptsDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"zero nsteps", func(s *Settings) { s.Forecast.NSteps = 0 }, "forecast.nsteps"},
		{"zero epochs", func(s *Settings) { s.Forecast.Epochs = 0 }, "forecast.epochs"},
		{"negative learning rate", func(s *Settings) { s.Forecast.LearningRate = -0.5 }, "forecast.learningrate"},
		{"empty model path", func(s *Settings) { s.Forecast.ModelPath = "" }, "forecast.modelpath"},
		{"negative retrain interval", func(s *Settings) { s.Forecast.RetrainInterval = -1 }, "forecast.retraininterval"},
		{"zero cycle length", func(s *Settings) { s.Calendar.DefaultCycleLength = 0 }, "calendar.defaultcyclelength"},
		{"zero period length", func(s *Settings) { s.Calendar.DefaultPeriodLength = 0 }, "calendar.defaultperiodlength"},
		{"both databases enabled", func(s *Settings) { s.Database.MySQL.Enabled = true }, "only one of"},
		{"sqlite without path", func(s *Settings) { s.Database.SQLite.Path = "" }, "database.sqlite.path"},
		{"webserver without port", func(s *Settings) { s.WebServer.Port = "" }, "webserver.port"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)
			err := ValidateSettings(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateSettingsCollectsAllErrors(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Forecast.NSteps = 0
	s.Forecast.Epochs = 0

	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forecast.nsteps")
	assert.Contains(t, err.Error(), "forecast.epochs")
}
