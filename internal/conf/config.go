// config.go: settings for the cyclesync engine. Defines the settings struct
// and functions to load and persist the configuration.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig defines the configuration for a log file.
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to the log file
}

// MainSettings contains general application settings.
type MainSettings struct {
	Name string    // name of the node/instance
	Log  LogConfig // main log settings
}

// SQLiteSettings contains SQLite database settings.
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite storage
	Path    string // path to the SQLite database file
}

// MySQLSettings contains MySQL database settings.
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL storage
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// DatabaseSettings selects and configures the backing store.
type DatabaseSettings struct {
	SQLite SQLiteSettings // SQLite settings
	MySQL  MySQLSettings  // MySQL settings
}

// ForecastSettings configures the sequence model and its training loop.
type ForecastSettings struct {
	NSteps          int     // number of past cycle lengths fed to the model
	Epochs          int     // bounded training iterations per retrain run
	LearningRate    float64 // optimizer learning rate
	ModelPath       string  // directory holding model artifacts
	RetrainInterval int     // periodic retrain sweep interval in minutes, 0 disables
	Debug           bool    // true to enable forecast debug logging
}

// CalendarSettings configures projection defaults.
type CalendarSettings struct {
	DefaultCycleLength  int // fallback cycle length when a profile has none
	DefaultPeriodLength int // fallback period length when a profile has none
}

// WebServerSettings contains HTTP API settings.
type WebServerSettings struct {
	Enabled bool   // true to enable the API server
	Port    string // port to listen on
	Debug   bool   // true to enable API debug logging
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool // true to enable debug mode

	Main      MainSettings
	Database  DatabaseSettings
	Forecast  ForecastSettings
	Calendar  CalendarSettings
	WebServer WebServerSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	once             sync.Once
)

// Load reads the configuration file (creating a default one if none exists),
// applies defaults and environment overrides, and validates the result.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the
// configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("CYCLESYNC")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes a config file populated with the current
// defaults to the first default config path.
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	settings := viper.AllSettings()
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling default config: %w", err)
	}

	if err := os.WriteFile(configPath, yamlData, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})
	return settingsInstance
}

// SaveSettings persists the current settings to the active config file.
func SaveSettings() error {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()

	if settingsInstance == nil {
		return errors.New("no settings loaded")
	}

	yamlData, err := yaml.Marshal(settingsInstance)
	if err != nil {
		return fmt.Errorf("error marshaling settings: %w", err)
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return fmt.Errorf("error getting default config paths: %w", err)
		}
		configPath = filepath.Join(configPaths[0], "config.yaml")
	}

	if err := os.WriteFile(configPath, yamlData, 0o644); err != nil {
		return fmt.Errorf("error writing settings file: %w", err)
	}
	return nil
}

// GetDefaultConfigPaths returns the config search paths in priority order:
// the working directory, then an OS-appropriate user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err != nil {
		// No home directory (e.g. in containers); the working directory
		// alone is still usable.
		return paths, nil
	}
	paths = append(paths, filepath.Join(configDir, "cyclesync"))
	return paths, nil
}

// GetBasePath resolves a possibly-relative directory against the working
// directory and ensures it exists.
func GetBasePath(path string) string {
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, path)
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "."
	}
	return path
}
