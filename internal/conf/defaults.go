// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "CycleSync")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/cyclesync.log")

	viper.SetDefault("database.sqlite.enabled", true)
	viper.SetDefault("database.sqlite.path", "cyclesync.db")
	viper.SetDefault("database.mysql.enabled", false)
	viper.SetDefault("database.mysql.username", "cyclesync")
	viper.SetDefault("database.mysql.password", "secret")
	viper.SetDefault("database.mysql.database", "cyclesync")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")

	viper.SetDefault("forecast.nsteps", 3)
	viper.SetDefault("forecast.epochs", 50)
	viper.SetDefault("forecast.learningrate", 0.01)
	viper.SetDefault("forecast.modelpath", "models/")
	viper.SetDefault("forecast.retraininterval", 1440)
	viper.SetDefault("forecast.debug", false)

	viper.SetDefault("calendar.defaultcyclelength", 28)
	viper.SetDefault("calendar.defaultperiodlength", 5)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)
}
