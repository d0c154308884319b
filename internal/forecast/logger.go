// logger.go: package-level service logger for forecast operations
package forecast

import (
	"log/slog"
	"sync"

	"github.com/cyclesync/cyclesync-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

// getLogger returns the forecast service logger, falling back to the
// process default when logging has not been initialized.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("forecast")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "forecast")
		}
	})
	return serviceLogger
}
