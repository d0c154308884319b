// logger.go: package-level service logger for database operations
package datastore

import (
	"log/slog"
	"sync"

	"github.com/cyclesync/cyclesync-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

// logger returns the datastore service logger, falling back to the process
// default when logging has not been initialized.
func logger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("datastore")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "datastore")
		}
	})
	return serviceLogger
}
