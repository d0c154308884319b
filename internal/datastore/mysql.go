package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/cyclesync/cyclesync-go/internal/conf"
)

// MySQLStore implements Interface for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

func validateMySQLConfig(settings *conf.Settings) error {
	s := &settings.Database.MySQL
	if s.Host == "" || s.Port == "" || s.Database == "" || s.Username == "" {
		return fmt.Errorf("incomplete MySQL configuration: host, port, database and username are required")
	}
	return nil
}

// Open sets up the MySQL database connection and runs migrations.
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		store.Settings.Database.MySQL.Username, store.Settings.Database.MySQL.Password,
		store.Settings.Database.MySQL.Host, store.Settings.Database.MySQL.Port,
		store.Settings.Database.MySQL.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: createGormLogger()})
	if err != nil {
		logger().Error("Failed to open MySQL database",
			"host", store.Settings.Database.MySQL.Host,
			"port", store.Settings.Database.MySQL.Port,
			"database", store.Settings.Database.MySQL.Database,
			"error", err)
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL",
		fmt.Sprintf("%s:%s/%s", store.Settings.Database.MySQL.Host,
			store.Settings.Database.MySQL.Port, store.Settings.Database.MySQL.Database))
}

// Close closes the MySQL database connections.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve generic DB object: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close MySQL database: %w", err)
	}
	if store.Settings.Debug {
		logger().Debug("MySQL database connection closed")
	}
	return nil
}
