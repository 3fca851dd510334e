package sqlstore

import (
	"fmt"

	"github.com/dom/civ-draft/internal/domain"
	"github.com/dom/civ-draft/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NewConnection opens the database for driver, bridges gorm's logger to zap
// and migrates every table.
func NewConnection(driver, databaseURL string, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(databaseURL)
	case DriverSQLite:
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLog := zapgorm2.New(log.Named("gorm"))
	gormLog.IgnoreRecordNotFoundError = true

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Lobby{},
		&domain.CurrentSelection{},
		&domain.ChatMessage{},
		&domain.DraftAction{},
		&domain.Leader{},
		&domain.Map{},
		&domain.Preset{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Lobby:       NewLobbyRepository(db),
		Selection:   NewSelectionRepository(db),
		Chat:        NewChatRepository(db),
		DraftAction: NewDraftActionRepository(db),
		Catalog:     NewCatalogRepository(db),
		Preset:      NewPresetRepository(db),
	}
}
