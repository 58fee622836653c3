package database

import (
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gin-gorm-users/internal/core/logger"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

const (
	MigrateAuto  = "auto"  // gorm AutoMigrate, handy for local runs
	MigrateGoose = "goose" // versioned SQL under migrations/<dialect>
	MigrateNone  = "none"
)

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Migrate brings the schema up to date using the configured strategy.
func Migrate(db *gorm.DB, driver, mode string, l *zap.Logger, models ...any) error {
	switch mode {
	case MigrateAuto:
		return db.AutoMigrate(models...)
	case MigrateGoose:
		return Goose(db, driver, "up", l)
	case MigrateNone, "":
		return nil
	}
	return fmt.Errorf("unknown migrate mode %q", mode)
}

// Goose runs one goose command (up / down / status / version) against the
// embedded migrations of the driver's dialect.
func Goose(db *gorm.DB, driver, command string, l *zap.Logger) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	if l == nil {
		l = zap.NewNop()
	}
	std, err := logger.ToStdLogger(l.Named("goose"), zapcore.InfoLevel)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(std)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	dir := path.Join("migrations", dialect)
	switch command {
	case "up":
		err = goose.Up(sqlDB, dir)
	case "down":
		err = goose.Down(sqlDB, dir)
	case "status":
		err = goose.Status(sqlDB, dir)
	case "version":
		err = goose.Version(sqlDB, dir)
	default:
		return fmt.Errorf("unknown goose command %q", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
