package models

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/smartenroll/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type SEContext string

const (
	DBContextURL SEContext = "se-backend-url"
)

// sqlite result codes that mean the database could not be used right now
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// Dialector selects the gorm dialector for the configured store.
func Dialector(cfg config.Database, dataDir string) (gorm.Dialector, error) {
	switch cfg.StoreDriver() {
	case "postgres":
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s", cfg.Host, port, cfg.User, cfg.Password, cfg.Name)
		return postgres.Open(dsn), nil
	case "mysql":
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC", cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
		return mysql.Open(dsn), nil
	case "sqlite":
		err := os.MkdirAll(dataDir, os.ModePerm)
		if err != nil {
			return nil, fmt.Errorf("could not create data directory: %w", err)
		}
		return SQLite(filepath.Join(dataDir, "smartenroll.db")), nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// SQLite returns the dialector for a sqlite database file with foreign keys enabled.
func SQLite(path string) gorm.Dialector {
	return sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path))
}

// Connect opens the database, migrates the schema and registers the
// callbacks that translate store errors into the errors of this package.
func Connect(dialector gorm.Dialector) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		TranslateError: true,
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// sqlite only supports one writer at a time. A single connection
	// serializes all transactions and prevents SQLITE_BUSY errors.
	if dialector.Name() == "sqlite" {
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
	}

	err = Migrate(db)
	if err != nil {
		return nil, err
	}

	err = registerCallbacks(db)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Ping checks that the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	err = sqlDB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func registerCallbacks(db *gorm.DB) error {
	callbacks := []struct {
		processor interface {
			Register(string, func(*gorm.DB)) error
		}
		name string
		fn   func(*gorm.DB)
	}{
		{db.Callback().Query().After("*"), "smartenroll:after_query", queryCallback},
		{db.Callback().Query().After("*"), "smartenroll:after_query_general", generalCallback},
		{db.Callback().Row().After("*"), "smartenroll:after_row_general", generalCallback},
		{db.Callback().Create().After("*"), "smartenroll:after_create", createUpdateCallback},
		{db.Callback().Create().After("*"), "smartenroll:after_create_general", generalCallback},
		{db.Callback().Update().After("*"), "smartenroll:after_update", createUpdateCallback},
		{db.Callback().Update().After("*"), "smartenroll:after_update_general", generalCallback},
		{db.Callback().Delete().After("*"), "smartenroll:after_delete", deleteCallback},
		{db.Callback().Delete().After("*"), "smartenroll:after_delete_general", generalCallback},
	}

	for _, c := range callbacks {
		err := c.processor.Register(c.name, c.fn)
		if err != nil {
			return err
		}
	}

	return nil
}

// resourceName derives a readable resource name from the table name,
// e.g. "payment_transactions" becomes "payment transaction".
func resourceName(table string) string {
	name := strings.ReplaceAll(table, "_", " ")

	// Replace pluralized "ies" with "y"
	match := regexp.MustCompile("ies$")
	name = match.ReplaceAllString(name, "y")

	// Remove plural "s"
	return strings.TrimRight(name, "s")
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, resourceName(db.Statement.Table))
	}
}

// uniqueMessages explains unique constraint violations per table.
var uniqueMessages = map[string]string{
	"rooms":                "a room with this number already exists in the building",
	"teachers":             "a teacher with this email address already exists",
	"students":             "a student with this LRN or email address already exists",
	"users":                "this username is already taken",
	"academic_years":       "an academic year with this name already exists",
	"payment_transactions": "this receipt number has already been issued",
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "Duplicate entry")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "violates foreign key constraint") ||
		strings.Contains(msg, "a foreign key constraint fails")
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if isUniqueViolation(db.Error) {
		msg, ok := uniqueMessages[db.Statement.Table]
		if !ok {
			msg = fmt.Sprintf("this %s already exists", resourceName(db.Statement.Table))
		}
		db.Error = fmt.Errorf("%w: %s", ErrDuplicateKey, msg)
		return
	}

	if isForeignKeyViolation(db.Error) {
		db.Error = fmt.Errorf("%w resource for the ID you specified in the reference to another resource", ErrResourceNotFound)
	}
}

// deleteCallback reports deletes blocked by references from other tables.
func deleteCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if isForeignKeyViolation(db.Error) {
		db.Error = fmt.Errorf("%w: the %s is referenced by other records", ErrReferenced, resourceName(db.Statement.Table))
	}
}

// domainErrors are already meaningful for users and are passed on unchanged.
var domainErrors = []error{
	ErrGeneral,
	ErrStoreUnavailable,
	ErrResourceNotFound,
	ErrValidation,
	ErrDuplicateKey,
	ErrReferenced,
	ErrCapacityExceedsRoom,
	ErrSectionFull,
}

func isDomainError(err error) bool {
	for _, e := range domainErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// generalCallback handles unspecified errors.
//
// They are logged and replaced with ErrGeneral, keeping the original
// message so that it can be shown to the user.
func generalCallback(db *gorm.DB) {
	if db.Error == nil || isDomainError(db.Error) {
		return
	}

	event := log.Error().Str("table", db.Statement.Table)

	var sqliteErr *go_sqlite.Error
	if errors.As(db.Error, &sqliteErr) {
		event = event.Int("sqlite-code", sqliteErr.Code())
	}

	event.Msgf("%T: %v", db.Error, db.Error.Error())

	if unavailable(db.Error) {
		db.Error = fmt.Errorf("%w: %v", ErrStoreUnavailable, db.Error)
		return
	}

	db.Error = fmt.Errorf("%w: %v", ErrGeneral, db.Error)
}

// unavailable reports errors that mean the store cannot be used at the moment.
func unavailable(err error) bool {
	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if err.Error() == "sql: database is closed" || errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var sqliteErr *go_sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code() & 0xff
		return code == sqliteBusy || code == sqliteLocked
	}

	return false
}

// Migrate migrates all models to the schema defined in the code.
func Migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		User{},
		AcademicYear{},
		Room{},
		Teacher{},
		Section{},
		Student{},
		Payment{},
		StudentStatusHistory{},
		SectionAssignment{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
