package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Config struct {
	// Path is a file path or a full sqlite DSN such as file:x?mode=memory.
	Path string
	// LogQueries enables statement logging through sqldb-logger.
	LogQueries bool
	LogOutput  io.Writer
	// MaxOpenConns defaults to 1 for in-memory databases.
	MaxOpenConns int
}

// NewDB opens the database, applies the embedded migrations and wraps the
// connection with tracing and statement logging.
func NewDB(cfg Config) (*DB, error) {
	switch cfg.Path {
	case "":
		cfg.Path = "database.db"
	case ":memory:":
		cfg.Path = MemoryDSN()
	}

	if err := Migrate(cfg.Path); err != nil {
		return nil, err
	}

	sqlDB, err := otelsql.Open("sqlite3", cfg.Path,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("userapp"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := sqlDB
	if cfg.LogQueries {
		out := cfg.LogOutput
		if out == nil {
			out = os.Stdout
		}

		logger := zerolog.New(out).With().Timestamp().Str("component", "sqlite").Logger()
		db = sqldblogger.OpenDriver(cfg.Path, sqlDB.Driver(), zerologadapter.New(logger),
			sqldblogger.WithMinimumLevel(sqldblogger.LevelDebug),
			sqldblogger.WithSQLQueryAsMessage(true),
			sqldblogger.WithLogArguments(false),
		)

		// Only the traced driver is reused; its own pool is never handed out.
		if err := sqlDB.Close(); err != nil {
			db.Close()
			return nil, fmt.Errorf("close tracing pool: %w", err)
		}
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
		if isMemory(cfg.Path) {
			maxOpen = 1
		}
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(5 * time.Minute)

	if isMemory(cfg.Path) {
		// The in-memory database lives only as long as a connection does.
		db.SetConnMaxLifetime(0)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return Wrap(db), nil
}

// Wrap builds a DB around an already migrated connection.
func Wrap(db *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           db,
		QueryBuilder: &queryBuilder,
	}
}

// Migrate applies every pending migration on a dedicated connection.
func Migrate(path string) error {
	migrationDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sqlite for migrations: %w", err)
	}

	if isMemory(path) {
		// Closing the last connection would drop a shared in-memory database,
		// so it is kept open for the life of the process.
		return RunMigrations(migrationDB)
	}

	defer migrationDB.Close()

	return RunMigrations(migrationDB)
}

func RunMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func isMemory(path string) bool {
	return strings.Contains(path, "mode=memory")
}

// MemoryDSN names a private shared-cache in-memory database, visible to every
// connection of the pool.
func MemoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
}
