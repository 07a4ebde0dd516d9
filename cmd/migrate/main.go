package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"crypto-insight/internal/db"
	"crypto-insight/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = "usage: migrate up | down [steps] | version | status"

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	loadEnvFunc = godotenv.Load
	connectFunc = func(ctx context.Context) (database, func(), error) {
		pool, err := db.InitPostgres(ctx)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
	exitFunc = os.Exit
)

// database is the subset of pgxpool.Pool the migrator drives.
type database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type migration struct {
	Version int64
	Name    string
	UpSQL   string
	DownSQL string
}

type migrator struct {
	db         database
	migrations []migration
	log        *logrus.Entry
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		logger.WithComponent("migrate").WithError(err).Error("migration failed")
		exitFunc(1)
	}
}

func run(ctx context.Context, args []string) error {
	if err := loadEnvFunc(); err != nil {
		logger.WithComponent("migrate").Debug("no .env file loaded")
	}
	if len(args) == 0 {
		return errors.New(usage)
	}

	cmd := args[0]
	steps := 1
	switch cmd {
	case "up", "version", "status":
	case "down":
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid down steps %q", args[1])
			}
			steps = n
		}
	default:
		return fmt.Errorf("unknown command %q, %s", cmd, usage)
	}

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	conn, closeConn, err := connectFunc(ctx)
	if err != nil {
		return err
	}
	defer closeConn()

	m := &migrator{db: conn, migrations: migrations, log: logger.WithComponent("migrate")}
	if err := m.ensureTable(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	switch cmd {
	case "up":
		n, err := m.up(ctx)
		m.log.WithField("applied", n).Info("migrations up complete")
		return err
	case "down":
		n, err := m.down(ctx, steps)
		m.log.WithField("rolled_back", n).Info("migrations down complete")
		return err
	case "version":
		version, name, err := m.version(ctx)
		if err != nil {
			return err
		}
		if version == 0 {
			m.log.Info("no migrations applied")
			return nil
		}
		m.log.WithFields(logrus.Fields{"version": version, "name": name}).Info("current schema version")
	case "status":
		applied, err := m.applied(ctx)
		if err != nil {
			return err
		}
		for _, line := range statusLines(migrations, applied) {
			m.log.Info(line)
		}
	}
	return nil
}

func (m *migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version     BIGINT PRIMARY KEY,
    name        TEXT NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`)
	return err
}

func (m *migrator) applied(ctx context.Context) (map[int64]bool, error) {
	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

// inTx runs fn in a transaction that is rolled back unless fn succeeds.
func (m *migrator) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (m *migrator) up(ctx context.Context) (int, error) {
	applied, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, mig := range pending(m.migrations, applied) {
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("version %d up: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return n, err
		}
		m.log.WithFields(logrus.Fields{"version": mig.Version, "name": mig.Name}).Info("applied migration")
		n++
	}
	return n, nil
}

func (m *migrator) down(ctx context.Context, steps int) (int, error) {
	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT $1`, steps)
	if err != nil {
		return 0, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return 0, err
	}

	byVersion := make(map[int64]migration, len(m.migrations))
	for _, mig := range m.migrations {
		byVersion[mig.Version] = mig
	}

	n := 0
	for _, v := range versions {
		mig, ok := byVersion[v]
		if !ok {
			return n, fmt.Errorf("no migration source for applied version %d", v)
		}
		err := m.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.DownSQL); err != nil {
				return fmt.Errorf("version %d down: %w", mig.Version, err)
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
			return err
		})
		if err != nil {
			return n, err
		}
		m.log.WithFields(logrus.Fields{"version": mig.Version, "name": mig.Name}).Info("rolled back migration")
		n++
	}
	return n, nil
}

func (m *migrator) version(ctx context.Context) (int64, string, error) {
	var (
		version int64
		name    string
	)
	err := m.db.QueryRow(ctx, `SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &name)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", nil
	}
	return version, name, err
}

// pending returns the migrations not yet applied, in version order.
func pending(migrations []migration, applied map[int64]bool) []migration {
	var out []migration
	for _, m := range migrations {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

func statusLines(migrations []migration, applied map[int64]bool) []string {
	lines := make([]string, 0, len(migrations))
	for _, m := range migrations {
		state := "pending"
		if applied[m.Version] {
			state = "applied"
		}
		lines = append(lines, fmt.Sprintf("%04d %-30s %s", m.Version, m.Name, state))
	}
	return lines
}

// parseMigrationName splits "0001_create_analyses.up.sql" into its parts.
func parseMigrationName(file string) (int64, string, string, error) {
	base := path.Base(file)
	stem, ok := strings.CutSuffix(base, ".sql")
	if !ok {
		return 0, "", "", fmt.Errorf("invalid migration filename: %s", file)
	}
	dot := strings.LastIndexByte(stem, '.')
	if dot < 0 {
		return 0, "", "", fmt.Errorf("invalid migration filename: %s", file)
	}
	direction := stem[dot+1:]
	if direction != "up" && direction != "down" {
		return 0, "", "", fmt.Errorf("invalid migration filename: %s", file)
	}
	num, name, ok := strings.Cut(stem[:dot], "_")
	if !ok || name == "" {
		return 0, "", "", fmt.Errorf("invalid migration filename: %s", file)
	}
	version, err := strconv.ParseInt(num, 10, 64)
	if err != nil || version <= 0 {
		return 0, "", "", fmt.Errorf("invalid migration filename: %s", file)
	}
	return version, name, direction, nil
}

func loadMigrations(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no migration files found")
	}

	index := make(map[int64]*migration)
	for _, file := range files {
		version, name, direction, err := parseMigrationName(file)
		if err != nil {
			return nil, err
		}
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		body := strings.TrimSpace(string(raw))
		if body == "" {
			return nil, fmt.Errorf("empty migration file: %s", file)
		}

		m, ok := index[version]
		if !ok {
			m = &migration{Version: version, Name: name}
			index[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("conflicting names for version %d: %s vs %s", version, m.Name, name)
		}
		target := &m.UpSQL
		if direction == "down" {
			target = &m.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %d", direction, version)
		}
		*target = body
	}

	out := make([]migration, 0, len(index))
	for _, m := range index {
		if m.UpSQL == "" || m.DownSQL == "" {
			return nil, fmt.Errorf("migration version %d must include both up and down files", m.Version)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
