// Package cache implements the compile-result cache described in
// SPEC_FULL.md §4.11: a strictly additive, optional record of each
// file's last compile, backed by gorm.io/gorm the same way the
// teacher's db package wires sqlite/libsql, but storing symbol/
// diagnostic counts instead of session/stage/apply rows.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CompileRecord is one row: the last-known compile outcome for a file.
// It never participates in resolution — it is a read side channel for
// CLI/cache-inspection tooling, never consulted by Registry or
// Resolver (SPEC_FULL.md §4.11, "strictly additive").
type CompileRecord struct {
	FilePath        string `gorm:"primaryKey"`
	ContentSHA256   string
	SymbolCount     int
	DiagnosticCount int
	LastCompiledAt  time.Time
}

// TableName pins the table name independent of struct renames.
func (CompileRecord) TableName() string { return "compile_records" }

// Cache wraps a *gorm.DB scoped to CompileRecord.
type Cache struct {
	db *gorm.DB
}

// Open connects to dsn (a file path, or a libsql://.../https:// Turso
// URL) and migrates the schema. A libsql DSN authenticates with the auth
// token read from the APEXSEM_LIBSQL_AUTH_TOKEN environment variable, mirroring
// the teacher's db.Connect for Turso-backed SQLite.
func Open(dsn string, debug bool) (*Cache, error) {
	if !isRemoteDSN(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cache: creating directory for %q: %w", dsn, err)
			}
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	dialector, conn, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("cache: opening %q: %w", dsn, err)
	}

	if err := db.AutoMigrate(&CompileRecord{}); err != nil {
		return nil, fmt.Errorf("cache: migrating: %w", err)
	}

	return &Cache{db: db}, nil
}

func dialectorFor(dsn string) (gorm.Dialector, *sql.DB, error) {
	if !isRemoteDSN(dsn) {
		return sqlite.Open(dsn), nil, nil
	}

	var (
		connector driver.Connector
		err       error
	)
	if token := os.Getenv("APEXSEM_LIBSQL_AUTH_TOKEN"); token != "" {
		connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
	} else {
		connector, err = libsql.NewConnector(dsn)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("cache: creating libsql connector for %q: %w", dsn, err)
	}

	conn := sql.OpenDB(connector)
	return sqlite.New(sqlite.Config{DriverName: "libsql", Conn: conn, DSN: dsn}), conn, nil
}

func isRemoteDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "http://") || strings.HasPrefix(dsn, "https://")
}

// ContentHash is the SHA-256 hex digest Record and Stale compare by.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Record upserts the compile outcome for filePath.
func (c *Cache) Record(filePath string, content []byte, symbolCount, diagnosticCount int) error {
	rec := CompileRecord{
		FilePath:        filePath,
		ContentSHA256:   ContentHash(content),
		SymbolCount:     symbolCount,
		DiagnosticCount: diagnosticCount,
		LastCompiledAt:  time.Now(),
	}
	return c.db.Save(&rec).Error
}

// Lookup returns the last recorded outcome for filePath, if any.
func (c *Cache) Lookup(filePath string) (*CompileRecord, bool) {
	var rec CompileRecord
	err := c.db.First(&rec, "file_path = ?", filePath).Error
	if err != nil {
		return nil, false
	}
	return &rec, true
}

// Stale reports whether filePath has no cached record, or its cached
// content hash differs from content's — i.e. whether a caller should
// recompile rather than trust the cache.
func (c *Cache) Stale(filePath string, content []byte) bool {
	rec, ok := c.Lookup(filePath)
	if !ok {
		return true
	}
	return rec.ContentSHA256 != ContentHash(content)
}

// Forget removes filePath's cached record, e.g. when the file is
// deleted from the workspace.
func (c *Cache) Forget(filePath string) error {
	return c.db.Delete(&CompileRecord{}, "file_path = ?", filePath).Error
}

// Close releases the underlying connection.
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
