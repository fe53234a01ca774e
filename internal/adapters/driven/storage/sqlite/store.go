package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema/*.sql
var schemaFS embed.FS

// schemaStep is one numbered DDL script from schema/.
type schemaStep struct {
	version int
	name    string
	ddl     string
}

// db wraps a connection to a single corpus file.
type db struct {
	conn *sql.DB
	path string
}

// openWritable opens or creates a corpus file and brings its schema up to date.
// The rollback journal keeps a finished file self-contained so it can be renamed.
func openWritable(ctx context.Context, path string) (*db, error) {
	dsn := path + "?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	steps, err := loadSchema(schemaFS, "schema")
	if err != nil {
		conn.Close()
		return nil, err
	}
	d := &db{conn: conn, path: path}
	if err := d.upgrade(ctx, steps); err != nil {
		conn.Close()
		return nil, fmt.Errorf("upgrading schema: %w", err)
	}
	return d, nil
}

// openReadOnly opens an existing corpus file without modifying it.
func openReadOnly(path string) (*db, error) {
	dsn := "file:" + filepath.ToSlash(path) + "?mode=ro&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &db{conn: conn, path: path}, nil
}

// Close closes the database connection.
func (d *db) Close() error {
	return d.conn.Close()
}

// loadSchema reads "<version>_<name>.sql" files from dir in version order.
func loadSchema(fsys fs.FS, dir string) ([]schemaStep, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	var steps []schemaStep
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".sql")
		if !ok || entry.IsDir() {
			continue
		}
		num, name, _ := strings.Cut(base, "_")
		version, err := strconv.Atoi(num)
		if err != nil || version < 1 {
			return nil, fmt.Errorf("schema file %s: bad version prefix", entry.Name())
		}
		ddl, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading schema file %s: %w", entry.Name(), err)
		}
		steps = append(steps, schemaStep{version: version, name: name, ddl: string(ddl)})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int { return a.version - b.version })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("schema version %d defined twice", steps[i].version)
		}
	}
	return steps, nil
}

// upgrade applies each step newer than the file's user_version, one
// transaction per step, bumping user_version alongside the DDL.
func (d *db) upgrade(ctx context.Context, steps []schemaStep) error {
	current, err := d.schemaVersion(ctx)
	if err != nil {
		return err
	}
	for _, step := range steps {
		if step.version <= current {
			continue
		}
		tx, err := d.conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", step.version, step.name, err)
		}
		if _, err := tx.ExecContext(ctx, step.ddl); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("step %d (%s): %w", step.version, step.name, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(ctx, "PRAGMA user_version = "+strconv.Itoa(step.version)); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("step %d (%s): %w", step.version, step.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("step %d (%s): %w", step.version, step.name, err)
		}
	}
	return nil
}

// schemaVersion reports the file's user_version; 0 for a fresh file.
func (d *db) schemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := d.conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return version, nil
}

// EncodeEmbedding packs a vector as little-endian float32 bytes.
func EncodeEmbedding(v []float32) []byte {
	out := make([]byte, 0, 4*len(v))
	for _, f := range v {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

// DecodeEmbedding is the inverse of EncodeEmbedding.
func DecodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	v := make([]float32, 0, len(blob)/4)
	for off := 0; off < len(blob); off += 4 {
		v = append(v, math.Float32frombits(binary.LittleEndian.Uint32(blob[off:])))
	}
	return v, nil
}
