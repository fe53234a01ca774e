package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/citewise/internal/core/domain"
	"github.com/custodia-labs/citewise/internal/core/ports/driven"
	"github.com/custodia-labs/citewise/internal/logger"
)

// FormatVersion is the corpus file format written by this package.
const FormatVersion = 1

// Metadata keys in the corpus_meta table.
const (
	metaTag           = "tag"
	metaModel         = "model"
	metaDimensions    = "dimensions"
	metaPassageCount  = "passage_count"
	metaBuiltAt       = "built_at"
	metaFormatVersion = "format_version"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore persists each corpus as a self-contained SQLite file.
// Saves are atomic: the corpus is written to a temporary file beside the
// destination and renamed into place, so readers never observe a partial file.
type CorpusStore struct{}

// NewCorpusStore creates a new SQLite corpus store.
func NewCorpusStore() *CorpusStore {
	return &CorpusStore{}
}

// Save writes corpus to path, replacing any existing file.
func (s *CorpusStore) Save(ctx context.Context, corpus *domain.Corpus, path string) error {
	if corpus == nil {
		return fmt.Errorf("save corpus: %w: nil corpus", domain.ErrInvalidInput)
	}
	for i, p := range corpus.Passages {
		if len(p.Embedding) != corpus.Dimensions {
			return fmt.Errorf("save corpus %s: passage %d has %d dimensions, expected %d: %w",
				corpus.Tag, i, len(p.Embedding), corpus.Dimensions, domain.ErrInvalidDimension)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	defer removeTemp(tmp)

	if err := writeCorpus(ctx, corpus, tmp); err != nil {
		return fmt.Errorf("save corpus %s: %w", corpus.Tag, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save corpus %s: replacing %s: %w", corpus.Tag, path, err)
	}

	logger.Debug("saved corpus %s (%d passages) to %s", corpus.Tag, corpus.Len(), path)
	return nil
}

// writeCorpus writes the full corpus into a fresh database at path.
func writeCorpus(ctx context.Context, corpus *domain.Corpus, path string) error {
	d, err := openWritable(ctx, path)
	if err != nil {
		return err
	}
	defer d.Close()

	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	meta := map[string]string{
		metaTag:           corpus.Tag,
		metaModel:         corpus.Model,
		metaDimensions:    strconv.Itoa(corpus.Dimensions),
		metaPassageCount:  strconv.Itoa(corpus.Len()),
		metaBuiltAt:       corpus.BuiltAt.UTC().Format(time.RFC3339Nano),
		metaFormatVersion: strconv.Itoa(FormatVersion),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO corpus_meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("saving metadata %s: %w", key, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (position, text, section, page, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range corpus.Passages {
		if _, err := stmt.ExecContext(ctx, i, p.Text, p.Section, p.Page, EncodeEmbedding(p.Embedding)); err != nil {
			return fmt.Errorf("saving passage %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return d.Close()
}

// removeTemp deletes a temporary corpus file and its journal, if present.
func removeTemp(path string) {
	for _, p := range []string{path, path + "-journal"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("removing temporary corpus file %s: %v", p, err)
		}
	}
}

// Load reads the corpus at path.
// Missing, unreadable or inconsistent files yield domain.ErrCorpusUnavailable.
func (s *CorpusStore) Load(ctx context.Context, path string) (*domain.Corpus, error) {
	d, meta, err := openCorpus(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	corpus := &domain.Corpus{
		Tag:        meta.Tag,
		Model:      meta.Model,
		Dimensions: meta.Dimensions,
		BuiltAt:    meta.BuiltAt,
		Passages:   make([]domain.EmbeddedPassage, 0, meta.PassageCount),
	}

	rows, err := d.conn.QueryContext(ctx, `
		SELECT text, section, page, embedding
		FROM passages
		ORDER BY position
	`)
	if err != nil {
		return nil, unavailable(path, fmt.Errorf("querying passages: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.EmbeddedPassage
		var blob []byte
		if err := rows.Scan(&p.Text, &p.Section, &p.Page, &blob); err != nil {
			return nil, unavailable(path, fmt.Errorf("scanning passage: %w", err))
		}
		p.Embedding, err = DecodeEmbedding(blob)
		if err != nil {
			return nil, unavailable(path, err)
		}
		if len(p.Embedding) != meta.Dimensions {
			return nil, unavailable(path, fmt.Errorf("passage %d has %d dimensions, expected %d",
				len(corpus.Passages), len(p.Embedding), meta.Dimensions))
		}
		corpus.Passages = append(corpus.Passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(path, fmt.Errorf("iterating passages: %w", err))
	}

	if len(corpus.Passages) != meta.PassageCount {
		return nil, unavailable(path, fmt.Errorf("found %d passages, metadata records %d",
			len(corpus.Passages), meta.PassageCount))
	}

	return corpus, nil
}

// Info reads the corpus metadata at path without loading vectors.
func (s *CorpusStore) Info(ctx context.Context, path string) (*domain.CorpusInfo, error) {
	d, meta, err := openCorpus(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return meta, nil
}

// openCorpus opens path read-only and validates its metadata.
func openCorpus(ctx context.Context, path string) (*db, *domain.CorpusInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, unavailable(path, err)
	}

	d, err := openReadOnly(path)
	if err != nil {
		return nil, nil, unavailable(path, err)
	}

	meta, err := readMeta(ctx, d)
	if err != nil {
		d.Close()
		return nil, nil, unavailable(path, err)
	}
	meta.Path = path
	return d, meta, nil
}

// readMeta loads and validates the corpus_meta table.
func readMeta(ctx context.Context, d *db) (*domain.CorpusInfo, error) {
	version, err := d.schemaVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if version < 1 {
		return nil, fmt.Errorf("corpus schema not initialised")
	}

	rows, err := d.conn.QueryContext(ctx, "SELECT key, value FROM corpus_meta")
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}

	format, err := metaInt(values, metaFormatVersion)
	if err != nil {
		return nil, err
	}
	if format > FormatVersion {
		return nil, fmt.Errorf("corpus format %d is newer than supported format %d", format, FormatVersion)
	}

	info := &domain.CorpusInfo{
		Tag:   values[metaTag],
		Model: values[metaModel],
	}
	if info.Dimensions, err = metaInt(values, metaDimensions); err != nil {
		return nil, err
	}
	if info.PassageCount, err = metaInt(values, metaPassageCount); err != nil {
		return nil, err
	}
	if info.BuiltAt, err = time.Parse(time.RFC3339Nano, values[metaBuiltAt]); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metaBuiltAt, err)
	}
	return info, nil
}

func metaInt(values map[string]string, key string) (int, error) {
	raw, ok := values[key]
	if !ok {
		return 0, fmt.Errorf("missing metadata %s", key)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid metadata %s=%q", key, raw)
	}
	return n, nil
}

// unavailable wraps a load failure with domain.ErrCorpusUnavailable.
func unavailable(path string, err error) error {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist or is empty", domain.ErrCorpusUnavailable, path)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrCorpusUnavailable, path, err)
}
