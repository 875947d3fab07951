package embedding

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const createVectorsTable = `CREATE TABLE IF NOT EXISTS vectors (
	key    TEXT PRIMARY KEY,
	vector BLOB NOT NULL
)`

// Cached wraps an Engine and persists vectors in SQLite so that an unchanged
// playbook is not re-embedded on every start.
type Cached struct {
	inner Engine
	db    *sql.DB
}

// NewCached opens (or creates) the SQLite cache at path.
func NewCached(inner Engine, path string) (*Cached, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	if _, err := db.Exec(createVectorsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating embedding cache schema: %w", err)
	}
	return &Cached{inner: inner, db: db}, nil
}

// Close releases the database handle.
func (c *Cached) Close() error { return c.db.Close() }

// Name returns the wrapped engine's name.
func (c *Cached) Name() string { return c.inner.Name() }

// Embed returns the cached vector for text or computes and stores it.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch serves hits from SQLite and embeds only the misses.
func (c *Cached) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		vec, err := c.lookup(ctx, c.key(text))
		if err != nil {
			return nil, err
		}
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
			continue
		}
		out[i] = vec
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
		if err := c.store(ctx, c.key(missTexts[j]), fresh[j]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Cached) key(text string) string {
	h := sha256.Sum256([]byte(c.inner.Name() + "\x00" + text))
	return fmt.Sprintf("%x", h)
}

func (c *Cached) lookup(ctx context.Context, key string) ([]float32, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx, "SELECT vector FROM vectors WHERE key = ?", key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}
	return decodeVector(blob)
}

func (c *Cached) store(ctx context.Context, key string, vec []float32) error {
	_, err := c.db.ExecContext(ctx, "INSERT OR REPLACE INTO vectors (key, vector) VALUES (?, ?)", key, encodeVector(vec))
	if err != nil {
		return fmt.Errorf("writing embedding cache: %w", err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
