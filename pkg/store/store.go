// Package store implements the server-side file store adapter (§4.10):
// an id-addressed directory layout with a raw block file, a JSON metadata
// sidecar, and an advisory lock marker, accessed through the narrow
// interface pkg/session drives the protocol through.
package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
)

const (
	fileName     = "file"
	metadataName = "metadata.json"
	lockName     = "lock"
)

// metadata is the on-disk sidecar written after the file payload (§4.10).
// Checksum is an s6hcs-added integrity field (SPEC_FULL §4): a blake2b-256
// digest of the record's block bytes, verified — not enforced — on read.
type metadata struct {
	Name     string `json:"name"`
	Key      string `json:"key"` // 128-bit DEAL key, hex-encoded
	Checksum string `json:"checksum,omitempty"`
}

// Entry describes one listed record (§3 FileList entry).
type Entry struct {
	ID          string
	SizeInBytes uint64
	DisplayName string
}

// FileManager is the shared, read-mostly handle the session layer uses.
// Mutation is per-record and serialized through filesystem rename/remove
// semantics; no in-memory lock is required (§5).
type FileManager struct {
	root string
}

// New creates a FileManager rooted at dir, creating dir if necessary, and
// sweeps stale locks left over from a previous run (§4.10, §9).
func New(dir string) (*FileManager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create root %q: %w", dir, err)
	}
	fm := &FileManager{root: dir}
	if err := fm.sweepStaleLocks(); err != nil {
		return nil, err
	}
	return fm, nil
}

// sweepStaleLocks removes a stale lock file for every record directory
// whose metadata.json is parseable. A record missing metadata is ignored,
// matching the startup-sweep correctness rule in §9.
func (fm *FileManager) sweepStaleLocks() error {
	entries, err := os.ReadDir(fm.root)
	if err != nil {
		return fmt.Errorf("store: read root %q: %w", fm.root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		recDir := filepath.Join(fm.root, e.Name())
		if _, err := loadMetadata(recDir); err != nil {
			continue
		}
		lockPath := filepath.Join(recDir, lockName)
		if _, err := os.Stat(lockPath); err == nil {
			if err := os.Remove(lockPath); err != nil {
				slog.Warn("store: failed to clear stale lock", "record", e.Name(), "error", err)
				continue
			}
			slog.Info("store: cleared stale lock", "record", e.Name())
		}
	}
	return nil
}

func loadMetadata(recDir string) (*metadata, error) {
	b, err := os.ReadFile(filepath.Join(recDir, metadataName))
	if err != nil {
		return nil, err
	}
	var m metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// randomID generates a fresh random 128-bit record id, formatted decimal.
func randomID() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("store: generate id: %w", err)
	}
	return new(big.Int).SetBytes(buf[:]).String(), nil
}

// SaveFile writes the block file then the metadata sidecar last, so a
// record only becomes listable once both are committed (§5: save_file is
// atomic in its "listability").
func (fm *FileManager) SaveFile(name string, key [16]byte, blocks []byte) (id string, err error) {
	id, err = randomID()
	if err != nil {
		return "", err
	}
	recDir := filepath.Join(fm.root, id)
	if err := os.MkdirAll(recDir, 0o755); err != nil {
		return "", fmt.Errorf("store: create record dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(recDir, fileName), blocks, 0o644); err != nil {
		return "", fmt.Errorf("store: write file: %w", err)
	}

	sum := blake2b.Sum256(blocks)
	m := metadata{
		Name:     name,
		Key:      fmt.Sprintf("%032x", key),
		Checksum: fmt.Sprintf("%x", sum),
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("store: marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(recDir, metadataName), b, 0o644); err != nil {
		return "", fmt.Errorf("store: write metadata: %w", err)
	}
	return id, nil
}

// GetFile locks the record for the duration of the read, returning the raw
// block bytes, display name, and key.
func (fm *FileManager) GetFile(id string) (blocks []byte, name string, key [16]byte, err error) {
	recDir := filepath.Join(fm.root, id)
	m, err := loadMetadata(recDir)
	if err != nil {
		return nil, "", key, fmt.Errorf("store: record %q not found: %w", id, err)
	}

	lockPath := filepath.Join(recDir, lockName)
	if err := os.WriteFile(lockPath, nil, 0o644); err != nil {
		return nil, "", key, fmt.Errorf("store: lock record %q: %w", id, err)
	}
	defer os.Remove(lockPath)

	blocks, err = os.ReadFile(filepath.Join(recDir, fileName))
	if err != nil {
		return nil, "", key, fmt.Errorf("store: read file %q: %w", id, err)
	}

	if m.Checksum != "" {
		sum := blake2b.Sum256(blocks)
		if fmt.Sprintf("%x", sum) != m.Checksum {
			slog.Warn("store: checksum mismatch on read", "record", id)
		}
	}

	keyBytes, err := decodeKey(m.Key)
	if err != nil {
		return nil, "", key, fmt.Errorf("store: decode key for %q: %w", id, err)
	}
	return blocks, m.Name, keyBytes, nil
}

// DeleteFile removes a record's directory. If a lock is present the
// deletion is silently treated as a no-op success, matching §9's tolerant
// "a deletion while a lock is present becomes a no-op" behaviour.
func (fm *FileManager) DeleteFile(id string) error {
	recDir := filepath.Join(fm.root, id)
	lockPath := filepath.Join(recDir, lockName)
	if _, err := os.Stat(lockPath); err == nil {
		slog.Info("store: delete skipped, record locked", "record", id)
		return nil
	}
	if err := os.RemoveAll(recDir); err != nil {
		return fmt.Errorf("store: delete record %q: %w", id, err)
	}
	return nil
}

// List returns one entry per record directory whose metadata.json parses,
// in the same order os.ReadDir returns them.
func (fm *FileManager) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(fm.root)
	if err != nil {
		return nil, fmt.Errorf("store: read root: %w", err)
	}
	var out []Entry
	for _, e := range dirEntries {
		if !e.IsDir() {
			continue
		}
		recDir := filepath.Join(fm.root, e.Name())
		m, err := loadMetadata(recDir)
		if err != nil {
			continue
		}
		info, err := os.Stat(filepath.Join(recDir, fileName))
		if err != nil {
			continue
		}
		out = append(out, Entry{
			ID:          e.Name(),
			SizeInBytes: uint64(info.Size()),
			DisplayName: m.Name,
		})
	}
	return out, nil
}

// decodeKey parses a hex-encoded key via big.Int (accepting both padded
// and unpadded forms) and left-pads it into the fixed-width key.
func decodeKey(hexKey string) ([16]byte, error) {
	var buf [16]byte
	v, ok := new(big.Int).SetString(hexKey, 16)
	if !ok {
		return buf, fmt.Errorf("invalid key hex %q", hexKey)
	}
	b := v.Bytes()
	copy(buf[16-len(b):], b)
	return buf, nil
}
