package macro

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotPrefix = "macro_scan_"
	snapshotExt    = ".msgpack"
)

// Snapshot is the on-disk record of a scan: the asset rows and every
// correlation pair.
type Snapshot struct {
	ScanID    string       `msgpack:"scan_id"`
	Period    string       `msgpack:"period"`
	CreatedAt time.Time    `msgpack:"created_at"`
	Assets    []AssetStats `msgpack:"assets"`
	Pairs     []Pair       `msgpack:"pairs"`
}

func newSnapshot(scanID, period string, created time.Time, assets []*AssetStats, pairs []*Pair) *Snapshot {
	s := &Snapshot{
		ScanID:    scanID,
		Period:    period,
		CreatedAt: created.UTC(),
		Assets:    make([]AssetStats, len(assets)),
		Pairs:     make([]Pair, len(pairs)),
	}
	for i, a := range assets {
		s.Assets[i] = *a
	}
	for i, p := range pairs {
		s.Pairs[i] = *p
	}
	return s
}

// SnapshotName is the file name a snapshot is written under.
func SnapshotName(scanID string, created time.Time) string {
	id := scanID
	if len(id) > 8 {
		id = id[:8]
	}
	return snapshotPrefix + created.UTC().Format("20060102_150405") + "_" + id + snapshotExt
}

// WriteSnapshot encodes s into dir, creating it if needed, and returns the
// file name.
func WriteSnapshot(dir string, s *Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := SnapshotName(s.ScanID, s.CreatedAt)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return name, f.Close()
}

// ReadSnapshot decodes a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Snapshot
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

// CleanupSnapshots removes snapshot files in dir last modified before
// now-maxAge and returns how many were removed. A missing dir is not an
// error.
func CleanupSnapshots(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
