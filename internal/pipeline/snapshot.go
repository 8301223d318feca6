package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotTimeLayout = "20060102_150405"

// Snapshot is one archived copy of the raw input.
type Snapshot struct {
	Path       string    `json:"path"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	CapturedAt time.Time `json:"capturedAt"`
}

// SnapshotStore is the append-only archive of raw inputs, one timestamped
// CSV per capture. Captures within the same second share a path, so the
// later write wins.
type SnapshotStore struct {
	Dir    string
	Prefix string
	Now    func() time.Time
}

// NewSnapshotStore creates a store over dir with the given file prefix.
func NewSnapshotStore(dir, prefix string) *SnapshotStore {
	return &SnapshotStore{Dir: dir, Prefix: prefix, Now: time.Now}
}

// SnapshotPath returns the archive path a capture at t would use.
func (ss *SnapshotStore) SnapshotPath(t time.Time) string {
	name := fmt.Sprintf("%s_%s.csv", ss.Prefix, t.Format(snapshotTimeLayout))
	return filepath.Join(ss.Dir, name)
}

// Save copies src into the archive under a timestamped name, creating the
// archive directory if needed. Returns the snapshot path.
func (ss *SnapshotStore) Save(src string) (string, error) {
	if err := os.MkdirAll(ss.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	dst := ss.SnapshotPath(ss.Now())

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open raw file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to copy raw file: %w", err)
	}
	return dst, nil
}

// List returns every snapshot in the archive, oldest first. A missing
// archive directory is an empty list, not an error.
func (ss *SnapshotStore) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(ss.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var snapshots []Snapshot
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, ss.Prefix+"_") || !strings.HasSuffix(name, ".csv") {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, ss.Prefix+"_"), ".csv")
		capturedAt, err := time.ParseInLocation(snapshotTimeLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		snapshots = append(snapshots, Snapshot{
			Path:       filepath.Join(ss.Dir, name),
			Name:       name,
			Size:       info.Size(),
			CapturedAt: capturedAt,
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CapturedAt.Before(snapshots[j].CapturedAt)
	})
	return snapshots, nil
}
