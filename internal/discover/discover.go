// Package discover enumerates distillable session logs in the capture
// directory.
package discover

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var sessionPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.jsonl(\.zst)?$`)

// SessionFile is one discovered session log on disk.
type SessionFile struct {
	Path      string
	SessionID string
	Archived  bool  // compressed .jsonl.zst form
	ModTime   int64 // unix timestamp for sorting
}

// Sessions lists the session logs in captureDir, oldest first. The shared
// links log and anything not named like a session id are ignored. When a
// session exists both live and archived, the live log wins.
func Sessions(captureDir string) ([]SessionFile, error) {
	entries, err := os.ReadDir(captureDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	byID := make(map[string]SessionFile)
	for _, e := range entries {
		if e.IsDir() || !sessionPattern.MatchString(e.Name()) {
			continue
		}

		archived := strings.HasSuffix(e.Name(), ".zst")
		id := strings.TrimSuffix(strings.TrimSuffix(e.Name(), ".zst"), ".jsonl")

		if have, ok := byID[id]; ok && !have.Archived {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		byID[id] = SessionFile{
			Path:      filepath.Join(captureDir, e.Name()),
			SessionID: id,
			Archived:  archived,
			ModTime:   info.ModTime().Unix(),
		}
	}

	results := make([]SessionFile, 0, len(byID))
	for _, sf := range byID {
		results = append(results, sf)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].ModTime != results[j].ModTime {
			return results[i].ModTime < results[j].ModTime
		}
		return results[i].SessionID < results[j].SessionID
	})
	return results, nil
}

// Find locates one session's log, preferring the live .jsonl over an
// archived .jsonl.zst.
func Find(captureDir, sessionID string) (string, error) {
	live := filepath.Join(captureDir, sessionID+".jsonl")
	if _, err := os.Stat(live); err == nil {
		return live, nil
	}
	archived := live + ".zst"
	if _, err := os.Stat(archived); err == nil {
		return archived, nil
	}
	return "", os.ErrNotExist
}
