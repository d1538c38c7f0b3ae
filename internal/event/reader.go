package event

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ReadSessionFile reads a per-session event log. Files ending in .zst are
// decompressed transparently.
func ReadSessionFile(path string) ([]StoredEvent, error) {
	r, closer, err := openLog(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	return ReadSession(r)
}

// ReadSession reads newline-delimited StoredEvents. Malformed or truncated
// lines (a capture process killed mid-write leaves one) are skipped, never
// fatal.
func ReadSession(r io.Reader) ([]StoredEvent, error) {
	var events []StoredEvent
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ev StoredEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Event == "" {
			continue
		}
		events = append(events, ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan event log: %w", err)
	}
	return events, nil
}

// ReadLinksFile reads the shared project links log.
func ReadLinksFile(path string) ([]LinkEvent, error) {
	r, closer, err := openLog(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer closer()
	return ReadLinks(r)
}

// ReadLinks reads newline-delimited LinkEvents, skipping malformed lines.
func ReadLinks(r io.Reader) ([]LinkEvent, error) {
	var links []LinkEvent
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var l LinkEvent
		if err := json.Unmarshal([]byte(line), &l); err != nil {
			continue
		}
		if l.Event == "" {
			continue
		}
		links = append(links, l)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan links log: %w", err)
	}
	return links, nil
}

// openLog opens a log file, wrapping a zstd decoder when the path says so.
func openLog(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, func() { f.Close() }, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return dec, func() { dec.Close(); f.Close() }, nil
}
