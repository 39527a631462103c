package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// #region cycle-log
// CycleLog is an append-only JSONL file of cycle records.
type CycleLog struct {
	f    *os.File
	path string
}

// OpenCycleLog opens path for appending, creating it and its directory.
func OpenCycleLog(path string) (*CycleLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open cycle log: %w", err)
	}
	return &CycleLog{f: f, path: path}, nil
}

// Path returns the file the log appends to.
func (l *CycleLog) Path() string { return l.path }

// Append writes rec as one line with a single write call, so a crash can
// only ever truncate the final line.
func (l *CycleLog) Append(rec CycleRecord) error {
	line, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("append cycle record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (l *CycleLog) Close() error {
	return l.f.Close()
}

// EncodeRecord renders rec as a newline-terminated JSON line. Non-ASCII
// text and HTML characters are written as-is.
func EncodeRecord(rec CycleRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("marshal cycle record: %w", err)
	}
	return buf.Bytes(), nil
}
// #endregion cycle-log

// #region read
// ReadCycleLog decodes every record in r. A final line without its newline
// that fails to decode is an interrupted write and is skipped; any other
// malformed line is an error naming its line number.
func ReadCycleLog(r io.Reader) ([]CycleRecord, error) {
	br := bufio.NewReader(r)
	var out []CycleRecord
	lineNo := 0
	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			lineNo++
			complete := line[len(line)-1] == '\n'
			if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
				var rec CycleRecord
				if err := json.Unmarshal(trimmed, &rec); err != nil {
					if !complete {
						break
					}
					return out, fmt.Errorf("line %d: %w", lineNo, err)
				}
				out = append(out, rec)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return out, fmt.Errorf("read cycle log: %w", readErr)
		}
	}
	return out, nil
}

// ReadCycleLogFile reads all records from path.
func ReadCycleLogFile(path string) ([]CycleRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cycle log: %w", err)
	}
	defer f.Close()
	return ReadCycleLog(f)
}
// #endregion read
