package logging

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Follow calls fn for every record already in path and then for each record
// appended later, until ctx is done or fn returns an error. Partial lines
// are held back until their newline arrives.
func Follow(ctx context.Context, path string, fn func(CycleRecord) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cycle log: %w", err)
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	br := bufio.NewReader(f)
	var pending []byte
	drain := func() error {
		for {
			chunk, err := br.ReadBytes('\n')
			pending = append(pending, chunk...)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read cycle log: %w", err)
			}
			line := bytes.TrimSpace(pending)
			if len(line) > 0 {
				var rec CycleRecord
				if err := json.Unmarshal(line, &rec); err != nil {
					return fmt.Errorf("decode cycle record: %w", err)
				}
				if err := fn(rec); err != nil {
					return err
				}
			}
			pending = pending[:0]
		}
	}

	if err := drain(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) {
				if err := drain(); err != nil {
					return err
				}
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, werr)
		}
	}
}
