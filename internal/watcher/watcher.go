// Package watcher polls tracked files and reports when their content
// changes or they disappear.
package watcher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"sync"
	"time"
)

type EventKind int

const (
	EventChanged EventKind = iota + 1
	EventMissing
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Snapshot is what the watcher last knew about a file.
type Snapshot struct {
	Hash    string
	Size    int64
	ModTime time.Time
}

type Event struct {
	Path string
	Kind EventKind
	Prev Snapshot
	Curr Snapshot
}

type Options struct {
	Interval time.Duration
	// HashUnchanged rehashes files whose size and modification time did not
	// change.
	HashUnchanged bool
	Buffer        int
}

type entry struct {
	snap    Snapshot
	missing bool
}

type Watcher struct {
	opts   Options
	mu     sync.Mutex
	files  map[string]*entry
	events chan Event
	stop   chan struct{}
	once   sync.Once
}

func New(opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	return &Watcher{
		opts:   opts,
		files:  make(map[string]*entry),
		events: make(chan Event, opts.Buffer),
		stop:   make(chan struct{}),
	}
}

func (w *Watcher) Events() <-chan Event { return w.events }

// Start polls every Interval until Stop.
func (w *Watcher) Start() {
	go func() {
		ticker := time.NewTicker(w.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				w.Scan()
			}
		}
	}()
}

func (w *Watcher) Stop() {
	w.once.Do(func() { close(w.stop) })
}

// Track records data as the known content of path. Calling it after our own
// writes keeps them from being reported.
func (w *Watcher) Track(path string, data []byte) {
	snap := Snapshot{Hash: hashOf(data)}
	if info, err := os.Stat(path); err == nil {
		snap.Size = info.Size()
		snap.ModTime = info.ModTime()
	}
	w.mu.Lock()
	w.files[path] = &entry{snap: snap}
	w.mu.Unlock()
}

func (w *Watcher) Forget(path string) {
	w.mu.Lock()
	delete(w.files, path)
	w.mu.Unlock()
}

// Scan checks every tracked file once. Events are dropped when the buffer is
// full.
func (w *Watcher) Scan() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, e := range w.files {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !e.missing {
				e.missing = true
				w.emit(Event{Path: path, Kind: EventMissing, Prev: e.snap})
			}
			continue
		}
		unchanged := info.Size() == e.snap.Size && info.ModTime().Equal(e.snap.ModTime)
		if !e.missing && unchanged && !w.opts.HashUnchanged {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		curr := Snapshot{Hash: hashOf(data), Size: info.Size(), ModTime: info.ModTime()}
		if e.missing || curr.Hash != e.snap.Hash {
			w.emit(Event{Path: path, Kind: EventChanged, Prev: e.snap, Curr: curr})
		}
		e.snap = curr
		e.missing = false
	}
}

func (w *Watcher) emit(evt Event) {
	select {
	case w.events <- evt:
	default:
	}
}

func hashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
