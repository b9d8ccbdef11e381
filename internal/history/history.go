// Package history keeps a short, de-duplicated list of recently picked colours.
package history

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/store"
)

// MaxEntries is the number of colours kept.
const MaxEntries = 12

// List is an ordered list of unique hex colours, most recent first.
type List struct {
	entries []string
}

// NewList builds a List from saved entries. Invalid and duplicate entries
// are dropped and the result is truncated to MaxEntries.
func NewList(saved []string) *List {
	l := &List{entries: make([]string, 0, MaxEntries)}
	for _, s := range saved {
		c, err := colour.ParseHex(s)
		if err != nil {
			continue
		}
		hex := c.Hex()
		if slices.Contains(l.entries, hex) {
			continue
		}
		l.entries = append(l.entries, hex)
		if len(l.entries) == MaxEntries {
			break
		}
	}
	return l
}

// Add moves hex to the front, inserting it if absent and evicting the oldest
// entry when the list is full.
func (l *List) Add(hex string) error {
	c, err := colour.ParseHex(hex)
	if err != nil {
		return err
	}
	l.AddColour(c)
	return nil
}

// AddColour is Add for an already decoded colour.
func (l *List) AddColour(c colour.RGB) {
	hex := c.Hex()
	l.entries = slices.DeleteFunc(l.entries, func(e string) bool { return e == hex })
	l.entries = slices.Insert(l.entries, 0, hex)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[:MaxEntries]
	}
}

// Entries returns a copy of the list, most recent first.
func (l *List) Entries() []string {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *List) Len() int {
	return len(l.entries)
}

// Clear removes all entries.
func (l *List) Clear() {
	l.entries = l.entries[:0]
}

// Recorder applies picks to the history held in a store. Record and Clear
// are serialised, so concurrent picks through one Recorder are never lost.
type Recorder struct {
	mu     sync.Mutex
	store  store.Store
	logger hclog.Logger
}

// NewRecorder creates a Recorder over s.
func NewRecorder(s store.Store, logger hclog.Logger) *Recorder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Recorder{store: s, logger: logger.Named("history")}
}

// List loads the saved history.
func (r *Recorder) List(ctx context.Context) (*List, error) {
	saved, err := r.store.History(ctx)
	if err != nil {
		return nil, err
	}
	return NewList(saved), nil
}

// Record adds c to the saved history and returns the updated list.
func (r *Recorder) Record(ctx context.Context, c colour.RGB) (*List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", c.Hex(), err)
	}

	list.AddColour(c)
	if err := r.store.SaveHistory(ctx, list.Entries()); err != nil {
		return nil, fmt.Errorf("record %s: %w", c.Hex(), err)
	}

	r.logger.Debug("recorded colour", "hex", c.Hex(), "entries", list.Len())
	return list, nil
}

// Clear removes every saved entry.
func (r *Recorder) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.SaveHistory(ctx, nil); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	r.logger.Debug("cleared history")
	return nil
}
