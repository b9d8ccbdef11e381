package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pipette/internal/colour"
	"github.com/jmylchreest/pipette/internal/store"
)

func hexN(i int) string {
	return colour.RGB{R: uint8(i), G: uint8(i * 2), B: uint8(i * 3)}.Hex()
}

func TestListBounded(t *testing.T) {
	l := NewList(nil)
	for i := 1; i <= 13; i++ {
		require.NoError(t, l.Add(hexN(i)))
	}

	entries := l.Entries()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, hexN(13), entries[0], "most recent first")
	assert.Equal(t, hexN(2), entries[MaxEntries-1])
	assert.NotContains(t, entries, hexN(1), "oldest evicted")
}

func TestListDedupMovesToFront(t *testing.T) {
	l := NewList(nil)
	for i := 1; i <= 5; i++ {
		require.NoError(t, l.Add(hexN(i)))
	}

	require.NoError(t, l.Add(hexN(2)))

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, []string{hexN(2), hexN(5), hexN(4), hexN(3), hexN(1)}, l.Entries())
}

func TestListNormalisesHex(t *testing.T) {
	l := NewList(nil)
	require.NoError(t, l.Add("#abcdef"))
	require.NoError(t, l.Add("ABCDEF"))

	assert.Equal(t, []string{"#ABCDEF"}, l.Entries())
}

func TestListRejectsInvalid(t *testing.T) {
	l := NewList(nil)
	err := l.Add("not-a-colour")
	assert.ErrorIs(t, err, colour.ErrInvalidFormat)
	assert.Equal(t, 0, l.Len())
}

func TestNewListSanitisesSaved(t *testing.T) {
	saved := []string{"#FFFFFF", "garbage", "#ffffff", "#000000"}
	for i := range 20 {
		saved = append(saved, fmt.Sprintf("#%06X", i+1))
	}

	l := NewList(saved)
	entries := l.Entries()
	assert.Len(t, entries, MaxEntries)
	assert.Equal(t, "#FFFFFF", entries[0])
	assert.Equal(t, "#000000", entries[1])
}

func TestEntriesReturnsCopy(t *testing.T) {
	l := NewList([]string{"#010203"})
	entries := l.Entries()
	entries[0] = "#FFFFFF"
	assert.Equal(t, []string{"#010203"}, l.Entries())
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(store.NewMemoryStore(), nil)

	_, err := r.Record(ctx, colour.RGB{R: 255})
	require.NoError(t, err)
	list, err := r.Record(ctx, colour.RGB{G: 255})
	require.NoError(t, err)
	assert.Equal(t, []string{"#00FF00", "#FF0000"}, list.Entries())

	loaded, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, list.Entries(), loaded.Entries())

	require.NoError(t, r.Clear(ctx))
	loaded, err = r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) SaveHistory(context.Context, []string) error {
	return errors.New("disk full")
}

func TestRecorderSaveFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.SaveHistory(ctx, []string{"#111111"}))

	r := NewRecorder(failingStore{mem}, nil)
	_, err := r.Record(ctx, colour.RGB{R: 1})
	assert.ErrorContains(t, err, "disk full")

	saved, err := mem.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"#111111"}, saved, "failed save leaves history untouched")
}

// slowStore widens the gap between loading and saving the history.
type slowStore struct {
	*store.MemoryStore
}

func (s slowStore) History(ctx context.Context) ([]string, error) {
	entries, err := s.MemoryStore.History(ctx)
	time.Sleep(2 * time.Millisecond)
	return entries, err
}

func TestRecorderConcurrentRecords(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	r := NewRecorder(slowStore{mem}, nil)

	var wg sync.WaitGroup
	for i := 1; i <= MaxEntries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Record(ctx, colour.RGB{R: uint8(i), G: uint8(i * 2), B: uint8(i * 3)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	saved, err := mem.History(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, MaxEntries)
	for i := 1; i <= MaxEntries; i++ {
		assert.Contains(t, saved, hexN(i))
	}
}
