package board

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps the slot in memory and counts writes
type fakeStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
	loadErr error
}

func (f *fakeStore) Load(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.data, nil
}

func (f *fakeStore) Save(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.data = append([]byte(nil), data...)
	f.saves++
	return nil
}

func (f *fakeStore) stored() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.data)
}

func newTestBoard(t *testing.T) (*Board, *fakeStore) {
	t.Helper()
	st := &fakeStore{}
	ts := time.Date(2024, 10, 27, 18, 0, 0, 0, time.UTC)
	b, err := New(Options{Store: st, MessageTTL: 50 * time.Millisecond, Now: func() time.Time { return ts }})
	require.NoError(t, err)
	return b, st
}

func TestNew(t *testing.T) {
	t.Run("default lists", func(t *testing.T) {
		b, err := New(Options{Store: &fakeStore{}})
		require.NoError(t, err)
		lists := b.Lists()
		require.Len(t, lists, 4)
		assert.Equal(t, "l1", lists[0].ID)
		assert.Equal(t, "To Do", lists[0].Title)
		assert.Equal(t, "l4", lists[3].ID)
		assert.Empty(t, lists[0].Cards)
	})

	t.Run("custom lists", func(t *testing.T) {
		b, err := New(Options{Store: &fakeStore{}, Columns: []Column{{ID: "todo"}, {ID: "done"}}})
		require.NoError(t, err)
		assert.Len(t, b.Lists(), 2)
	})

	t.Run("no store", func(t *testing.T) {
		_, err := New(Options{})
		assert.Error(t, err)
	})

	t.Run("duplicate list", func(t *testing.T) {
		_, err := New(Options{Store: &fakeStore{}, Columns: []Column{{ID: "a"}, {ID: "a"}}})
		assert.EqualError(t, err, `duplicate list id "a"`)
	})

	t.Run("empty list id", func(t *testing.T) {
		_, err := New(Options{Store: &fakeStore{}, Columns: []Column{{ID: ""}}})
		assert.Error(t, err)
	})
}

func TestBoard_AddTask(t *testing.T) {
	b, st := newTestBoard(t)
	ctx := context.Background()

	card, err := b.AddTask(ctx, "  write report ")
	require.NoError(t, err)
	assert.Equal(t, "write report", card.Text)
	assert.Equal(t, "c1730052000000", card.ID)

	todo, err := b.List("l1")
	require.NoError(t, err)
	require.Len(t, todo.Cards, 1)
	assert.Equal(t, card, todo.Cards[0])
	assert.Equal(t, 1, st.saves)
	assert.Equal(t, `{"l1":[{"id":"c1730052000000","text":"write report"}],"l2":[],"l3":[],"l4":[]}`, st.stored())

	card2, err := b.AddTask(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "c1730052000001", card2.ID, "same millisecond gets a bumped id")
	todo, err = b.List("l1")
	require.NoError(t, err)
	assert.Len(t, todo.Cards, 2)
	assert.Equal(t, "second", todo.Cards[1].Text)
}

func TestBoard_AddTaskEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		b, st := newTestBoard(t)
		_, err := b.AddTask(context.Background(), text)
		require.ErrorIs(t, err, ErrEmptyTask)
		for _, l := range b.Lists() {
			assert.Empty(t, l.Cards)
		}
		assert.Equal(t, 0, st.saves)
		assert.Equal(t, EmptyTaskMessage, b.Message())
		assert.Eventually(t, func() bool { return b.Message() == "" }, time.Second, 10*time.Millisecond)
	}
}

func TestBoard_MessageNotClearedByOlderTimer(t *testing.T) {
	st := &fakeStore{}
	b, err := New(Options{Store: st, MessageTTL: 400 * time.Millisecond})
	require.NoError(t, err)

	_, err = b.AddTask(context.Background(), "")
	require.ErrorIs(t, err, ErrEmptyTask)
	time.Sleep(250 * time.Millisecond)
	_, err = b.AddTask(context.Background(), " ")
	require.ErrorIs(t, err, ErrEmptyTask)
	time.Sleep(250 * time.Millisecond) // first timer fired
	assert.Equal(t, EmptyTaskMessage, b.Message())
	assert.Eventually(t, func() bool { return b.Message() == "" }, time.Second, 10*time.Millisecond)
}

func TestBoard_AddTaskSaveError(t *testing.T) {
	b, st := newTestBoard(t)
	st.saveErr = errors.New("disk full")
	_, err := b.AddTask(context.Background(), "task")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	todo, err := b.List("l1")
	require.NoError(t, err)
	assert.Len(t, todo.Cards, 1, "card kept in memory")
}

func TestBoard_Card(t *testing.T) {
	b, _ := newTestBoard(t)
	card, err := b.AddTask(context.Background(), "task")
	require.NoError(t, err)

	got, listID, err := b.Card(card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, got)
	assert.Equal(t, "l1", listID)

	_, _, err = b.Card("nope")
	assert.ErrorIs(t, err, ErrCardNotFound)

	_, err = b.List("nope")
	assert.ErrorIs(t, err, ErrListNotFound)
}

func TestBoard_ListsAreCopies(t *testing.T) {
	b, _ := newTestBoard(t)
	_, err := b.AddTask(context.Background(), "task")
	require.NoError(t, err)
	lists := b.Lists()
	lists[0].Cards[0].Text = "changed"
	todo, err := b.List("l1")
	require.NoError(t, err)
	assert.Equal(t, "task", todo.Cards[0].Text)
}

func TestBoard_nextIDSkipsUsed(t *testing.T) {
	b, _ := newTestBoard(t)
	b.lists[1].Cards = append(b.lists[1].Cards, CreateCard("c1730052000000", "loaded"))
	b.lists[1].Cards = append(b.lists[1].Cards, CreateCard("c1730052000001", "loaded"))
	assert.Equal(t, "c1730052000002", b.nextID())
	assert.True(t, strings.HasPrefix(b.nextID(), cardIDPrefix))
}
