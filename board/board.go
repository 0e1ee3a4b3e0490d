// Package board implements the kanban board model: fixed lists of cards, the drag controller,
// card editing and delete confirmation. Every mutation writes the full snapshot to the Store.
package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
)

// DefaultStorageKey is the key of the slot holding the board snapshot
const DefaultStorageKey = "kanbanData"

// EmptyTaskMessage is shown when a task without text is submitted
const EmptyTaskMessage = "Please enter a task"

const (
	cardIDPrefix       = "c"
	defaultMessageTTL  = 2 * time.Second
	defaultNarrowWidth = 600
)

var (
	// ErrEmptyTask returned by AddTask for blank text
	ErrEmptyTask = errors.New("empty task")
	// ErrCardNotFound returned for unknown card id
	ErrCardNotFound = errors.New("card not found")
	// ErrListNotFound returned for unknown list id
	ErrListNotFound = errors.New("list not found")
)

// Store is a single key-value slot keeping the snapshot bytes.
// Load returns nil data if nothing was saved yet.
type Store interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Options to make a Board
type Options struct {
	Columns     []Column      // lists in display order, the first is the default one
	Store       Store         // required
	MessageTTL  time.Duration // how long the transient message is shown
	NarrowWidth int           // viewport width hiding card controls while editing
	Now         func() time.Time
}

// Board keeps lists of cards in memory and persists them on every change.
// All methods are safe for concurrent use, each one runs to completion including the store write.
type Board struct {
	lock  sync.Mutex
	lists []*List
	store Store

	messageTTL  time.Duration
	narrowWidth int
	now         func() time.Time

	lastStamp int64
	drag      string // id of the card being dragged
	edits     map[string]EditSession
	prompt    *Prompt
	promptSeq int
	message   string
	msgSeq    int
}

// New makes a board with empty lists
func New(opts Options) (*Board, error) {
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	columns := opts.Columns
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	res := &Board{
		store:       opts.Store,
		messageTTL:  opts.MessageTTL,
		narrowWidth: opts.NarrowWidth,
		now:         opts.Now,
		edits:       map[string]EditSession{},
	}
	if res.messageTTL <= 0 {
		res.messageTTL = defaultMessageTTL
	}
	if res.narrowWidth <= 0 {
		res.narrowWidth = defaultNarrowWidth
	}
	if res.now == nil {
		res.now = time.Now
	}

	seen := map[string]bool{}
	for _, c := range columns {
		if c.ID == "" {
			return nil, errors.New("list id can't be empty")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate list id %q", c.ID)
		}
		seen[c.ID] = true
		res.lists = append(res.lists, &List{ID: c.ID, Title: c.Title, Cards: []Card{}})
	}
	return res, nil
}

// AddTask adds a card with trimmed text to the default list.
// Blank text sets the transient message and returns ErrEmptyTask.
func (b *Board) AddTask(ctx context.Context, text string) (Card, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		b.showMessage(EmptyTaskMessage)
		return Card{}, ErrEmptyTask
	}

	card := CreateCard(b.nextID(), text)
	todo := b.lists[0]
	todo.Cards = append(todo.Cards, card)
	log.Printf("[DEBUG] card %s added to %s", card.ID, todo.ID)
	return card, b.save(ctx)
}

// Lists returns a copy of all lists in display order
func (b *Board) Lists() []List {
	b.lock.Lock()
	defer b.lock.Unlock()
	res := make([]List, 0, len(b.lists))
	for _, l := range b.lists {
		res = append(res, l.clone())
	}
	return res
}

// List returns a copy of the list by id
func (b *Board) List(id string) (List, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	l := b.findList(id)
	if l == nil {
		return List{}, fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	return l.clone(), nil
}

// Card returns the card and id of the list holding it
func (b *Board) Card(id string) (card Card, listID string, err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	l, idx := b.findCard(id)
	if l == nil {
		return Card{}, "", fmt.Errorf("%w: %s", ErrCardNotFound, id)
	}
	return l.Cards[idx], l.ID, nil
}

// Message returns the transient user message, empty if none
func (b *Board) Message() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.message
}

// showMessage sets the message and clears it after messageTTL.
// A newer message is not cleared by the timer of an older one.
func (b *Board) showMessage(msg string) {
	b.msgSeq++
	seq := b.msgSeq
	b.message = msg
	time.AfterFunc(b.messageTTL, func() {
		b.lock.Lock()
		defer b.lock.Unlock()
		if b.msgSeq == seq {
			b.message = ""
		}
	})
}

// nextID makes "c" + unix milliseconds, bumped forward if the stamp was already issued or is in use
func (b *Board) nextID() string {
	stamp := b.now().UnixMilli()
	if stamp <= b.lastStamp {
		stamp = b.lastStamp + 1
	}
	for {
		id := cardIDPrefix + strconv.FormatInt(stamp, 10)
		if l, _ := b.findCard(id); l == nil {
			b.lastStamp = stamp
			return id
		}
		stamp++
	}
}

func (b *Board) findList(id string) *List {
	for _, l := range b.lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (b *Board) findCard(id string) (*List, int) {
	for _, l := range b.lists {
		if idx := l.indexOf(id); idx >= 0 {
			return l, idx
		}
	}
	return nil, -1
}
