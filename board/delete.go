package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/go-pkgz/lgr"
)

// ErrPromptNotFound returned when answering a prompt which is not open
var ErrPromptNotFound = errors.New("prompt not found")

// Prompt asks to confirm removal of a card
type Prompt struct {
	ID     string `json:"id"`
	CardID string `json:"card_id"`
	Text   string `json:"text"`
}

// RequestDelete opens a confirmation prompt for the card. Only one prompt is open at a time,
// a new request dismisses the previous one.
func (b *Board) RequestDelete(cardID string) (Prompt, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if l, _ := b.findCard(cardID); l == nil {
		return Prompt{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if b.prompt != nil {
		log.Printf("[DEBUG] prompt %s for %s dismissed by a new one", b.prompt.ID, b.prompt.CardID)
	}
	b.promptSeq++
	b.prompt = &Prompt{ID: "p" + strconv.Itoa(b.promptSeq), CardID: cardID, Text: "Delete this task?"}
	return *b.prompt, nil
}

// Prompt returns the open confirmation prompt
func (b *Board) Prompt() (Prompt, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.prompt == nil {
		return Prompt{}, false
	}
	return *b.prompt, true
}

// ConfirmDelete answers the prompt. Accept removes the card and saves the board,
// reject closes the prompt and changes nothing.
func (b *Board) ConfirmDelete(ctx context.Context, promptID string, accept bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.prompt == nil || b.prompt.ID != promptID {
		return fmt.Errorf("%w: %s", ErrPromptNotFound, promptID)
	}
	cardID := b.prompt.CardID
	b.prompt = nil
	if !accept {
		return nil
	}

	l, _ := b.findCard(cardID)
	if l == nil {
		return nil // removed meanwhile
	}
	l.remove(cardID)
	delete(b.edits, cardID)
	if b.drag == cardID {
		b.drag = ""
	}
	log.Printf("[DEBUG] card %s deleted from %s", cardID, l.ID)
	return b.save(ctx)
}
