package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// AcknowledgeKey ends an edit the same way losing focus does
const AcknowledgeKey = "Enter"

// ErrNotEditing returned when an edit is finished for a card not in editing mode
var ErrNotEditing = errors.New("card is not being edited")

// EditSession is the editing state of a card. Card controls are hidden on narrow viewports until the edit ends.
type EditSession struct {
	CardID         string `json:"card_id"`
	Original       string `json:"original"`
	ControlsHidden bool   `json:"controls_hidden"`
}

// BeginEdit switches the card into editing mode, pre-filled with its current text.
// Calling it for a card already in editing mode returns the open session.
func (b *Board) BeginEdit(cardID string, viewportWidth int) (EditSession, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	l, idx := b.findCard(cardID)
	if l == nil {
		return EditSession{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if sess, ok := b.edits[cardID]; ok {
		return sess, nil
	}
	sess := EditSession{
		CardID:         cardID,
		Original:       l.Cards[idx].Text,
		ControlsHidden: viewportWidth > 0 && viewportWidth <= b.narrowWidth,
	}
	b.edits[cardID] = sess
	return sess, nil
}

// Editing returns the open edit session of the card
func (b *Board) Editing(cardID string) (EditSession, bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	sess, ok := b.edits[cardID]
	return sess, ok
}

// EndEdit finishes the edit with the value of the field. Trimmed non-empty value replaces the text,
// otherwise the original text stays. The board is saved in both cases.
func (b *Board) EndEdit(ctx context.Context, cardID, value string) (Card, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if _, ok := b.edits[cardID]; !ok {
		return Card{}, fmt.Errorf("%w: %s", ErrNotEditing, cardID)
	}
	delete(b.edits, cardID)

	l, idx := b.findCard(cardID)
	if l == nil {
		return Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
	}
	if text := strings.TrimSpace(value); text != "" {
		l.Cards[idx].Text = text
	}
	return l.Cards[idx], b.save(ctx)
}

// EditKey handles a key pressed in the edit field. AcknowledgeKey ends the edit, other keys are ignored.
func (b *Board) EditKey(ctx context.Context, cardID, key, value string) (bool, error) {
	if key != AcknowledgeKey {
		return false, nil
	}
	if _, err := b.EndEdit(ctx, cardID, value); err != nil {
		return false, err
	}
	return true, nil
}
