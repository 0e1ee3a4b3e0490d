package board

import (
	"context"
	"fmt"

	log "github.com/go-pkgz/lgr"
)

// DragStart records the card being dragged. Only one drag is in flight, a new start replaces it.
func (b *Board) DragStart(cardID string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.drag = cardID
}

// DragEnd clears the current drag without moving anything
func (b *Board) DragEnd() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.drag = ""
}

// Dragging returns id of the card being dragged, empty if none
func (b *Board) Dragging() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.drag
}

// DragOver reports whether the list accepts drops
func (b *Board) DragOver(listID string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.findList(listID) != nil
}

// DragEnter turns on the drop-target indicator of the list
func (b *Board) DragEnter(listID string) error {
	return b.setOver(listID, true)
}

// DragLeave turns off the drop-target indicator of the list
func (b *Board) DragLeave(listID string) error {
	return b.setOver(listID, false)
}

// Drop moves the dragged card to the end of the list and saves the board.
// Returns false with no error if nothing is dragged or the dragged card is gone.
func (b *Board) Drop(ctx context.Context, listID string) (bool, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	target := b.findList(listID)
	if target == nil {
		return false, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	target.Over = false

	cardID := b.drag
	b.drag = ""
	if cardID == "" {
		return false, nil
	}
	from, _ := b.findCard(cardID)
	if from == nil {
		log.Printf("[DEBUG] dropped card %s is gone, ignored", cardID)
		return false, nil
	}

	card, _ := from.remove(cardID)
	target.Cards = append(target.Cards, card)
	log.Printf("[DEBUG] card %s moved from %s to %s", cardID, from.ID, target.ID)
	return true, b.save(ctx)
}

func (b *Board) setOver(listID string, over bool) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	l := b.findList(listID)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	l.Over = over
	return nil
}
