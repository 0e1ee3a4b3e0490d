package board

import (
	"context"
	"fmt"

	log "github.com/go-pkgz/lgr"
)

// Snapshot returns the current state of all lists
func (b *Board) Snapshot() Snapshot {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.snapshot()
}

// Save writes the full snapshot to the store
func (b *Board) Save(ctx context.Context) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.save(ctx)
}

// Load reads the stored snapshot and appends its cards to the matching lists.
// Missing snapshot leaves the board as is. Lists unknown to the board and repeated card ids are skipped.
func (b *Board) Load(ctx context.Context) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	data, err := b.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}
	if len(data) == 0 {
		log.Printf("[INFO] no stored board, starting empty")
		return nil
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("failed to decode board: %w", err)
	}

	count := 0
	for _, lc := range snap {
		l := b.findList(lc.ID)
		if l == nil {
			log.Printf("[WARN] stored list %q is not on the board, %d cards skipped", lc.ID, len(lc.Cards))
			continue
		}
		for _, c := range lc.Cards {
			if owner, _ := b.findCard(c.ID); owner != nil {
				log.Printf("[WARN] duplicate card %q in %q, skipped", c.ID, lc.ID)
				continue
			}
			l.Cards = append(l.Cards, CreateCard(c.ID, c.Text))
			count++
		}
	}
	log.Printf("[INFO] board loaded, %d cards", count)
	return nil
}

func (b *Board) snapshot() Snapshot {
	res := make(Snapshot, 0, len(b.lists))
	for _, l := range b.lists {
		cards := make([]Card, len(l.Cards))
		copy(cards, l.Cards)
		res = append(res, ListCards{ID: l.ID, Cards: cards})
	}
	return res
}

// save is called with lock held after every mutation
func (b *Board) save(ctx context.Context) error {
	data, err := b.snapshot().Encode()
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}
	if err := b.store.Save(ctx, data); err != nil {
		log.Printf("[WARN] failed to save board, %v", err)
		return fmt.Errorf("failed to save board: %w", err)
	}
	return nil
}
