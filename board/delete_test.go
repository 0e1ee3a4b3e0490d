package board

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_DeleteAccept(t *testing.T) {
	b, st := newTestBoard(t)
	ctx := context.Background()
	c1, err := b.AddTask(ctx, "one")
	require.NoError(t, err)
	c2, err := b.AddTask(ctx, "two")
	require.NoError(t, err)

	p, err := b.RequestDelete(c1.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, p.CardID)
	assert.Equal(t, "Delete this task?", p.Text)
	open, ok := b.Prompt()
	require.True(t, ok)
	assert.Equal(t, p, open)

	l1, err := b.List("l1")
	require.NoError(t, err)
	assert.Len(t, l1.Cards, 2, "not deleted before confirmation")

	require.NoError(t, b.ConfirmDelete(ctx, p.ID, true))
	l1, err = b.List("l1")
	require.NoError(t, err)
	assert.Equal(t, []Card{c2}, l1.Cards)
	assert.False(t, strings.Contains(st.stored(), c1.ID), "removed from the snapshot")
	_, ok = b.Prompt()
	assert.False(t, ok)

	_, err = b.AddTask(ctx, "three")
	require.NoError(t, err)
	assert.False(t, strings.Contains(st.stored(), c1.ID), "and from later snapshots")
}

func TestBoard_DeleteReject(t *testing.T) {
	b, st := newTestBoard(t)
	ctx := context.Background()
	card, err := b.AddTask(ctx, "one")
	require.NoError(t, err)
	before := st.stored()

	p, err := b.RequestDelete(card.ID)
	require.NoError(t, err)
	require.NoError(t, b.ConfirmDelete(ctx, p.ID, false))

	l1, err := b.List("l1")
	require.NoError(t, err)
	assert.Equal(t, []Card{card}, l1.Cards)
	assert.Equal(t, before, st.stored())
	assert.Equal(t, 1, st.saves)
	_, ok := b.Prompt()
	assert.False(t, ok)
}

func TestBoard_DeleteSecondPromptReplacesFirst(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()
	c1, err := b.AddTask(ctx, "one")
	require.NoError(t, err)
	c2, err := b.AddTask(ctx, "two")
	require.NoError(t, err)

	p1, err := b.RequestDelete(c1.ID)
	require.NoError(t, err)
	p2, err := b.RequestDelete(c2.ID)
	require.NoError(t, err)
	assert.NotEqual(t, p1.ID, p2.ID)

	assert.ErrorIs(t, b.ConfirmDelete(ctx, p1.ID, true), ErrPromptNotFound)
	require.NoError(t, b.ConfirmDelete(ctx, p2.ID, true))

	l1, err := b.List("l1")
	require.NoError(t, err)
	assert.Equal(t, []Card{c1}, l1.Cards)
}

func TestBoard_DeleteErrors(t *testing.T) {
	b, _ := newTestBoard(t)
	_, err := b.RequestDelete("c1")
	assert.ErrorIs(t, err, ErrCardNotFound)
	assert.ErrorIs(t, b.ConfirmDelete(context.Background(), "p1", true), ErrPromptNotFound)
}

func TestBoard_DeleteDraggedCard(t *testing.T) {
	b, _ := newTestBoard(t)
	ctx := context.Background()
	card, err := b.AddTask(ctx, "one")
	require.NoError(t, err)
	b.DragStart(card.ID)
	p, err := b.RequestDelete(card.ID)
	require.NoError(t, err)
	require.NoError(t, b.ConfirmDelete(ctx, p.ID, true))
	assert.Empty(t, b.Dragging())
}
