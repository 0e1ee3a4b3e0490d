package board

// Card is a single task on the board.
type Card struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// List is a fixed column of the board. Cards are kept in display order.
type List struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
	Over  bool   `json:"over"` // drop-target indicator
}

// Column describes a list the board is created with.
type Column struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// DefaultColumns are used when no lists are configured. The first one is the todo list.
var DefaultColumns = []Column{
	{ID: "l1", Title: "To Do"},
	{ID: "l2", Title: "Doing"},
	{ID: "l3", Title: "Hold"},
	{ID: "l4", Title: "Done"},
}

// CreateCard builds an unattached card, the caller appends it to a list.
func CreateCard(id, text string) Card {
	return Card{ID: id, Text: text}
}

func (l *List) indexOf(cardID string) int {
	for i, c := range l.Cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

func (l *List) remove(cardID string) (Card, bool) {
	idx := l.indexOf(cardID)
	if idx == -1 {
		return Card{}, false
	}
	card := l.Cards[idx]
	l.Cards = append(l.Cards[:idx], l.Cards[idx+1:]...)
	return card, true
}

func (l *List) clone() List {
	res := *l
	res.Cards = make([]Card, len(l.Cards))
	copy(res.Cards, l.Cards)
	return res
}
