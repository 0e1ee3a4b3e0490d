package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Snapshot is the persisted state of the board: cards of every list, lists in display order.
// It is encoded as a JSON object keyed by list id, keys written in the same order.
type Snapshot []ListCards

// ListCards is a single entry of the snapshot
type ListCards struct {
	ID    string
	Cards []Card
}

// MarshalJSON writes the snapshot as {"list-id":[{"id":..,"text":..}],...} keeping list order
func (s Snapshot) MarshalJSON() ([]byte, error) {
	buf := bytes.Buffer{}
	buf.WriteByte('{')
	for i, l := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalRaw(l.ID)
		if err != nil {
			return nil, fmt.Errorf("can't encode list id %q: %w", l.ID, err)
		}
		cards := l.Cards
		if cards == nil {
			cards = []Card{}
		}
		val, err := marshalRaw(cards)
		if err != nil {
			return nil, fmt.Errorf("can't encode cards of %q: %w", l.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the snapshot object preserving the order of its keys.
// A JSON null is an empty snapshot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("can't read snapshot: %w", err)
	}
	if tok == nil {
		*s = Snapshot{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("snapshot is not a json object")
	}

	res := Snapshot{}
	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return fmt.Errorf("can't read list id: %w", err)
		}
		listID, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var cards []Card
		if err = dec.Decode(&cards); err != nil {
			return fmt.Errorf("can't decode cards of %q: %w", listID, err)
		}
		res = append(res, ListCards{ID: listID, Cards: cards})
	}
	if _, err = dec.Token(); err != nil {
		return fmt.Errorf("can't read snapshot end: %w", err)
	}
	*s = res
	return nil
}

// Encode returns snapshot bytes as stored
func (s Snapshot) Encode() ([]byte, error) {
	return s.MarshalJSON()
}

// DecodeSnapshot parses stored snapshot bytes
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var res Snapshot
	if err := res.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return res, nil
}

// marshalRaw encodes v without html escaping, matching what browsers write into local storage
func marshalRaw(v any) ([]byte, error) {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
