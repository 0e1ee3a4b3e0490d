package store

import (
	"context"
	"fmt"
)

// Repeater runs fun until it succeeds or attempts are exhausted
type Repeater interface {
	Do(ctx context.Context, fun func() error, errors ...error) (err error)
}

// Retry repeats failed loads and saves of the wrapped slot
type Retry struct {
	Slot     Slot
	Repeater Repeater
}

// Load with retries
func (r Retry) Load(ctx context.Context) (data []byte, err error) {
	err = r.Repeater.Do(ctx, func() error {
		var e error
		data, e = r.Slot.Load(ctx)
		return e
	}, context.Canceled, context.DeadlineExceeded)
	return data, err
}

// Save with retries
func (r Retry) Save(ctx context.Context, data []byte) error {
	return r.Repeater.Do(ctx, func() error {
		return r.Slot.Save(ctx, data)
	}, context.Canceled, context.DeadlineExceeded)
}

// String implements fmt.Stringer
func (r Retry) String() string {
	return fmt.Sprintf("%v with retries", r.Slot)
}
