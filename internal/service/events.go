package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/versemark/versemark-server/internal/errors"
	"github.com/versemark/versemark-server/internal/sse"
	"github.com/versemark/versemark-server/internal/store"
)

// EventEmitter publishes change events to connected clients. *sse.Manager implements it.
type EventEmitter interface {
	Emit(event sse.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(sse.Event) {}

func emitterOrNoop(e EventEmitter) EventEmitter {
	if e == nil {
		return noopEmitter{}
	}
	return e
}

// storeError translates a record store failure into a domain error.
// Missing rows become NotFound, taken keys AlreadyExists, anything else Persistence.
func storeError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(msg + ": not found").WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExistsf("%s: already exists", msg).WithCause(err)
	default:
		return domainerrors.Persistence(msg, err)
	}
}
