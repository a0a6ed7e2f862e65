package hub

import (
	"errors"

	"github.com/DoyleJ11/cardlobby-backend/internal/engine"
	"github.com/DoyleJ11/cardlobby-backend/internal/lobby"
	"github.com/DoyleJ11/cardlobby-backend/pkg/types"
)

var errBadRequest = errors.New("malformed request")
var errUnknownEvent = errors.New("unknown event")

var reasons = []struct {
	err    error
	reason types.Reason
}{
	{lobby.ErrNotFound, types.ReasonNotFound},
	{lobby.ErrAlreadyStarted, types.ReasonAlreadyStarted},
	{lobby.ErrFull, types.ReasonFull},
	{lobby.ErrNameTaken, types.ReasonNameTaken},
	{lobby.ErrInvalidName, types.ReasonInvalidName},
	{lobby.ErrNotInLobby, types.ReasonNotInLobby},
	{lobby.ErrAlreadyInLobby, types.ReasonAlreadyInLobby},
	{engine.ErrWrongTurn, types.ReasonNotYourTurn},
	{engine.ErrNotStarted, types.ReasonInvalidMove},
	{engine.ErrIllegalCard, types.ReasonInvalidMove},
	{engine.ErrUnsupportedCommand, types.ReasonInvalidMove},
	{engine.ErrDeckEmpty, types.ReasonDeckEmpty},
	{engine.ErrDiscardEmpty, types.ReasonDiscardEmpty},
	{errBadRequest, types.ReasonBadRequest},
	{errUnknownEvent, types.ReasonUnknownEvent},
}

// reasonFor maps a handler error to the stable reason sent to the client.
// Anything unrecognised is an internal error.
func reasonFor(err error) types.Reason {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return types.ReasonInternal
}
