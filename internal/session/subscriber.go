package session

import (
	"github.com/google/uuid"

	"github.com/muzzman/daemon/internal/wire"
)

// NewSubscriberID mints a fresh subscriber token for
// LRef.Subscribe/ERef.Subscribe: a random UUID, split across ID128's
// two 64-bit halves. Request ids, by contrast, come from a monotonic
// counter in clientconn.
func NewSubscriberID() wire.ID128 {
	u := uuid.New()
	return wire.ID128{
		Hi: uint64(uint64(u[0])<<56 | uint64(u[1])<<48 | uint64(u[2])<<40 | uint64(u[3])<<32 |
			uint64(u[4])<<24 | uint64(u[5])<<16 | uint64(u[6])<<8 | uint64(u[7])),
		Lo: uint64(uint64(u[8])<<56 | uint64(u[9])<<48 | uint64(u[10])<<40 | uint64(u[11])<<32 |
			uint64(u[12])<<24 | uint64(u[13])<<16 | uint64(u[14])<<8 | uint64(u[15])),
	}
}
