package objects

import "sync"

// Session flags, matching the Cryptoki session flag bits.
const (
	FlagRWSession     uint64 = 0x00000002
	FlagSerialSession uint64 = 0x00000004
)

// Session is an open connection between a caller and a slot. The core only
// tracks enough of it to invalidate handles during teardown; operation
// state belongs to the calling interface layer.
type Session struct {
	Handle uint64
	Flags  uint64
	Slot   *Slot
}

// Sessions is the per-slot pool of open sessions.
type Sessions map[uint64]*Session

var (
	sessionHandle uint64
	sessionMutex  sync.Mutex
)

// NewSession creates a session with a process-unique handle.
func NewSession(flags uint64, currentSlot *Slot) *Session {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()
	sessionHandle++
	return &Session{
		Handle: sessionHandle,
		Flags:  flags,
		Slot:   currentSlot,
	}
}
