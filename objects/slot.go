package objects

import (
	"log"
	"sync"

	iso "cunicu.li/go-iso7816"
)

// CardTransport is the reader channel drivers use to exchange commands
// with an inserted card. *iso7816.Transaction satisfies it; tests use
// fakes. The core never sends anything itself.
type CardTransport interface {
	Send(cmd *iso.CAPDU) ([]byte, error)
}

// Slot is a logical card-reader endpoint. A physical slot owns its token
// directly; a virtual slot references a primary (always physical) slot and
// resolves authentication and object state through it.
type Slot struct {
	ID    uint64
	Label string
	// Card is the reader transport for a physical slot, attached by the
	// hosting application before detection. Nil on virtual slots.
	Card CardTransport

	token    *Token
	primary  *Slot
	Sessions Sessions
	sync.Mutex
}

// NewSlot creates a physical slot.
func NewSlot(id uint64, label string) *Slot {
	return &Slot{
		ID:       id,
		Label:    label,
		Sessions: make(Sessions),
	}
}

// NewVirtualSlot creates a slot aliasing the primary slot's token. The
// primary must itself be physical, keeping the reference chain at depth
// one.
func NewVirtualSlot(id uint64, label string, primary *Slot) (*Slot, error) {
	if primary == nil {
		return nil, NewError("NewVirtualSlot", "virtual slot needs a primary slot", ArgumentInvalid)
	}
	if primary.primary != nil {
		return nil, NewError("NewVirtualSlot", "primary slot must be physical", ArgumentInvalid)
	}
	return &Slot{
		ID:       id,
		Label:    label,
		primary:  primary,
		Sessions: make(Sessions),
	}, nil
}

// Primary returns the primary slot, nil for physical slots.
func (slot *Slot) Primary() *Slot {
	return slot.primary
}

// IsVirtual reports whether the slot aliases another slot's token.
func (slot *Slot) IsVirtual() bool {
	return slot.primary != nil
}

// IsTokenPresent reports whether a token is resolvable through this slot.
func (slot *Slot) IsTokenPresent() bool {
	token, err := slot.BaseToken()
	return err == nil && token != nil
}

// Token returns the slot's own token. Virtual slots never own one.
func (slot *Slot) Token() (*Token, error) {
	if slot.token == nil {
		return nil, NewError("Slot.Token", "token not present", TokenNotPresent)
	}
	return slot.token, nil
}

// BaseToken resolves the token that owns authentication state and object
// storage for this slot. Every component handling a possibly-virtual slot
// must go through here, so state is never duplicated across virtual views
// of one card.
func (slot *Slot) BaseToken() (*Token, error) {
	if slot.primary != nil {
		return slot.primary.Token()
	}
	return slot.Token()
}

// Reader resolves the card transport the same way BaseToken resolves the
// token.
func (slot *Slot) Reader() CardTransport {
	if slot.primary != nil {
		return slot.primary.Card
	}
	return slot.Card
}

// InsertToken attaches a detected token to this slot.
func (slot *Slot) InsertToken(token *Token) {
	slot.token = token
	token.slot = slot
}

// InsertCard runs detection for freshly reported identification bytes and
// attaches the resulting token. A token already present is torn down
// first (card replacement).
func (slot *Slot) InsertCard(registry *Registry, atr []byte) (*Token, error) {
	if slot.primary != nil {
		return nil, NewError("Slot.InsertCard", "virtual slot has no reader", ArgumentInvalid)
	}
	if slot.token != nil {
		slot.EjectCard()
	}
	token, err := registry.DetectToken(slot, atr)
	if err != nil {
		return nil, err
	}
	slot.InsertToken(token)
	return token, nil
}

// EjectCard tears the slot's token down. The order is load-bearing:
// sessions are invalidated first so no caller can reach the token
// mid-teardown, the driver releases its resources while the object
// repository is still intact, then both partitions are purged. Every step
// is best-effort; the token is gone afterwards no matter what failed.
func (slot *Slot) EjectCard() {
	token := slot.token
	if token == nil {
		return
	}
	slot.CloseAllSessions()
	if destructor, ok := token.drv.(Destructor); ok {
		if err := destructor.Destruct(token); err != nil {
			log.Printf("slot %d: %s teardown: %v", slot.ID, token.drv.Name(), err)
		}
	}
	token.PurgeObjects(false)
	token.PurgeObjects(true)
	token.slot = nil
	slot.token = nil
}

// OpenSession opens a session against the slot's (possibly base) token.
func (slot *Slot) OpenSession(flags uint64) (uint64, error) {
	if !slot.IsTokenPresent() {
		return 0, NewError("Slot.OpenSession", "token not present", TokenNotPresent)
	}
	session := NewSession(flags, slot)
	slot.Lock()
	defer slot.Unlock()
	slot.Sessions[session.Handle] = session
	return session.Handle, nil
}

// CloseSession closes one session.
func (slot *Slot) CloseSession(handle uint64) error {
	slot.Lock()
	defer slot.Unlock()
	if _, ok := slot.Sessions[handle]; !ok {
		return NewError("Slot.CloseSession", "session handle doesn't exist in this slot", SessionInvalid)
	}
	delete(slot.Sessions, handle)
	return nil
}

// CloseAllSessions invalidates every session bound to the slot.
func (slot *Slot) CloseAllSessions() {
	slot.Lock()
	defer slot.Unlock()
	slot.Sessions = make(Sessions)
}

// GetSession returns an open session by handle.
func (slot *Slot) GetSession(handle uint64) (*Session, error) {
	slot.Lock()
	defer slot.Unlock()
	session, ok := slot.Sessions[handle]
	if !ok {
		return nil, NewError("Slot.GetSession", "session handle doesn't exist in this slot", SessionInvalid)
	}
	return session, nil
}

// HasSession reports whether the handle belongs to this slot.
func (slot *Slot) HasSession(handle uint64) bool {
	slot.Lock()
	defer slot.Unlock()
	_, ok := slot.Sessions[handle]
	return ok
}
