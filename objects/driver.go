package objects

import "log"

// Driver is the capability set a token family implements: recognize a
// card from its identification bytes, build the token, and run the
// authentication operations. New families plug into the Registry without
// any change to slot or token code.
type Driver interface {
	// Name identifies the family in logs.
	Name() string
	// IsCandidate reports whether the identification bytes could belong
	// to this family. A positive answer only permits a construction
	// attempt, it does not guarantee one succeeds.
	IsCandidate(atr []byte) bool
	// Construct builds the token for the card in the slot. A failure with
	// code TokenNotRecognized means "wrong family after all, keep
	// probing"; any other error means the right family hit a real fault.
	Construct(slot *Slot) (*Token, error)
	Login(slot *Slot, level SecurityLevel, pin []byte) error
	Logout(slot *Slot) error
}

// Destructor is implemented by drivers holding variant-specific resources
// that must be released during teardown.
type Destructor interface {
	Destruct(token *Token) error
}

// PINInitializer is implemented by drivers that can set the user PIN.
type PINInitializer interface {
	InitPIN(slot *Slot, pin []byte) error
}

// PINChanger is implemented by drivers that can change a PIN.
type PINChanger interface {
	SetPIN(slot *Slot, oldPIN, newPIN []byte) error
}

// Registry holds the drivers in probe order. Registration order is a
// priority list: for ambiguous identification data the earlier driver
// wins.
type Registry struct {
	drivers []Driver
}

func NewRegistry(drivers ...Driver) *Registry {
	return &Registry{drivers: drivers}
}

// Register appends a driver at the lowest priority.
func (registry *Registry) Register(drv Driver) {
	registry.drivers = append(registry.drivers, drv)
}

// Drivers returns the probe order.
func (registry *Registry) Drivers() []Driver {
	out := make([]Driver, len(registry.drivers))
	copy(out, registry.drivers)
	return out
}

// DetectToken probes the drivers in order against the identification
// bytes. Construction failures with TokenNotRecognized continue to the
// next candidate; any other construction error stops detection
// immediately, so a "right variant, broken card" signal is never masked
// by a later driver that happens to match too.
func (registry *Registry) DetectToken(slot *Slot, atr []byte) (*Token, error) {
	for _, drv := range registry.drivers {
		if !drv.IsCandidate(atr) {
			continue
		}
		token, err := drv.Construct(slot)
		if err == nil {
			log.Printf("slot %d: detected %s token %q", slot.ID, drv.Name(), token.Label)
			return token, nil
		}
		if CodeOf(err) != TokenNotRecognized {
			return nil, err
		}
	}
	return nil, NewError("Registry.DetectToken", "no driver recognized the card", TokenNotRecognized)
}
