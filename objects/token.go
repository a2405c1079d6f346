package objects

import (
	"github.com/google/uuid"
)

// SecurityLevel is the authenticated role currently established on a
// token. It is the single source of truth for private-object visibility
// and is mutated only by Login and Logout.
type SecurityLevel int

const (
	// Public means no login ever happened on this token.
	Public SecurityLevel = iota
	SecurityOfficer
	User
	// LoggedOut is set after an explicit logout. It is distinct from
	// Public so drivers can tell "never authenticated" from "was
	// authenticated and logged out".
	LoggedOut
)

func (level SecurityLevel) String() string {
	switch level {
	case Public:
		return "public"
	case SecurityOfficer:
		return "security officer"
	case User:
		return "user"
	case LoggedOut:
		return "logged out"
	}
	return "unknown"
}

// Token is the logical state of an inserted card. It owns the two object
// partitions and a monotonic handle counter; callers serialize access per
// token (see Application).
type Token struct {
	Label        string
	SerialNumber string

	slot          *Slot
	drv           Driver
	securityLevel SecurityLevel
	nextHandle    uint64
	public        ObjectList
	private       ObjectList
}

// NewToken creates a token bound to the driver that recognized it. Drivers
// call this from Construct.
func NewToken(label string, drv Driver) *Token {
	return &Token{
		Label:        label,
		SerialNumber: uuid.New().String(),
		drv:          drv,
		nextHandle:   1,
	}
}

// Driver returns the driver that constructed this token.
func (token *Token) Driver() Driver {
	return token.drv
}

// Slot returns the slot the token is inserted in, nil after teardown.
func (token *Token) Slot() *Slot {
	return token.slot
}

// SecurityLevel returns the role established by the last login or logout.
func (token *Token) SecurityLevel() SecurityLevel {
	return token.securityLevel
}

// SeedHandles raises the handle counter above handles already used in
// persistent storage, so new objects never collide with loaded ones.
func (token *Token) SeedHandles(maxUsed uint64) {
	if maxUsed >= token.nextHandle {
		token.nextHandle = maxUsed + 1
	}
}

func (token *Token) partition(public bool) *ObjectList {
	if public {
		return &token.public
	}
	return &token.private
}

// AddObject assigns the object to the token, allocates a handle if none is
// set and appends it to the chosen partition. It never fails; pre-assigned
// handles are trusted to be unused (storage load path).
func (token *Token) AddObject(object *Object, public bool) uint64 {
	object.token = token
	object.private = !public
	if object.Handle == 0 {
		object.Handle = token.nextHandle
		token.nextHandle++
	} else if object.Handle >= token.nextHandle {
		token.nextHandle = object.Handle + 1
	}
	token.partition(public).add(object)
	object.dirty = true
	return object.Handle
}

// FindObject returns the object with the given handle and its zero-based
// position in the partition. Private lookups return NotFound unless the
// user role is established: private existence must not be observable while
// unauthenticated.
func (token *Token) FindObject(handle uint64, public bool) (*Object, int, error) {
	if !public && token.securityLevel != User {
		return nil, -1, NewError("Token.FindObject", "object not found", NotFound)
	}
	object, pos := token.partition(public).find(handle)
	if object == nil {
		return nil, -1, NewError("Token.FindObject", "object not found", NotFound)
	}
	return object, pos, nil
}

// FindMatching returns the first object satisfying the template, scanning
// the public partition and then the private one in insertion order. It
// does not consult the login state: drivers match against the private
// partition during construction, before any login exists. The gated
// lookup is FindObject; callers surfacing results through an
// authenticated interface must have established that context first.
func (token *Token) FindMatching(template Attributes) (*Object, error) {
	if len(template) == 0 {
		return nil, NewError("Token.FindMatching", "empty attribute template", ArgumentInvalid)
	}
	for _, list := range []*ObjectList{&token.public, &token.private} {
		for _, object := range list.objects {
			if object.Matches(template) {
				return object, nil
			}
		}
	}
	return nil, NewError("Token.FindMatching", "no matching object", NotFound)
}

// RemoveObject removes a single object from the named partition.
func (token *Token) RemoveObject(handle uint64, public bool) error {
	if !token.partition(public).remove(handle) {
		return NewError("Token.RemoveObject", "object not found", NotFound)
	}
	return nil
}

// PurgeObjects removes every object in the named partition.
func (token *Token) PurgeObjects(public bool) {
	token.partition(public).purge()
}

// ObjectCount returns the number of objects in the named partition.
func (token *Token) ObjectCount(public bool) int {
	return token.partition(public).Len()
}

// Objects returns a copy of the named partition in insertion order. It is
// not gated; it exists for storage synchronization and driver use.
func (token *Token) Objects(public bool) []*Object {
	return token.partition(public).slice()
}

// Login delegates to the driver and, on success, establishes the role.
// The credential is opaque to the core and passed through untouched.
func (token *Token) Login(level SecurityLevel, pin []byte) error {
	if level != User && level != SecurityOfficer {
		return NewError("Token.Login", "bad user type", ArgumentInvalid)
	}
	if err := token.drv.Login(token.slot, level, pin); err != nil {
		return err
	}
	token.securityLevel = level
	return nil
}

// Logout drops to the LoggedOut sentinel before the driver runs, so a
// failing driver logout cannot leave private objects visible. Private
// objects stay in the repository: visibility is enforced at lookup time,
// and a later login restores it without re-adding anything.
func (token *Token) Logout() error {
	token.securityLevel = LoggedOut
	return token.drv.Logout(token.slot)
}

// InitPIN delegates to the driver, or reports NotSupported if the variant
// lacks the capability.
func (token *Token) InitPIN(pin []byte) error {
	initializer, ok := token.drv.(PINInitializer)
	if !ok {
		return NewError("Token.InitPIN", "not supported by this driver", NotSupported)
	}
	return initializer.InitPIN(token.slot, pin)
}

// SetPIN delegates to the driver, or reports NotSupported if the variant
// lacks the capability.
func (token *Token) SetPIN(oldPIN, newPIN []byte) error {
	changer, ok := token.drv.(PINChanger)
	if !ok {
		return NewError("Token.SetPIN", "not supported by this driver", NotSupported)
	}
	return changer.SetPIN(token.slot, oldPIN, newPIN)
}
