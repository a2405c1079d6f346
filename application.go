// Package tokencore is the token-management core of a cryptographic-token
// provider: it detects which token variant sits behind a slot, keeps the
// authenticated and unauthenticated views of the token's objects apart,
// and manages token lifecycle as cards are inserted, logged into and
// removed. The calling interface layer (session semantics, attribute
// schemas, reader I/O) lives outside this module.
package tokencore

import (
	"log"

	"github.com/hsmlab/tokencore/config"
	"github.com/hsmlab/tokencore/objects"
	"github.com/hsmlab/tokencore/storage"
)

// Application wires configuration, storage, the driver registry and the
// slots together. There is no ambient global state: whoever owns slot
// management constructs one Application and passes it around.
//
// Callers serialize all mutating calls per token (insert/eject, login/
// logout, object add/remove/purge); operations on different tokens are
// independent.
type Application struct {
	Config   *config.Config
	Storage  storage.TokenStorage
	Registry *objects.Registry
	Slots    []*objects.Slot
}

// NewApplication builds the slot table from the configuration. Virtual
// slots are resolved against physical slots in a second pass, so order in
// the configuration file doesn't matter.
func NewApplication(conf *config.Config, registry *objects.Registry) (*Application, error) {
	db, err := NewDatabase(conf.General.StorageType)
	if err != nil {
		return nil, objects.NewError("NewApplication", err.Error(), objects.DeviceError)
	}
	if err = db.InitStorage(); err != nil {
		return nil, objects.NewError("NewApplication", err.Error(), objects.DeviceError)
	}

	slots := make([]*objects.Slot, len(conf.Slots))
	byLabel := make(map[string]*objects.Slot, len(conf.Slots))
	for i, slotConf := range conf.Slots {
		if slotConf.VirtualOf != "" {
			continue
		}
		slot := objects.NewSlot(uint64(i), slotConf.Label)
		slots[i] = slot
		byLabel[slotConf.Label] = slot
	}
	for i, slotConf := range conf.Slots {
		if slotConf.VirtualOf == "" {
			continue
		}
		primary, ok := byLabel[slotConf.VirtualOf]
		if !ok {
			return nil, objects.NewError("NewApplication",
				"virtual slot "+slotConf.Label+" references unknown slot "+slotConf.VirtualOf,
				objects.ArgumentInvalid)
		}
		slot, err := objects.NewVirtualSlot(uint64(i), slotConf.Label, primary)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
	}

	return &Application{
		Config:   conf,
		Storage:  db,
		Registry: registry,
		Slots:    slots,
	}, nil
}

// GetSlot returns the slot with the given ID.
func (app *Application) GetSlot(id uint64) (*objects.Slot, error) {
	if id >= uint64(len(app.Slots)) {
		return nil, objects.NewError("Application.GetSlot", "index out of bounds", objects.ArgumentInvalid)
	}
	return app.Slots[id], nil
}

// GetSessionSlot returns the slot owning the session handle.
func (app *Application) GetSessionSlot(handle uint64) (*objects.Slot, error) {
	for _, slot := range app.Slots {
		if slot.HasSession(handle) {
			return slot, nil
		}
	}
	return nil, objects.NewError("Application.GetSessionSlot", "session not found", objects.SessionInvalid)
}

// GetSession returns the session with the given handle.
func (app *Application) GetSession(handle uint64) (*objects.Session, error) {
	slot, err := app.GetSessionSlot(handle)
	if err != nil {
		return nil, err
	}
	return slot.GetSession(handle)
}

// InsertCard attaches the reader transport to the slot, runs detection
// for the reported identification bytes and seeds the new token's handle
// counter above anything persisted.
func (app *Application) InsertCard(slotID uint64, atr []byte, card objects.CardTransport) (*objects.Token, error) {
	slot, err := app.GetSlot(slotID)
	if err != nil {
		return nil, err
	}
	slot.Card = card
	token, err := slot.InsertCard(app.Registry, atr)
	if err != nil {
		slot.Card = nil
		return nil, err
	}
	maxHandle, err := app.Storage.GetMaxHandle()
	if err != nil {
		log.Printf("slot %d: cannot seed handle counter: %v", slotID, err)
	} else {
		token.SeedHandles(maxHandle)
	}
	return token, nil
}

// EjectCard tears down the slot's token and detaches the reader.
func (app *Application) EjectCard(slotID uint64) error {
	slot, err := app.GetSlot(slotID)
	if err != nil {
		return err
	}
	slot.EjectCard()
	slot.Card = nil
	return nil
}

// SaveToken persists the token's current object set, clearing the dirty
// flags. Credentials already stored for the label are kept.
func (app *Application) SaveToken(token *objects.Token) error {
	rec, err := app.Storage.GetToken(token.Label)
	if err != nil {
		if objects.CodeOf(err) != objects.NotFound {
			return err
		}
		rec = &storage.Token{Label: token.Label}
	}

	rec.Objects = rec.Objects[:0]
	saved := make([]*objects.Object, 0, token.ObjectCount(true)+token.ObjectCount(false))
	for _, public := range []bool{true, false} {
		for _, object := range token.Objects(public) {
			stored := &storage.Object{
				Handle:  object.Handle,
				Private: object.Private(),
			}
			for _, attribute := range object.Attributes {
				stored.Attributes = append(stored.Attributes, &storage.Attribute{
					Type:  attribute.Type,
					Value: attribute.Value,
				})
			}
			rec.Objects = append(rec.Objects, stored)
			saved = append(saved, object)
		}
	}

	if err := app.Storage.SaveToken(rec); err != nil {
		return err
	}
	for _, object := range saved {
		object.MarkClean()
	}
	return nil
}
