package drivers

import (
	"bytes"

	iso "cunicu.li/go-iso7816"
	"cunicu.li/go-iso7816/encoding/tlv"

	"github.com/hsmlab/tokencore/objects"
)

// CardDriver implements the driver contract for one ISO 7816 card family.
// The families differ in ATR tables, application identifiers, PIN
// references and how their token objects are discovered; everything else
// (VERIFY, CHANGE REFERENCE DATA, select-based logout) is shared. Each
// family configures its own instance through a factory in this package.
type CardDriver struct {
	name       string
	atrs       [][]byte
	aid        []byte
	userPINRef byte
	soPINRef   byte
	pinInit    bool
	pinChange  bool
	// populate discovers the card's token objects after a successful
	// application select. Nil means the family publishes none.
	populate func(card objects.CardTransport, token *objects.Token) error
}

func (drv *CardDriver) Name() string {
	return drv.name
}

// IsCandidate matches the identification bytes against the family's known
// ATRs.
func (drv *CardDriver) IsCandidate(atr []byte) bool {
	for _, known := range drv.atrs {
		if bytes.Equal(atr, known) {
			return true
		}
	}
	return false
}

// selectApplication selects the family's application and returns the FCI
// template the card answered with.
func (drv *CardDriver) selectApplication(card objects.CardTransport) ([]byte, error) {
	fci, err := send(card, insSelect, 0x04, 0x04, drv.aid)
	if err != nil {
		return nil, wrapStatus(drv.name+".selectApplication", err)
	}
	return fci, nil
}

// tokenLabel pulls the label out of the FCI template, falling back to the
// family name for cards that don't report one.
func (drv *CardDriver) tokenLabel(fci []byte) string {
	tvs, err := tlv.DecodeBER(fci)
	if err != nil {
		return drv.name
	}
	if label, _, ok := tvs.GetChild(0x6F, 0x85); ok && len(label) > 0 {
		return string(label)
	}
	return drv.name
}

// Construct selects the application and builds the token. A card whose
// ATR matched but that does not carry the application is reported as not
// recognized, so detection keeps probing the remaining families.
func (drv *CardDriver) Construct(slot *objects.Slot) (*objects.Token, error) {
	card := slot.Reader()
	if card == nil {
		return nil, objects.NewError(drv.name+".Construct", "no reader transport attached", objects.DeviceError)
	}
	fci, err := drv.selectApplication(card)
	if err != nil {
		if objects.CodeOf(err) == objects.NotFound {
			return nil, objects.NewError(drv.name+".Construct", "application not present on card", objects.TokenNotRecognized)
		}
		return nil, err
	}
	token := objects.NewToken(drv.tokenLabel(fci), drv)
	if drv.populate != nil {
		if err := drv.populate(card, token); err != nil {
			return nil, err
		}
	}
	return token, nil
}

// Login verifies the PIN for the requested role against the card.
func (drv *CardDriver) Login(slot *objects.Slot, level objects.SecurityLevel, pin []byte) error {
	card := slot.Reader()
	if card == nil {
		return objects.NewError(drv.name+".Login", "no reader transport attached", objects.DeviceError)
	}
	ref := drv.userPINRef
	if level == objects.SecurityOfficer {
		ref = drv.soPINRef
	}
	if _, err := send(card, iso.InsVerify, 0x00, ref, pin); err != nil {
		return wrapStatus(drv.name+".Login", err)
	}
	return nil
}

// Logout re-selects the application, which resets the card's security
// state. A slot whose card is already gone has nothing left to reset.
func (drv *CardDriver) Logout(slot *objects.Slot) error {
	card := slot.Reader()
	if card == nil {
		return nil
	}
	_, err := drv.selectApplication(card)
	return err
}

// InitPIN sets the user PIN after a security-officer login. Families
// without the capability report NotSupported.
func (drv *CardDriver) InitPIN(slot *objects.Slot, pin []byte) error {
	if !drv.pinInit {
		return objects.NewError(drv.name+".InitPIN", "not supported by this card family", objects.NotSupported)
	}
	card := slot.Reader()
	if card == nil {
		return objects.NewError(drv.name+".InitPIN", "no reader transport attached", objects.DeviceError)
	}
	if _, err := send(card, iso.InsResetRetryCounter, 0x02, drv.userPINRef, pin); err != nil {
		return wrapStatus(drv.name+".InitPIN", err)
	}
	return nil
}

// SetPIN changes the user PIN. Families without the capability report
// NotSupported.
func (drv *CardDriver) SetPIN(slot *objects.Slot, oldPIN, newPIN []byte) error {
	if !drv.pinChange {
		return objects.NewError(drv.name+".SetPIN", "not supported by this card family", objects.NotSupported)
	}
	card := slot.Reader()
	if card == nil {
		return objects.NewError(drv.name+".SetPIN", "no reader transport attached", objects.DeviceError)
	}
	data := make([]byte, 0, len(oldPIN)+len(newPIN))
	data = append(data, oldPIN...)
	data = append(data, newPIN...)
	if _, err := send(card, iso.InsChangeReferenceData, 0x00, drv.userPINRef, data); err != nil {
		return wrapStatus(drv.name+".SetPIN", err)
	}
	return nil
}
