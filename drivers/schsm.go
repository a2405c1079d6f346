package drivers

import (
	"github.com/hsmlab/tokencore/objects"
)

// SmartCard-HSM object directory prefixes. The card enumerates its files
// as two-byte identifiers; the first byte selects the object kind, the
// second is the key/certificate identifier.
const (
	schsmPrivateKeyPrefix  byte = 0xCC
	schsmCertificatePrefix byte = 0xCE
	schsmDataObjectPrefix  byte = 0xCF
)

var schsmATRs = [][]byte{
	{0x3B, 0xFE, 0x18, 0x00, 0x00, 0x81, 0x31, 0xFE, 0x45, 0x80, 0x31, 0x81, 0x54, 0x48, 0x53, 0x4D, 0x31, 0x73, 0x80, 0x21, 0x40, 0x81, 0x07, 0xFA},
	{0x3B, 0x8E, 0x80, 0x01, 0x80, 0x31, 0x81, 0x54, 0x48, 0x53, 0x4D, 0x31, 0x73, 0x80, 0x21, 0x40, 0x81, 0x07, 0x18},
}

var schsmAID = []byte{0xE8, 0x2B, 0x06, 0x01, 0x04, 0x01, 0x81, 0xC3, 0x1F, 0x02, 0x01}

// SmartCardHSM returns the driver for the SmartCard-HSM family. It is the
// richest variant: full PIN management and an enumerable object
// directory.
func SmartCardHSM() *CardDriver {
	drv := &CardDriver{
		name:       "sc-hsm",
		atrs:       schsmATRs,
		aid:        schsmAID,
		userPINRef: 0x81,
		soPINRef:   0x88,
		pinInit:    true,
		pinChange:  true,
	}
	drv.populate = func(card objects.CardTransport, token *objects.Token) error {
		return schsmPopulate(drv, card, token)
	}
	return drv
}

// schsmPopulate enumerates the card's object directory and registers one
// token object per entry. Private keys land in the private partition;
// certificates and data objects are public.
func schsmPopulate(drv *CardDriver, card objects.CardTransport, token *objects.Token) error {
	listing, err := send(card, insEnumerateObjects, 0x00, 0x00, nil)
	if err != nil {
		return wrapStatus(drv.name+".populate", err)
	}
	if len(listing)%2 != 0 {
		return objects.NewError(drv.name+".populate", "odd object directory length", objects.DriverFailure)
	}
	for i := 0; i+1 < len(listing); i += 2 {
		kind, id := listing[i], listing[i+1]

		attrs := make(objects.Attributes)
		attrs.Set(objects.AttrToken, []byte{1})
		attrs.Set(objects.AttrID, []byte{id})

		private := false
		switch kind {
		case schsmPrivateKeyPrefix:
			attrs.Set(objects.AttrClass, []byte{objects.ClassPrivateKey})
			attrs.Set(objects.AttrPrivate, []byte{1})
			private = true
		case schsmCertificatePrefix:
			attrs.Set(objects.AttrClass, []byte{objects.ClassCertificate})
			attrs.Set(objects.AttrPrivate, []byte{0})
		case schsmDataObjectPrefix:
			attrs.Set(objects.AttrClass, []byte{objects.ClassData})
			attrs.Set(objects.AttrPrivate, []byte{0})
		default:
			// Unknown directory entries are not an error; newer card
			// firmware lists files this layer has no use for.
			continue
		}
		token.AddObject(&objects.Object{Attributes: attrs}, !private)
	}
	return nil
}
