package drivers

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/niclabs/tcrsa"

	"github.com/hsmlab/tokencore/network"
	"github.com/hsmlab/tokencore/objects"
	"github.com/hsmlab/tokencore/storage"
)

// RemoteATR is the identification the hosting application reports for a
// distributed software token; there is no physical card behind it.
var RemoteATR = []byte{0x3B, 0x90, 0x54, 0x43, 0x48, 0x53, 0x4D}

// RemoteHSM is the driver for a token whose key material lives as
// threshold shares on remote signer nodes. PIN records and token objects
// are persisted locally; logging in additionally proves that enough nodes
// are alive to reassemble a signature.
type RemoteHSM struct {
	Label   string
	Conn    network.Connection
	Storage storage.TokenStorage
	Meta    *tcrsa.KeyMeta

	rec *storage.Token
}

// NewRemoteHSM wires a remote token driver. The key metadata must be the
// one the shares were generated against.
func NewRemoteHSM(label string, conn network.Connection, db storage.TokenStorage, meta *tcrsa.KeyMeta) *RemoteHSM {
	return &RemoteHSM{
		Label:   label,
		Conn:    conn,
		Storage: db,
		Meta:    meta,
	}
}

func (drv *RemoteHSM) Name() string {
	return "tchsm"
}

func (drv *RemoteHSM) IsCandidate(atr []byte) bool {
	if len(atr) != len(RemoteATR) {
		return false
	}
	for i := range atr {
		if atr[i] != RemoteATR[i] {
			return false
		}
	}
	return true
}

// Construct loads the persisted token record and rebuilds its object
// partitions. An unknown label means this driver has nothing to offer and
// detection may keep probing.
func (drv *RemoteHSM) Construct(slot *objects.Slot) (*objects.Token, error) {
	rec, err := drv.Storage.GetToken(drv.Label)
	if err != nil {
		if objects.CodeOf(err) == objects.NotFound {
			return nil, objects.NewError("RemoteHSM.Construct", "no token record for "+drv.Label, objects.TokenNotRecognized)
		}
		return nil, objects.NewError("RemoteHSM.Construct", err.Error(), objects.DeviceError)
	}
	if err := drv.Conn.Open(); err != nil {
		return nil, objects.NewError("RemoteHSM.Construct", err.Error(), objects.DriverFailure)
	}

	token := objects.NewToken(rec.Label, drv)
	maxHandle, err := drv.Storage.GetMaxHandle()
	if err != nil {
		return nil, objects.NewError("RemoteHSM.Construct", err.Error(), objects.DeviceError)
	}
	token.SeedHandles(maxHandle)

	for _, stored := range rec.Objects {
		attrs := make(objects.Attributes, len(stored.Attributes))
		for _, attribute := range stored.Attributes {
			attrs.Set(attribute.Type, attribute.Value)
		}
		object := &objects.Object{Handle: stored.Handle, Attributes: attrs}
		token.AddObject(object, !stored.Private)
		// Loaded state is already persisted.
		object.MarkClean()
	}
	drv.rec = rec
	return token, nil
}

// Destruct closes the node connection.
func (drv *RemoteHSM) Destruct(token *objects.Token) error {
	drv.rec = nil
	return drv.Conn.Close()
}

// Login checks the credential against the persisted record and then
// challenges the nodes, so a token whose share holders are gone fails
// loudly instead of at first signature.
func (drv *RemoteHSM) Login(slot *objects.Slot, level objects.SecurityLevel, pin []byte) error {
	if drv.rec == nil {
		return objects.NewError("RemoteHSM.Login", "token not constructed", objects.DeviceError)
	}
	want := drv.rec.Pin
	if level == objects.SecurityOfficer {
		want = drv.rec.SoPin
	}
	if want != string(pin) {
		return objects.NewError("RemoteHSM.Login", "incorrect pin", objects.WrongCredential)
	}
	return drv.challengeNodes()
}

// challengeNodes asks the nodes to sign a random challenge and verifies
// the joined signature against the token's public key.
func (drv *RemoteHSM) challengeNodes() error {
	challenge := make([]byte, 32)
	if _, err := rand.Read(challenge); err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	hash := sha256.Sum256(challenge)
	doc, err := tcrsa.PrepareDocumentHash(drv.Meta.PublicKey.Size(), crypto.SHA256, hash[:])
	if err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	if err := drv.Conn.AskForSigShares(drv.Label, doc); err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	shares, err := drv.Conn.GetSigShares()
	if err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	if len(shares) < int(drv.Meta.K) {
		return objects.NewError("RemoteHSM.challengeNodes",
			fmt.Sprintf("got %d signature shares, threshold is %d", len(shares), drv.Meta.K),
			objects.DriverFailure)
	}
	for _, share := range shares {
		if err := share.Verify(doc, drv.Meta); err != nil {
			return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
		}
	}
	signature, err := shares.Join(doc, drv.Meta)
	if err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	if err := rsa.VerifyPKCS1v15(drv.Meta.PublicKey, crypto.SHA256, hash[:], signature); err != nil {
		return objects.NewError("RemoteHSM.challengeNodes", err.Error(), objects.DriverFailure)
	}
	return nil
}

// Logout has no remote state to drop; the core's role bookkeeping is all
// there is.
func (drv *RemoteHSM) Logout(slot *objects.Slot) error {
	return nil
}

// InitPIN persists a fresh user PIN.
func (drv *RemoteHSM) InitPIN(slot *objects.Slot, pin []byte) error {
	if drv.rec == nil {
		return objects.NewError("RemoteHSM.InitPIN", "token not constructed", objects.DeviceError)
	}
	drv.rec.Pin = string(pin)
	if err := drv.Storage.SaveToken(drv.rec); err != nil {
		return objects.NewError("RemoteHSM.InitPIN", err.Error(), objects.DeviceError)
	}
	return nil
}

// SetPIN checks the old user PIN and persists the new one.
func (drv *RemoteHSM) SetPIN(slot *objects.Slot, oldPIN, newPIN []byte) error {
	if drv.rec == nil {
		return objects.NewError("RemoteHSM.SetPIN", "token not constructed", objects.DeviceError)
	}
	if drv.rec.Pin != string(oldPIN) {
		return objects.NewError("RemoteHSM.SetPIN", "incorrect pin", objects.WrongCredential)
	}
	drv.rec.Pin = string(newPIN)
	if err := drv.Storage.SaveToken(drv.rec); err != nil {
		return objects.NewError("RemoteHSM.SetPIN", err.Error(), objects.DeviceError)
	}
	return nil
}
