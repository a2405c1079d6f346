package drivers

import (
	"testing"

	iso "cunicu.li/go-iso7816"
	"cunicu.li/go-iso7816/encoding/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsmlab/tokencore/objects"
)

// fakeCard scripts responses per instruction and records every command
// sent to it.
type fakeCard struct {
	responses map[iso.Instruction]fakeResponse
	commands  []*iso.CAPDU
}

type fakeResponse struct {
	data []byte
	err  error
}

func (card *fakeCard) Send(cmd *iso.CAPDU) ([]byte, error) {
	card.commands = append(card.commands, cmd)
	resp, ok := card.responses[cmd.Ins]
	if !ok {
		return nil, nil
	}
	return resp.data, resp.err
}

func (card *fakeCard) respond(ins iso.Instruction, data []byte, err error) *fakeCard {
	if card.responses == nil {
		card.responses = make(map[iso.Instruction]fakeResponse)
	}
	card.responses[ins] = fakeResponse{data: data, err: err}
	return card
}

func (card *fakeCard) lastCommand() *iso.CAPDU {
	if len(card.commands) == 0 {
		return nil
	}
	return card.commands[len(card.commands)-1]
}

func fciWithLabel(t *testing.T, label string) []byte {
	t.Helper()
	fci, err := tlv.EncodeBER(tlv.New(0x6F, tlv.New(0x85, []byte(label))))
	require.NoError(t, err)
	return fci
}

func hsmSlot(card objects.CardTransport) *objects.Slot {
	slot := objects.NewSlot(0, "reader0")
	slot.Card = card
	return slot
}

func TestCardDriverIsCandidate(t *testing.T) {
	drv := SmartCardHSM()
	assert.True(t, drv.IsCandidate(schsmATRs[0]))
	assert.True(t, drv.IsCandidate(schsmATRs[1]))
	assert.False(t, drv.IsCandidate(bnotkATRs[0]))
	assert.False(t, drv.IsCandidate(schsmATRs[0][:10]), "truncated ATRs must not match")
	assert.False(t, drv.IsCandidate(nil))
}

func TestSmartCardHSMConstructPopulates(t *testing.T) {
	card := (&fakeCard{}).
		respond(insSelect, fciWithLabel(t, "HSM 1"), nil).
		respond(insEnumerateObjects, []byte{
			schsmPrivateKeyPrefix, 0x01,
			schsmCertificatePrefix, 0x01,
			schsmDataObjectPrefix, 0x10,
			0xAA, 0x55, // unknown kind, skipped
		}, nil)

	drv := SmartCardHSM()
	token, err := drv.Construct(hsmSlot(card))
	require.NoError(t, err)
	assert.Equal(t, "HSM 1", token.Label)
	assert.Equal(t, 2, token.ObjectCount(true))
	assert.Equal(t, 1, token.ObjectCount(false))

	template := make(objects.Attributes)
	template.Set(objects.AttrClass, []byte{objects.ClassPrivateKey})
	object, err := token.FindMatching(template)
	require.NoError(t, err)
	assert.True(t, object.Private())
	assert.Equal(t, []byte{0x01}, object.Attributes[objects.AttrID].Value)
}

func TestCardDriverConstructLabelFallback(t *testing.T) {
	card := (&fakeCard{}).respond(insSelect, []byte{0xFF, 0xFF}, nil)
	token, err := DTrust().Construct(hsmSlot(card))
	require.NoError(t, err)
	assert.Equal(t, "dtrust", token.Label, "unparseable FCI falls back to the family name")
}

func TestCardDriverConstructWithoutApplication(t *testing.T) {
	card := (&fakeCard{}).respond(insSelect, nil, iso.ErrFileOrAppNotFound)
	_, err := SmartCardHSM().Construct(hsmSlot(card))
	require.Equal(t, objects.TokenNotRecognized, objects.CodeOf(err))
}

func TestCardDriverConstructWithoutReader(t *testing.T) {
	slot := objects.NewSlot(0, "reader0")
	_, err := SmartCardHSM().Construct(slot)
	require.Equal(t, objects.DeviceError, objects.CodeOf(err))
}

func TestCardDriverConstructBrokenDirectory(t *testing.T) {
	card := (&fakeCard{}).
		respond(insSelect, fciWithLabel(t, "HSM 1"), nil).
		respond(insEnumerateObjects, []byte{schsmPrivateKeyPrefix}, nil)
	_, err := SmartCardHSM().Construct(hsmSlot(card))
	require.Equal(t, objects.DriverFailure, objects.CodeOf(err))
}

func TestCardDriverLoginSendsVerify(t *testing.T) {
	card := &fakeCard{}
	drv := SmartCardHSM()
	slot := hsmSlot(card)

	require.NoError(t, drv.Login(slot, objects.User, []byte("123456")))
	cmd := card.lastCommand()
	assert.Equal(t, iso.InsVerify, cmd.Ins)
	assert.Equal(t, byte(0x81), cmd.P2)
	assert.Equal(t, []byte("123456"), cmd.Data)

	require.NoError(t, drv.Login(slot, objects.SecurityOfficer, []byte("sopin")))
	assert.Equal(t, byte(0x88), card.lastCommand().P2, "security officer uses its own PIN reference")
}

func TestCardDriverLoginWrongPIN(t *testing.T) {
	card := (&fakeCard{}).respond(iso.InsVerify, nil, iso.Code{0x63, 0xC2})
	err := SmartCardHSM().Login(hsmSlot(card), objects.User, []byte("000000"))
	require.Equal(t, objects.WrongCredential, objects.CodeOf(err))
	assert.Contains(t, err.Error(), "2 retries left")
}

func TestCardDriverLoginBlockedPIN(t *testing.T) {
	card := (&fakeCard{}).respond(iso.InsVerify, nil, iso.ErrAuthenticationMethodBlocked)
	err := SmartCardHSM().Login(hsmSlot(card), objects.User, []byte("000000"))
	require.Equal(t, objects.WrongCredential, objects.CodeOf(err))
}

func TestCardDriverLogoutReselects(t *testing.T) {
	card := &fakeCard{}
	drv := SmartCardHSM()
	require.NoError(t, drv.Logout(hsmSlot(card)))
	cmd := card.lastCommand()
	assert.Equal(t, insSelect, cmd.Ins)
	assert.Equal(t, schsmAID, cmd.Data)

	// Nothing to reset once the reader is gone.
	require.NoError(t, drv.Logout(objects.NewSlot(1, "empty")))
}

func TestCardDriverPINManagement(t *testing.T) {
	card := &fakeCard{}
	drv := SmartCardHSM()
	slot := hsmSlot(card)

	require.NoError(t, drv.InitPIN(slot, []byte("654321")))
	cmd := card.lastCommand()
	assert.Equal(t, iso.InsResetRetryCounter, cmd.Ins)
	assert.Equal(t, byte(0x02), cmd.P1)
	assert.Equal(t, byte(0x81), cmd.P2)

	require.NoError(t, drv.SetPIN(slot, []byte("123456"), []byte("654321")))
	cmd = card.lastCommand()
	assert.Equal(t, iso.InsChangeReferenceData, cmd.Ins)
	assert.Equal(t, []byte("123456654321"), cmd.Data)
}

func TestStarcosPINCapabilities(t *testing.T) {
	slot := hsmSlot(&fakeCard{})

	// None of the signature cards lets the host initialize a PIN.
	for _, drv := range []*CardDriver{BNotK(), DTrust(), Signtrust32(), Signtrust35(), DGN()} {
		err := drv.InitPIN(slot, []byte("1234"))
		require.Equal(t, objects.NotSupported, objects.CodeOf(err), drv.Name())
	}

	err := Signtrust32().SetPIN(slot, []byte("1234"), []byte("4321"))
	require.Equal(t, objects.NotSupported, objects.CodeOf(err))
	err = Signtrust35().SetPIN(slot, []byte("1234"), []byte("4321"))
	require.Equal(t, objects.NotSupported, objects.CodeOf(err))
	require.NoError(t, DGN().SetPIN(slot, []byte("1234"), []byte("4321")))
}

func TestDefaultRegistryOrder(t *testing.T) {
	drivers := DefaultRegistry().Drivers()
	names := make([]string, len(drivers))
	for i, drv := range drivers {
		names[i] = drv.Name()
	}
	assert.Equal(t, []string{"sc-hsm", "bnotk", "dtrust", "signtrust32", "signtrust35", "dgn"}, names)
}

func TestDefaultRegistryDetectsByATR(t *testing.T) {
	card := (&fakeCard{}).respond(insSelect, fciWithLabel(t, "D-TRUST Card"), nil)
	slot := hsmSlot(card)

	token, err := DefaultRegistry().DetectToken(slot, dtrustATRs[0])
	require.NoError(t, err)
	assert.Equal(t, "D-TRUST Card", token.Label)
	assert.Equal(t, "dtrust", token.Driver().Name())

	_, err = DefaultRegistry().DetectToken(slot, []byte{0x3B, 0x00})
	require.Equal(t, objects.TokenNotRecognized, objects.CodeOf(err))
}

func TestWrapStatusUnknownCode(t *testing.T) {
	err := wrapStatus("test", iso.Code{0x6A, 0x81})
	require.Equal(t, objects.DriverFailure, objects.CodeOf(err))
	require.NoError(t, wrapStatus("test", nil))
}
