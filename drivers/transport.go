package drivers

import (
	"fmt"

	iso "cunicu.li/go-iso7816"

	"github.com/hsmlab/tokencore/objects"
)

// Instructions used by the card families beyond the ones go-iso7816 names.
const (
	insSelect           = iso.Instruction(0xA4)
	insReadBinary       = iso.Instruction(0xB0)
	insEnumerateObjects = iso.Instruction(0x58)
)

func send(card objects.CardTransport, ins iso.Instruction, p1, p2 byte, data []byte) ([]byte, error) {
	return card.Send(&iso.CAPDU{
		Ins:  ins,
		P1:   p1,
		P2:   p2,
		Data: data,
	})
}

// wrapStatus maps ISO status words onto the core taxonomy. Anything not
// listed stays an opaque driver failure, which the core propagates
// verbatim.
func wrapStatus(who string, err error) error {
	if err == nil {
		return nil
	}
	code, ok := err.(iso.Code) //nolint:errorlint
	if !ok {
		if tkErr, isTk := err.(*objects.TkError); isTk {
			return tkErr
		}
		return objects.NewError(who, err.Error(), objects.DriverFailure)
	}

	switch {
	case code == iso.ErrFileOrAppNotFound:
		return objects.NewError(who, "file or application not found", objects.NotFound)

	case code == iso.ErrAuthenticationMethodBlocked:
		return objects.NewError(who, "credential blocked", objects.WrongCredential)

	case code == iso.ErrUnspecifiedWarningModified:
		return objects.NewError(who, "wrong credential", objects.WrongCredential)

	case code[0] == 0x63 && code[1]&0xf0 == 0xc0:
		return objects.NewError(who,
			fmt.Sprintf("wrong credential (%d retries left)", code[1]&0xf),
			objects.WrongCredential)

	default:
		return objects.NewError(who, code.Error(), objects.DriverFailure)
	}
}
