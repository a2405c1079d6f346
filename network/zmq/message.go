package zmq

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/niclabs/tcrsa"
)

// Message types understood by the signer nodes. The type byte is the
// first frame of every request and response.
const (
	SendKeyShare byte = iota
	GetSigShare
)

// sigShareRequest frames a share request for one node.
func sigShareRequest(id string, doc []byte) [][]byte {
	return [][]byte{
		{GetSigShare},
		[]byte(id),
		doc,
	}
}

// parseSigShareResponse validates a node's answer and decodes the share.
func parseSigShareResponse(rawMsg [][]byte) (*tcrsa.SigShare, error) {
	if len(rawMsg) != 2 || len(rawMsg[0]) != 1 {
		return nil, fmt.Errorf("bad response framing")
	}
	if rawMsg[0][0] != GetSigShare {
		return nil, fmt.Errorf("wrong response type %d", rawMsg[0][0])
	}
	var sigShare *tcrsa.SigShare
	decoder := gob.NewDecoder(bytes.NewBuffer(rawMsg[1]))
	if err := decoder.Decode(&sigShare); err != nil {
		return nil, err
	}
	return sigShare, nil
}
