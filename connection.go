package tokencore

import (
	"fmt"

	"github.com/hsmlab/tokencore/network"
	"github.com/hsmlab/tokencore/network/zmq"
)

// NewConnection creates a node connection of type "connType". Currently
// only zmq is implemented.
func NewConnection(connType string) (network.Connection, error) {
	switch connType {
	case "zmq":
		zmqConfig, err := zmq.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("zmq config not defined")
		}
		return zmq.New(zmqConfig)
	default:
		return nil, fmt.Errorf("network option not found: %q", connType)
	}
}
