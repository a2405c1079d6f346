package zmq

import (
	"fmt"

	"github.com/niclabs/tcrsa"
	"github.com/pebbe/zmq4"
)

// Node is one remote share holder the client talks to over its own
// REQ socket.
type Node struct {
	host   string
	port   uint16
	pubKey string
	socket *zmq4.Socket
	client *Client
}

func newNode(client *Client, config *NodeConfig) (*Node, error) {
	if config.Host == "" || config.Port == 0 {
		return nil, fmt.Errorf("node needs host and port")
	}
	return &Node{
		host:   config.Host,
		port:   config.Port,
		pubKey: config.PublicKey,
		client: client,
	}, nil
}

func (node *Node) connString() string {
	return fmt.Sprintf("%s://%s:%d", TchsmProtocol, node.host, node.port)
}

func (node *Node) connect() error {
	socket, err := node.client.ctx.NewSocket(zmq4.REQ)
	if err != nil {
		return err
	}
	if err = socket.SetRcvtimeo(node.client.timeout); err != nil {
		return err
	}
	nodePublic, err := zmq4.AuthCurvePublic(node.pubKey)
	if err != nil {
		return err
	}
	if err = socket.ClientAuthCurve(nodePublic, node.client.pubKey, node.client.privKey); err != nil {
		return err
	}
	if err = socket.Connect(node.connString()); err != nil {
		return err
	}
	node.socket = socket
	return nil
}

func (node *Node) disconnect() error {
	if node.socket == nil {
		return nil
	}
	err := node.socket.Close()
	node.socket = nil
	return err
}

func (node *Node) askSigShare(id string, doc []byte) error {
	if node.socket == nil {
		return fmt.Errorf("node %s not connected", node.connString())
	}
	_, err := node.socket.SendMessage(sigShareRequest(id, doc))
	return err
}

func (node *Node) recvSigShare() (*tcrsa.SigShare, error) {
	if node.socket == nil {
		return nil, fmt.Errorf("node %s not connected", node.connString())
	}
	rawMsg, err := node.socket.RecvMessageBytes(0)
	if err != nil {
		return nil, err
	}
	return parseSigShareResponse(rawMsg)
}
