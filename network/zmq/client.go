package zmq

import (
	"fmt"
	"log"
	"time"

	"github.com/niclabs/tcrsa"
	"github.com/pebbe/zmq4"
)

// The domain of the ZMQ connection. This value must be the same on the
// nodes, or the CURVE handshake will not complete.
const TchsmDomain = "tchsm"

// The protocol used for the ZMQ connection.
const TchsmProtocol = "tcp"

// Client represents a connection to a set of signer nodes via ZMQ
// messaging, implementing network.Connection.
type Client struct {
	running bool
	privKey string
	pubKey  string
	timeout time.Duration
	nodes   []*Node
	ctx     *zmq4.Context
	asked   int // nodes that accepted the last share request
}

// New returns a new ZMQ client based on the configuration provided.
func New(config *Config) (*Client, error) {
	context, err := zmq4.NewContext()
	if err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = 10
	}
	client := &Client{
		privKey: config.PrivateKey,
		pubKey:  config.PublicKey,
		timeout: time.Duration(config.Timeout) * time.Second,
		ctx:     context,
		nodes:   make([]*Node, 0, len(config.Nodes)),
	}
	for i, nodeConfig := range config.Nodes {
		node, err := newNode(client, nodeConfig)
		if err != nil {
			return nil, fmt.Errorf("node number %d has a bad configuration: %v", i+1, err)
		}
		client.nodes = append(client.nodes, node)
	}
	return client, nil
}

// Open connects to every node. Opening an open client does nothing.
func (client *Client) Open() error {
	if client.running {
		return nil
	}
	if len(client.nodes) == 0 {
		return fmt.Errorf("no nodes configured")
	}
	_ = zmq4.AuthStart()
	for _, node := range client.nodes {
		zmq4.AuthCurveAdd(TchsmDomain, node.pubKey)
		if err := node.connect(); err != nil {
			zmq4.AuthStop()
			return err
		}
	}
	client.running = true
	return nil
}

// AskForSigShares sends the share request to every connected node.
func (client *Client) AskForSigShares(id string, doc []byte) error {
	if !client.running {
		return fmt.Errorf("connection not open")
	}
	client.asked = 0
	for _, node := range client.nodes {
		if err := node.askSigShare(id, doc); err != nil {
			log.Printf("cannot ask node %s for a signature share: %v", node.connString(), err)
			continue
		}
		client.asked++
	}
	if client.asked == 0 {
		return fmt.Errorf("no node accepted the request")
	}
	return nil
}

// GetSigShares collects the answers from the nodes asked last. Nodes that
// time out or answer garbage are skipped; the caller checks the
// threshold.
func (client *Client) GetSigShares() (tcrsa.SigShareList, error) {
	if !client.running {
		return nil, fmt.Errorf("connection not open")
	}
	shares := make(tcrsa.SigShareList, 0, client.asked)
	for _, node := range client.nodes {
		share, err := node.recvSigShare()
		if err != nil {
			log.Printf("no signature share from node %s: %v", node.connString(), err)
			continue
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// Close disconnects from the nodes. Closing a closed client does nothing.
func (client *Client) Close() error {
	if !client.running {
		return nil
	}
	for _, node := range client.nodes {
		if err := node.disconnect(); err != nil {
			return err
		}
	}
	client.running = false
	zmq4.AuthStop()
	return nil
}
