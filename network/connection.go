package network

import "github.com/niclabs/tcrsa"

// A Connection represents a way to communicate with the remote signer
// nodes that hold a distributed token's key shares.
type Connection interface {
	// Open starts the connection to the nodes. Opening an already-open
	// connection does nothing.
	Open() error

	// AskForSigShares asks every node for a signature share over the
	// prepared document. If it cannot reach a single node, it returns an
	// error.
	AskForSigShares(id string, doc []byte) error

	// GetSigShares collects the shares the nodes answered with, waiting
	// at most the configured timeout per node. It returns only the shares
	// that arrived (possibly zero); the caller decides whether they meet
	// its threshold.
	GetSigShares() (tcrsa.SigShareList, error)

	// Close finishes the operation of the connection. If it's already
	// closed, it does nothing.
	Close() error
}
