package drivers

import "github.com/hsmlab/tokencore/objects"

// DefaultRegistry returns the known card families in probe priority
// order. The order matters: for identification data that several families
// would accept, the earlier entry wins the construction attempt.
func DefaultRegistry() *objects.Registry {
	return objects.NewRegistry(
		SmartCardHSM(),
		BNotK(),
		DTrust(),
		Signtrust32(),
		Signtrust35(),
		DGN(),
	)
}
