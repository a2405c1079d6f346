package storage

// Token is the persisted form of a token: credentials for software-backed
// variants and the object set with its attributes. Card-backed tokens
// only persist objects.
type Token struct {
	Label   string
	Pin     string
	SoPin   string
	Objects []*Object
}

// Object is the persisted form of a token object.
type Object struct {
	Handle     uint64
	Private    bool
	Attributes []*Attribute
}

// Attribute is the persisted form of an object attribute.
type Attribute struct {
	Type  uint32
	Value []byte
}

// TokenStorage persists tokens across process restarts.
type TokenStorage interface {
	// Executes the logic necessary to initialize the storage.
	InitStorage() error

	// Saves a token into the storage, or returns an error.
	SaveToken(*Token) error

	// Retrieves a token from the storage or returns an error.
	GetToken(label string) (*Token, error)

	// Returns the biggest object handle in the storage, to seed handle
	// counters above anything already in use.
	GetMaxHandle() (uint64, error)

	// Finalizes the use of the storage. The storage is not usable after
	// this method is called.
	CloseStorage() error
}
