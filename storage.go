package tokencore

import (
	"fmt"

	"github.com/hsmlab/tokencore/storage"
	"github.com/hsmlab/tokencore/storage/sqlite3"
)

// NewDatabase creates the token storage backend named in the
// configuration. Currently only sqlite3 is implemented.
func NewDatabase(dbType string) (storage.TokenStorage, error) {
	switch dbType {
	case "sqlite3":
		sqliteConfig, err := sqlite3.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("sqlite3 config not defined")
		}
		return sqlite3.GetDatabase(sqliteConfig.Path)
	default:
		return nil, fmt.Errorf("storage option not found: %q", dbType)
	}
}
