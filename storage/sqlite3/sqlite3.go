package sqlite3

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hsmlab/tokencore/objects"
	"github.com/hsmlab/tokencore/storage"
)

// DB is a wrapper over a sql.DB object, complying with the TokenStorage
// interface.
type DB struct {
	*sql.DB
}

// GetDatabase opens (or creates) the database at the given path.
func GetDatabase(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &DB{DB: db}, nil
}

// InitStorage creates the tables if they don't exist yet.
func (db *DB) InitStorage() error {
	for _, stmt := range createStmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveToken rewrites the token and its complete object set in one
// transaction.
func (db *DB) SaveToken(token *storage.Token) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := saveToken(tx, token); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveToken(tx *sql.Tx, token *storage.Token) error {
	if _, err := tx.Exec(cleanAttributesQuery, token.Label); err != nil {
		return err
	}
	if _, err := tx.Exec(cleanObjectsQuery, token.Label); err != nil {
		return err
	}
	if _, err := tx.Exec(insertTokenQuery, token.Label, token.Pin, token.SoPin); err != nil {
		return err
	}
	for _, object := range token.Objects {
		if _, err := tx.Exec(insertObjectQuery, token.Label, object.Handle, object.Private); err != nil {
			return err
		}
		for _, attribute := range object.Attributes {
			if _, err := tx.Exec(insertAttributeQuery,
				token.Label, object.Handle, attribute.Type, attribute.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetToken retrieves a token with its objects and attributes, or a
// NotFound error when the label is unknown.
func (db *DB) GetToken(label string) (*storage.Token, error) {
	token := &storage.Token{Label: label}
	err := db.QueryRow(getTokenQuery, label).Scan(&token.Pin, &token.SoPin)
	if err == sql.ErrNoRows {
		return nil, objects.NewError("DB.GetToken", "token not found", objects.NotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(getObjectsQuery, label)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		object := &storage.Object{}
		if err := rows.Scan(&object.Handle, &object.Private); err != nil {
			return nil, err
		}
		token.Objects = append(token.Objects, object)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, object := range token.Objects {
		if err := db.loadAttributes(label, object); err != nil {
			return nil, err
		}
	}
	return token, nil
}

func (db *DB) loadAttributes(label string, object *storage.Object) error {
	rows, err := db.Query(getAttributesQuery, label, object.Handle)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		attribute := &storage.Attribute{}
		if err := rows.Scan(&attribute.Type, &attribute.Value); err != nil {
			return err
		}
		object.Attributes = append(object.Attributes, attribute)
	}
	return rows.Err()
}

// GetMaxHandle returns the biggest object handle in the storage.
func (db *DB) GetMaxHandle() (uint64, error) {
	var max uint64
	if err := db.QueryRow(getMaxHandleQuery).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// CloseStorage closes the underlying database.
func (db *DB) CloseStorage() error {
	return db.Close()
}
