package sqlite3

const createTokenTable = `
    CREATE TABLE IF NOT EXISTS token (
        label   TEXT PRIMARY KEY,
        pin     TEXT,
        so_pin  TEXT
    )`

const createObjectTable = `
    CREATE TABLE IF NOT EXISTS crypto_object (
        token_label  TEXT,
        handle       INTEGER,
        private      INTEGER,
        PRIMARY KEY (token_label, handle)
    )`

const createAttributeTable = `
    CREATE TABLE IF NOT EXISTS attribute (
        token_label          TEXT,
        crypto_object_handle INTEGER,
        type                 INTEGER,
        value                BLOB,
        PRIMARY KEY (token_label, crypto_object_handle, type)
    )`

const insertTokenQuery = `
    INSERT OR REPLACE INTO token (label, pin, so_pin)
    VALUES (?, ?, ?)`

const getTokenQuery = `
    SELECT pin, so_pin
    FROM token
    WHERE label = ?`

const insertObjectQuery = `
    INSERT OR REPLACE INTO crypto_object (token_label, handle, private)
    VALUES (?, ?, ?)`

const cleanObjectsQuery = `
    DELETE FROM crypto_object WHERE token_label = ?`

const getObjectsQuery = `
    SELECT handle, private
    FROM crypto_object
    WHERE token_label = ?
    ORDER BY handle`

const insertAttributeQuery = `
    INSERT OR REPLACE INTO attribute (token_label, crypto_object_handle, type, value)
    VALUES (?, ?, ?, ?)`

const cleanAttributesQuery = `
    DELETE FROM attribute WHERE token_label = ?`

const getAttributesQuery = `
    SELECT type, value
    FROM attribute
    WHERE token_label = ? AND crypto_object_handle = ?
    ORDER BY type`

const getMaxHandleQuery = `
    SELECT COALESCE(MAX(handle), 0) FROM crypto_object`

var createStmts = []string{createTokenTable, createObjectTable, createAttributeTable}
