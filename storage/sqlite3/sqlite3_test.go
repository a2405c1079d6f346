package sqlite3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsmlab/tokencore/objects"
	"github.com/hsmlab/tokencore/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := GetDatabase(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitStorage())
	t.Cleanup(func() {
		_ = db.CloseStorage()
	})
	return db
}

func sampleToken() *storage.Token {
	return &storage.Token{
		Label: "card1",
		Pin:   "1234",
		SoPin: "5678",
		Objects: []*storage.Object{
			{
				Handle:  1,
				Private: false,
				Attributes: []*storage.Attribute{
					{Type: objects.AttrClass, Value: []byte{objects.ClassCertificate}},
					{Type: objects.AttrLabel, Value: []byte("cert-1")},
				},
			},
			{
				Handle:  2,
				Private: true,
				Attributes: []*storage.Attribute{
					{Type: objects.AttrClass, Value: []byte{objects.ClassPrivateKey}},
				},
			},
		},
	}
}

func TestSaveAndGetToken(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.SaveToken(sampleToken()))

	token, err := db.GetToken("card1")
	require.NoError(t, err)
	assert.Equal(t, "1234", token.Pin)
	assert.Equal(t, "5678", token.SoPin)
	require.Len(t, token.Objects, 2)

	assert.Equal(t, uint64(1), token.Objects[0].Handle)
	assert.False(t, token.Objects[0].Private)
	require.Len(t, token.Objects[0].Attributes, 2)
	assert.Equal(t, objects.AttrClass, token.Objects[0].Attributes[0].Type)
	assert.Equal(t, []byte("cert-1"), token.Objects[0].Attributes[1].Value)

	assert.Equal(t, uint64(2), token.Objects[1].Handle)
	assert.True(t, token.Objects[1].Private)
}

func TestGetTokenNotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetToken("missing")
	require.Equal(t, objects.NotFound, objects.CodeOf(err))
}

func TestSaveTokenRewritesObjectSet(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.SaveToken(sampleToken()))

	// Save again with one object dropped and the pin changed.
	update := sampleToken()
	update.Pin = "4321"
	update.Objects = update.Objects[1:]
	require.NoError(t, db.SaveToken(update))

	token, err := db.GetToken("card1")
	require.NoError(t, err)
	assert.Equal(t, "4321", token.Pin)
	require.Len(t, token.Objects, 1)
	assert.Equal(t, uint64(2), token.Objects[0].Handle)

	// Attributes of the dropped object must not linger.
	require.Len(t, token.Objects[0].Attributes, 1)
	assert.Equal(t, objects.AttrClass, token.Objects[0].Attributes[0].Type)
}

func TestSaveTokenKeepsLabelsApart(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.SaveToken(sampleToken()))

	other := sampleToken()
	other.Label = "card2"
	other.Objects = other.Objects[:1]
	require.NoError(t, db.SaveToken(other))

	token, err := db.GetToken("card1")
	require.NoError(t, err)
	assert.Len(t, token.Objects, 2)

	token, err = db.GetToken("card2")
	require.NoError(t, err)
	assert.Len(t, token.Objects, 1)
}

func TestGetMaxHandle(t *testing.T) {
	db := testDB(t)

	max, err := db.GetMaxHandle()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), max, "empty storage reports zero")

	record := sampleToken()
	record.Objects[1].Handle = 40
	require.NoError(t, db.SaveToken(record))

	max, err = db.GetMaxHandle()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), max)
}
