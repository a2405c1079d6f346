package objects

import "bytes"

// Attribute types follow the Cryptoki attribute space so objects loaded
// from a card keep their wire-level meaning.
const (
	AttrClass           uint32 = 0x00000000
	AttrToken           uint32 = 0x00000001
	AttrPrivate         uint32 = 0x00000002
	AttrLabel           uint32 = 0x00000003
	AttrValue           uint32 = 0x00000011
	AttrCertificateType uint32 = 0x00000080
	AttrID              uint32 = 0x00000102
)

// Object classes stored under AttrClass.
const (
	ClassData        byte = 0x00
	ClassCertificate byte = 0x01
	ClassPublicKey   byte = 0x02
	ClassPrivateKey  byte = 0x03
)

// An attribute related to a token object.
type Attribute struct {
	Type  uint32
	Value []byte
}

// A map of attributes.
type Attributes map[uint32]*Attribute

// Set replaces or adds an attribute.
func (attributes Attributes) Set(attrType uint32, value []byte) {
	attributes[attrType] = &Attribute{Type: attrType, Value: value}
}

// Match reports whether every attribute of the template is present with an
// equal value.
func (attributes Attributes) Match(template Attributes) bool {
	for attrType, want := range template {
		got, ok := attributes[attrType]
		if !ok || !got.Equals(want) {
			return false
		}
	}
	return true
}

// Equals returns true if the maps of attributes are equal.
func (attributes Attributes) Equals(attributes2 Attributes) bool {
	if len(attributes) != len(attributes2) {
		return false
	}
	for attrType, attribute := range attributes {
		attribute2, ok := attributes2[attrType]
		if !ok {
			return false
		}
		if !attribute.Equals(attribute2) {
			return false
		}
	}
	return true
}

// Equals returns true if the attributes are equal.
func (attribute *Attribute) Equals(attribute2 *Attribute) bool {
	return attribute.Type == attribute2.Type &&
		bytes.Equal(attribute.Value, attribute2.Value)
}
