package drivers

// The remaining card families are StarCOS-derived signature cards. They
// share the same command set; only ATRs, application identifiers and PIN
// references differ, and none of them lets the host rewrite PINs (the
// PIN letter is authoritative), so PIN init stays unsupported.

var bnotkATRs = [][]byte{
	{0x3B, 0xDB, 0x96, 0xFF, 0xC0, 0x10, 0x31, 0xFE, 0x45, 0x80, 0x67, 0x05, 0x34, 0xB5, 0x02, 0x01, 0xC0, 0xA1, 0x81, 0x05, 0x3C},
}

// BNotK returns the driver for the Bundesnotarkammer signature card.
func BNotK() *CardDriver {
	return &CardDriver{
		name:       "bnotk",
		atrs:       bnotkATRs,
		aid:        []byte{0xD2, 0x76, 0x00, 0x00, 0x66, 0x01},
		userPINRef: 0x81,
		soPINRef:   0x8A,
		pinChange:  true,
	}
}

var dtrustATRs = [][]byte{
	{0x3B, 0xD9, 0x96, 0xFF, 0x81, 0x31, 0xFE, 0x45, 0x80, 0x31, 0xB0, 0x52, 0x02, 0x04, 0x64, 0x05, 0xC9, 0x03, 0xAC, 0x73, 0xB7, 0xB1, 0xD4, 0x44},
}

// DTrust returns the driver for the D-Trust card family.
func DTrust() *CardDriver {
	return &CardDriver{
		name:       "dtrust",
		atrs:       dtrustATRs,
		aid:        []byte{0xD2, 0x76, 0x00, 0x00, 0x66, 0x02},
		userPINRef: 0x81,
		soPINRef:   0x87,
		pinChange:  true,
	}
}

var signtrust32ATRs = [][]byte{
	{0x3B, 0x9B, 0x96, 0xC0, 0x0A, 0x31, 0xFE, 0x45, 0x80, 0x67, 0x04, 0x12, 0xB0, 0x03, 0x02, 0x01, 0x00, 0x82, 0x90, 0x00, 0xA0},
}

// Signtrust32 returns the driver for Signtrust cards on StarCOS 3.2.
func Signtrust32() *CardDriver {
	return &CardDriver{
		name:       "signtrust32",
		atrs:       signtrust32ATRs,
		aid:        []byte{0xD2, 0x76, 0x00, 0x00, 0x66, 0x03},
		userPINRef: 0x81,
		soPINRef:   0x87,
	}
}

var signtrust35ATRs = [][]byte{
	{0x3B, 0xDB, 0x96, 0xFF, 0xC1, 0x10, 0x31, 0xFE, 0x45, 0x80, 0x67, 0x05, 0x34, 0xB5, 0x02, 0x01, 0xC0, 0xA1, 0x81, 0x05, 0x3C},
}

// Signtrust35 returns the driver for Signtrust cards on StarCOS 3.5.
func Signtrust35() *CardDriver {
	return &CardDriver{
		name:       "signtrust35",
		atrs:       signtrust35ATRs,
		aid:        []byte{0xD2, 0x76, 0x00, 0x00, 0x66, 0x04},
		userPINRef: 0x81,
		soPINRef:   0x87,
	}
}

var dgnATRs = [][]byte{
	{0x3B, 0xD2, 0x18, 0x00, 0x81, 0x31, 0xFE, 0x58, 0xC9, 0x03, 0x16},
}

// DGN returns the driver for the DGN service card.
func DGN() *CardDriver {
	return &CardDriver{
		name:       "dgn",
		atrs:       dgnATRs,
		aid:        []byte{0xD2, 0x76, 0x00, 0x00, 0x66, 0x05},
		userPINRef: 0x81,
		soPINRef:   0x88,
		pinChange:  true,
	}
}
