/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: table.go
Description: Built-in signature table. Entries are ordered by priority: longer and
more specific patterns come before short generic ones so that the first hit is the
most trustworthy.
*/

package signature

// Format labels produced by the built-in table.
const (
	LabelZIP   = "ZIP"
	LabelRAR   = "RAR"
	Label7Z    = "7Z"
	LabelGZIP  = "GZIP"
	LabelTAR   = "TAR"
	LabelBZIP2 = "BZIP2"
	LabelXZ    = "XZ"
	LabelISO   = "ISO"
	LabelCAB   = "CAB"
	LabelARJ   = "ARJ"
	LabelLZH   = "LZH"
	LabelZSTD  = "ZSTD"
	LabelLZ4   = "LZ4"
	LabelPDF   = "PDF"
)

// offsets beyond the start of the buffer
const (
	tarMagicOffset = 257
	isoMagicOffset = 32769
)

var table = []Signature{
	// six bytes and up
	{Label: LabelRAR, Description: "RAR archive (v4/v5)", Magic: []byte{0x52, 0x61, 0x72, 0x21, 0x1A, 0x07}},
	{Label: Label7Z, Description: "7-Zip archive", Magic: []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}},
	{Label: LabelXZ, Description: "XZ compressed stream", Magic: []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}},

	// five bytes, some at deep offsets
	{Label: LabelISO, Description: "ISO 9660 disc image", Offset: isoMagicOffset, Magic: []byte("CD001")},
	{Label: LabelTAR, Description: "POSIX tar archive", Offset: tarMagicOffset, Magic: []byte("ustar")},
	{Label: LabelPDF, Description: "PDF document", Magic: []byte("%PDF-")},
	{
		Label:       LabelLZH,
		Description: "LHA/LZH archive (-lh?- / -lz?- method id)",
		Offset:      2,
		Magic:       []byte{'-', 'l', 0x00, 0x00, '-'},
		Mask:        []byte{0xFF, 0xFF, 0x00, 0x00, 0xFF},
	},

	// four bytes
	{Label: LabelZIP, Description: "ZIP local file header", Magic: []byte{0x50, 0x4B, 0x03, 0x04}},
	{Label: LabelZIP, Description: "ZIP end of central directory (empty archive)", Magic: []byte{0x50, 0x4B, 0x05, 0x06}},
	{Label: LabelZIP, Description: "ZIP spanned archive", Magic: []byte{0x50, 0x4B, 0x07, 0x08}},
	{Label: LabelCAB, Description: "Microsoft cabinet", Magic: []byte("MSCF")},
	{Label: LabelZSTD, Description: "Zstandard frame", Magic: []byte{0x28, 0xB5, 0x2F, 0xFD}},
	{Label: LabelLZ4, Description: "LZ4 frame", Magic: []byte{0x04, 0x22, 0x4D, 0x18}},

	// short, generic
	{Label: LabelBZIP2, Description: "bzip2 stream", Magic: []byte("BZh")},
	{Label: LabelGZIP, Description: "gzip stream", Magic: []byte{0x1F, 0x8B}},
	{Label: LabelARJ, Description: "ARJ archive", Magic: []byte{0x60, 0xEA}},
}
