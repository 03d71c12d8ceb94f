package favicon

import "bytes"

const (
	contentTypePNG  = "image/png"
	contentTypeJPEG = "image/jpeg"
	contentTypeGIF  = "image/gif"
	contentTypeICO  = "image/x-icon"
	contentTypeSVG  = "image/svg+xml"
)

// svgSniffLen is how far into a body ContentType looks for SVG markup.
const svgSniffLen = 100

// signature is a magic-number prefix and the MIME type it identifies.
type signature struct {
	prefix      []byte
	contentType string
}

// binarySignatures are checked in order by both IsValidImage and ContentType.
var binarySignatures = []signature{ //nolint: gochecknoglobals
	{prefix: []byte{0x89, 0x50, 0x4E, 0x47}, contentType: contentTypePNG},
	{prefix: []byte{0xFF, 0xD8, 0xFF}, contentType: contentTypeJPEG},
	{prefix: []byte("GIF"), contentType: contentTypeGIF},
	{prefix: []byte{0x00, 0x00, 0x01, 0x00}, contentType: contentTypeICO},
}

var (
	svgTag    = []byte("<svg")  //nolint: gochecknoglobals
	xmlPrefix = []byte("<?xml") //nolint: gochecknoglobals
)

// IsValidImage reports whether b starts with one of the recognized image
// signatures: PNG, JPEG, GIF, ICO, or SVG/XML markup. Bodies shorter than
// four bytes are never images.
func IsValidImage(b []byte) bool {
	if len(b) < 4 {
		return false
	}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(b, sig.prefix) {
			return true
		}
	}

	return bytes.HasPrefix(b, svgTag) || bytes.HasPrefix(b, xmlPrefix)
}

// ContentType derives the MIME type of an image body. SVG is detected
// anywhere in the first 100 bytes so a leading BOM, doctype or comment does
// not hide it. Anything unrecognized is reported as image/x-icon.
func ContentType(b []byte) string {
	if len(b) < 4 {
		return contentTypeICO
	}

	for _, sig := range binarySignatures {
		if bytes.HasPrefix(b, sig.prefix) {
			return sig.contentType
		}
	}

	head := b[:min(len(b), svgSniffLen)]
	if bytes.Contains(head, svgTag) || bytes.Contains(head, xmlPrefix) {
		return contentTypeSVG
	}

	return contentTypeICO
}
