package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

var ErrNotDataURI = errors.New("not a base64 data URI")

// DataURI is a decoded "data:<mime>;base64,<payload>" string.
type DataURI struct {
	MimeType string
	Data     []byte
}

// ParseDataURI decodes a base64 data URI. The payload after the first comma is the
// image; a missing mime type defaults to image/jpeg.
func ParseDataURI(raw string) (DataURI, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return DataURI{}, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return DataURI{}, ErrNotDataURI
	}

	mime := strings.TrimSuffix(header, ";base64")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if mime == "" {
		mime = "image/jpeg"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURI{}, err
	}
	if len(data) == 0 {
		return DataURI{}, ErrNotDataURI
	}
	return DataURI{MimeType: mime, Data: data}, nil
}

// ExtensionFor maps an image mime type to a file extension for archive keys.
func ExtensionFor(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	case "image/heic":
		return "heic"
	default:
		return "jpg"
	}
}
