package utils

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidDataURI is returned when an attachment payload is not a
// well-formed base64 data URI.
var ErrInvalidDataURI = errors.New("invalid data URI attachment")

// DecodeDataURI strips the "data:<mime>;base64," prefix from an
// uploaded attachment and returns the raw bytes. An empty input yields
// nil bytes without error, matching an absent attachment.
func DecodeDataURI(dataURI string) ([]byte, error) {
	if dataURI == "" {
		return nil, nil
	}

	idx := strings.Index(dataURI, ",")
	if idx < 0 {
		return nil, ErrInvalidDataURI
	}

	raw, err := base64.StdEncoding.DecodeString(dataURI[idx+1:])
	if err != nil {
		return nil, ErrInvalidDataURI
	}
	return raw, nil
}
