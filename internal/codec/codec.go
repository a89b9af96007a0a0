// Package codec converts exported database images to and from text so they
// can live in a string-valued key-value slot.
//
// Images are encoded as standard padded base64 (RFC 4648). The encoding is
// lossless for any byte slice, including empty and multi-megabyte images.
// There is no compression and no error correction: a slot that fails to
// decode is reported to the caller, never repaired.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMalformed is returned (wrapped) when the text is not a valid encoding.
var ErrMalformed = errors.New("malformed image encoding")

// Encode returns the text form of an image.
func Encode(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}

// Decode is the exact inverse of Encode.
func Decode(text string) ([]byte, error) {
	image, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w: %v", ErrMalformed, err)
	}
	return image, nil
}
