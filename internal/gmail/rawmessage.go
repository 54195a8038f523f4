package gmail

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var errNoRawData = errors.New("raw message data not found")

// DecodeRaw decodes a message fetched with format=raw into its exact bytes.
// Gmail uses URL-safe base64; padded and unpadded input are both accepted.
func DecodeRaw(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errNoRawData
	}
	raw = strings.TrimRight(raw, "=")
	raw = strings.NewReplacer("+", "-", "/", "_").Replace(raw)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode raw message: %w", err)
	}
	return data, nil
}

// HeaderText returns the header section of msg as text for classification.
// Bytes that are not valid UTF-8 are dropped.
func HeaderText(msg []byte) string {
	return string(bytes.ToValidUTF8([]byte(HeaderBlock(string(msg))), nil))
}

// HeaderBlock returns the header section of an RFC 5322 message: everything before
// the first empty line, or the whole text when there is no body.
func HeaderBlock(msg string) string {
	end := len(msg)
	if i := strings.Index(msg, "\r\n\r\n"); i >= 0 {
		end = i + 2
	}
	if i := strings.Index(msg, "\n\n"); i >= 0 && i+1 < end {
		end = i + 1
	}
	return msg[:end]
}
