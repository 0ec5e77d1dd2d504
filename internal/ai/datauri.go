package ai

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ParseDataURI splits a "data:<mime>;base64,<payload>" string into its MIME
// type and decoded bytes. This is the upload format the crop identifier
// client sends for captured photos.
func ParseDataURI(uri string) (mimeType string, data []byte, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return "", nil, fmt.Errorf("not a data URI")
	}

	meta, payload, found := strings.Cut(uri[len(prefix):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URI: missing payload")
	}

	mimeType, encoding, _ := strings.Cut(meta, ";")
	if mimeType == "" {
		return "", nil, fmt.Errorf("malformed data URI: missing MIME type")
	}
	if encoding != "base64" {
		return "", nil, fmt.Errorf("unsupported data URI encoding %q", encoding)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decoding data URI payload: %w", err)
	}

	return mimeType, data, nil
}
