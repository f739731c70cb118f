// Package imagecodec converts uploaded files into self-describing embedded
// images (data URLs) and back into transmittable payloads.
package imagecodec

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrUnreadableFile = errors.New("imagecodec: unreadable file")
	ErrInvalidSource  = errors.New("imagecodec: invalid embedded image")
)

// MaxFileBytes bounds a single decoded upload.
const MaxFileBytes = 20 << 20

// EmbeddedImage is a "data:<mime>;base64,<payload>" string. The empty value
// means no image.
type EmbeddedImage string

func (e EmbeddedImage) IsZero() bool { return strings.TrimSpace(string(e)) == "" }

func (e EmbeddedImage) String() string { return string(e) }

// MIMEType returns the declared mime type, or "" when the envelope is malformed.
func (e EmbeddedImage) MIMEType() string {
	p, err := StripEnvelope(e)
	if err != nil {
		return ""
	}
	return p.MIMEType
}

// Payload is the raw image handed to collaborators.
type Payload struct {
	MIMEType string
	Data     []byte
}

// Decode reads src and builds its embedded representation.
func Decode(ctx context.Context, src Source) (EmbeddedImage, error) {
	if src == nil {
		return "", fmt.Errorf("%w: nil source", ErrUnreadableFile)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnreadableFile, src.Name(), err)
	}
	rc, err := src.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadableFile, src.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnreadableFile, src.Name(), err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s: empty file", ErrUnreadableFile, src.Name())
	}
	if len(data) > MaxFileBytes {
		return "", fmt.Errorf("%w: %s: larger than %d bytes", ErrUnreadableFile, src.Name(), MaxFileBytes)
	}
	return Encode(pickMIME(src.MIMEType(), data), data), nil
}

// Encode wraps raw bytes into an embedded image.
func Encode(mimeType string, data []byte) EmbeddedImage {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = pickMIME("", data)
	}
	return EmbeddedImage("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// EncodePayload is Encode for a Payload.
func EncodePayload(p Payload) EmbeddedImage {
	return Encode(p.MIMEType, p.Data)
}

// StripEnvelope discards the data-URL prefix and decodes the payload.
func StripEnvelope(img EmbeddedImage) (Payload, error) {
	s := strings.TrimSpace(string(img))
	if !strings.HasPrefix(s, "data:") {
		return Payload{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidSource)
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return Payload{}, fmt.Errorf("%w: missing payload separator", ErrInvalidSource)
	}
	meta := s[len("data:"):idx] // "<mime>;base64"
	mimeType, encoding, _ := strings.Cut(meta, ";")
	if !strings.EqualFold(encoding, "base64") {
		return Payload{}, fmt.Errorf("%w: unsupported encoding %q", ErrInvalidSource, encoding)
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		return Payload{}, fmt.Errorf("%w: missing mime type", ErrInvalidSource)
	}
	data, err := base64.StdEncoding.DecodeString(s[idx+1:])
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: empty payload", ErrInvalidSource)
	}
	return Payload{MIMEType: mimeType, Data: data}, nil
}

// pickMIME prefers the declared type, then sniffs the bytes.
func pickMIME(declared string, data []byte) string {
	if d := strings.TrimSpace(declared); d != "" && d != "application/octet-stream" {
		return d
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "image/jpeg"
}
