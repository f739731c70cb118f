package imagecodec

import (
	"bytes"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Source is one raw file offered for upload.
type Source interface {
	Name() string
	// MIMEType is the declared type, or "" to sniff.
	MIMEType() string
	Open() (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource reads a file from disk. The mime type comes from the extension.
func FileSource(path string) Source {
	return fileSource{path: path}
}

func (f fileSource) Name() string { return filepath.Base(f.path) }

func (f fileSource) MIMEType() string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(f.path)))
}

func (f fileSource) Open() (io.ReadCloser, error) { return os.Open(f.path) }

type bytesSource struct {
	name     string
	mimeType string
	data     []byte
}

// BytesSource serves an in-memory file.
func BytesSource(name, mimeType string, data []byte) Source {
	return bytesSource{name: name, mimeType: mimeType, data: data}
}

func (b bytesSource) Name() string     { return b.name }
func (b bytesSource) MIMEType() string { return b.mimeType }

func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

type readerSource struct {
	name     string
	mimeType string
	open     func() (io.ReadCloser, error)
}

// ReaderSource adapts any opener, e.g. a multipart file header.
func ReaderSource(name, mimeType string, open func() (io.ReadCloser, error)) Source {
	return readerSource{name: name, mimeType: mimeType, open: open}
}

func (r readerSource) Name() string     { return r.name }
func (r readerSource) MIMEType() string { return r.mimeType }

func (r readerSource) Open() (io.ReadCloser, error) {
	if r.open == nil {
		return nil, os.ErrNotExist
	}
	return r.open()
}
