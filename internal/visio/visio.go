// Package visio is a placeholder loader for Visio drawings. It exposes an
// empty document, so only rules with no findings on empty text apply, and
// saves the original bytes untouched.
package visio

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"

	"github.com/dshills/docstyle/internal/apperr"
	"github.com/dshills/docstyle/internal/document"
)

const contentTypesPart = "[Content_Types].xml"

// cfbSignature opens a compound file, the container of legacy .vsd drawings.
var cfbSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// File wraps the raw drawing bytes.
type File struct {
	data []byte
	doc  *document.Document
}

// Load accepts an OPC package (.vsdx) or a compound file (.vsd). Anything
// else yields an error wrapping apperr.ErrUnsupportedFormat.
func Load(data []byte) (*File, error) {
	if !bytes.HasPrefix(data, cfbSignature) {
		if err := checkPackage(data); err != nil {
			return nil, apperr.Wrap("visio.Load", apperr.ErrUnsupportedFormat, err)
		}
	}
	return &File{data: data, doc: &document.Document{}}, nil
}

func checkPackage(data []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return errors.New("not a Visio drawing")
		}
		return err
	}
	for _, f := range zr.File {
		if f.Name == contentTypesPart {
			return nil
		}
	}
	return fmt.Errorf("package has no %s", contentTypesPart)
}

func (f *File) Document() *document.Document { return f.doc }

// Save returns the bytes given to Load.
func (f *File) Save() ([]byte, error) { return f.data, nil }
