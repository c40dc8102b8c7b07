package staging

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// Archive accumulates staged files into an in-memory zip, in the order they
// are added. It is finalized once by Bytes.
type Archive struct {
	buf       bytes.Buffer
	zw        *zip.Writer
	finalized bool
}

func NewArchive() *Archive {
	a := &Archive{}
	a.zw = zip.NewWriter(&a.buf)
	return a
}

// AddFile writes one entry named by relativePath (always '/'-separated inside
// the archive) with the given contents.
func (a *Archive) AddFile(relativePath string, contents io.Reader) error {
	if a.finalized {
		return errors.New("archive already finalized")
	}

	w, err := a.zw.Create(filepath.ToSlash(relativePath))
	if err != nil {
		return fmt.Errorf("creating zip entry %s: %w", relativePath, err)
	}
	if _, err := io.Copy(w, contents); err != nil {
		return fmt.Errorf("writing zip entry %s: %w", relativePath, err)
	}

	return nil
}

// Bytes finalizes the archive and returns the zip bytes. Further AddFile
// calls fail; repeated Bytes calls return the same buffer.
func (a *Archive) Bytes() ([]byte, error) {
	if !a.finalized {
		if err := a.zw.Close(); err != nil {
			return nil, fmt.Errorf("finalizing zip: %w", err)
		}
		a.finalized = true
	}
	return a.buf.Bytes(), nil
}
