// Package loader turns uploaded files into text, accepting plain text only.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"docqa/internal/domain"
)

// UnsupportedMessage is shown when a non-text file is uploaded.
const UnsupportedMessage = "Currently only text files are supported. PDF and DOCX support coming soon!"

// Upload is a file as received from the user.
type Upload struct {
	Name string
	Data []byte
}

// ReadFile loads an upload from disk.
func ReadFile(path string) (Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Upload{}, err
	}
	return Upload{Name: filepath.Base(path), Data: data}, nil
}

// MIMEType reports the detected content type of the upload.
func (u Upload) MIMEType() string {
	return mimetype.Detect(u.Data).String()
}

// Text returns the upload decoded as UTF-8 text, or ErrUnsupportedType
// when the content is not plain text or one of its subtypes.
func (u Upload) Text() (string, error) {
	detected := mimetype.Detect(u.Data)
	if !isText(detected) || !utf8.Valid(u.Data) {
		return "", fmt.Errorf("%w: %s is %s", domain.ErrUnsupportedType, u.Name, detected.String())
	}
	return string(u.Data), nil
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
