package app

import (
	"os"
	"path/filepath"

	"github.com/dshills/proofline/internal/document"
)

// ReadDocument loads path into a document. A missing file yields an empty
// document so the editor can create it on save.
func ReadDocument(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return document.New(""), nil
		}
		return nil, NewOperationError("open", path, err)
	}
	defer f.Close()

	doc, err := document.FromReader(f)
	if err != nil {
		return nil, NewOperationError("read", path, err)
	}
	return doc, nil
}

// WriteFile replaces path with text by writing a temporary file in the
// same directory and renaming it into place. An existing file keeps its
// permissions.
func WriteFile(path, text string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return NewOperationError("write", path, err).WithContext("create temp file")
	}
	name := tmp.Name()
	defer os.Remove(name)

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return NewOperationError("write", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return NewOperationError("write", path, err).WithContext("chmod")
	}
	if err := tmp.Close(); err != nil {
		return NewOperationError("write", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		return NewOperationError("write", path, err).WithContext("rename")
	}
	return nil
}
