package template

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"strings"
)

// fsLoader serves templates from an fs.FS. Names are always resolved from
// the root, so "layouts/base.html" means the same thing in every template.
type fsLoader struct {
	fsys fs.FS
}

func (l fsLoader) Abs(_, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l fsLoader) Get(p string) (io.Reader, error) {
	b, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}
