package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Output is the destination for exported content. It is a closed union of
// two variants: [Stream] writes to an already-open writer, [File] creates
// or truncates a file at a path resolved against a working directory.
type Output interface {
	Write(content string) error
}

type streamOutput struct {
	w io.Writer
}

// Stream returns an Output that writes to w.
func Stream(w io.Writer) Output {
	return streamOutput{w: w}
}

func (o streamOutput) Write(content string) error {
	_, err := io.WriteString(o.w, content)
	return err
}

type fileOutput struct {
	dir  string
	path string
}

// File returns an Output that writes to path. A relative path is resolved
// against dir.
func File(dir, path string) Output {
	return fileOutput{dir: dir, path: path}
}

func (o fileOutput) Write(content string) (err error) {
	path := o.path
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.dir, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.WriteString(f, content)
	return err
}
