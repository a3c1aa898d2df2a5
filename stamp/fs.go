package stamp

import (
	"io"
	"io/fs"
	"os"
)

// FS is the file access used to process targets.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces the contents of name, creating it if needed.
	WriteFile(name string, data []byte) error
	// CopyFile replaces the contents of dst with those of src.
	CopyFile(src, dst string) error
}

// OSFS is the [FS] of the host operating system. Existing files keep their
// permissions when written; new files are created with mode 0644.
type OSFS struct{}

func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFS) WriteFile(name string, data []byte) error {
	return os.WriteFile(name, data, perm(name))
}

func (OSFS) CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm(dst))
	if err != nil {
		return err
	}

	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)

	return err
}

func perm(name string) fs.FileMode {
	if fi, err := os.Stat(name); err == nil {
		return fi.Mode().Perm()
	}

	return 0o644
}
