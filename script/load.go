package script

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/stampver/log"
	"github.com/ardnew/stampver/pkg"
)

// Names lists the file names [Find] looks for in each directory, in order of
// preference.
var Names = []string{pkg.ScriptName, "version.yaml", "version.yml", "version.hcl"}

// Script is a loaded version script.
type Script struct {
	Root   *Node
	Path   string // absolute
	Format Format

	src []byte
}

// Dir returns the directory containing the script. Target file paths are
// relative to it.
func (s *Script) Dir() string { return filepath.Dir(s.Path) }

// Save encodes doc in the script's format and overwrites the script file
// with it, keeping the file's permissions.
//
// HCL scripts are edited in place: only the members of doc that differ
// from the loaded script are rewritten, and comments are kept.
func (s *Script) Save(ctx context.Context, doc any, opts ...Option) error {
	l := makeLoader(opts...)

	b, err := s.encode(doc)
	if err != nil {
		return err
	}

	perm := fs.FileMode(0o644)
	if fi, err := os.Stat(s.Path); err == nil {
		perm = fi.Mode().Perm()
	}

	if err := os.WriteFile(s.Path, b, perm); err != nil {
		return ErrIO.Wrap(err).With(slog.String("path", s.Path))
	}

	l.logger.DebugContext(ctx, "script saved",
		slog.String("path", s.Path),
		slog.String("format", s.Format.String()))

	return nil
}

func (s *Script) encode(doc any) ([]byte, error) {
	if s.Format == FormatHCL && s.src != nil {
		return rewriteHCL(s.Path, s.src, Simplify(s.Root), doc)
	}

	var sb strings.Builder

	if err := Encode(&sb, doc, s.Format, DefaultIndent); err != nil {
		return nil, err
	}

	return []byte(sb.String()), nil
}

// Option configures [Load], [Find], and [Script.Save].
type Option func(loader) loader

type loader struct {
	dir    string
	logger log.Logger
}

func makeLoader(opts ...Option) loader {
	var l loader

	for _, opt := range opts {
		l = opt(l)
	}

	return l
}

// WithDir sets the directory that relative paths and the script search
// start from. The default is the working directory.
func WithDir(dir string) Option {
	return func(l loader) loader {
		l.dir = dir

		return l
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(l loader) loader {
		l.logger = logger

		return l
	}
}

func (l loader) base() (string, error) {
	if l.dir != "" {
		return filepath.Abs(l.dir)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", ErrIO.Wrap(err)
	}

	return dir, nil
}

// Find searches dir and each of its parents for a file named in [Names],
// returning the absolute path of the first one found.
//
// Find returns [ErrNotFound] when the search reaches the filesystem root
// without a match, and [ErrIO] when a candidate cannot be examined.
func Find(dir string) (string, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return "", ErrIO.Wrap(err)
	}

	for dir := start; ; {
		for _, name := range Names {
			path := filepath.Join(dir, name)

			fi, err := os.Stat(path)
			if err == nil && !fi.IsDir() {
				return path, nil
			}

			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", ErrIO.Wrap(err).With(slog.String("path", path))
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return "", ErrNotFound.
		Wrap(fmt.Errorf("no %s in %s or any parent directory", Names[0], start)).
		With(slog.String("dir", start))
}

// Load reads and parses the script at path. When path is empty, the script
// is located with [Find].
//
// An explicit path that does not exist is [ErrNotFound]; any other failure
// to read it is [ErrIO].
func Load(ctx context.Context, path string, opts ...Option) (*Script, error) {
	l := makeLoader(opts...)

	base, err := l.base()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path, err = Find(base)
		if err != nil {
			return nil, err
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	path = filepath.Clean(path)

	src, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound.Wrap(err).With(slog.String("path", path))
		}

		return nil, ErrIO.Wrap(err).With(slog.String("path", path))
	}

	format := FormatOf(path)

	root, err := Parse(path, src, format)
	if err != nil {
		return nil, err
	}

	root.SetFile(path)

	l.logger.DebugContext(ctx, "script loaded",
		slog.String("path", path),
		slog.String("format", format.String()))

	return &Script{Root: root, Path: path, Format: format, src: src}, nil
}

// Parse parses src in the given format, positioning nodes in file.
func Parse(file string, src []byte, format Format) (*Node, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(file, src)
	case FormatHCL:
		return ParseHCL(file, src)
	}

	// JSON is a subset of JSON5.
	return ParseJSON5(file, src)
}
