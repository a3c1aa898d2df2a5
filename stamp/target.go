package stamp

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"

	"github.com/ardnew/stampver/script"
)

// ProcessTargets applies each target's action to each of its files, in
// document order. Relative file paths are resolved against baseDir.
//
// One progress line is logged per file before its action runs. Files are
// changed only when update is true. A dry run still reads each file and
// evaluates its update replacements, but write and copyFrom values are not
// evaluated.
//
// For updates, each search expression is compiled in multi-line mode and
// only its first match is replaced. Named capture groups are bound as
// variables while the replacement is interpolated. A search that matches
// nothing is logged as a warning, and a file none of whose searches match is
// not written.
//
// Processing stops at the first error; files already written stay written.
func (r *Run) ProcessTargets(ctx context.Context, baseDir string, update bool) error {
	verb := "checking"
	if update {
		verb = "updating"
	}

	for _, target := range r.root.Get("targets").Elements {
		desc, _ := target.Get("description").Str()
		action := target.Get("action").Members[0]

		for _, file := range target.Get("files").Elements {
			if err := ctx.Err(); err != nil {
				return err
			}

			name, _ := file.Str()
			path := resolve(baseDir, name)

			r.logger.InfoContext(ctx, verb,
				slog.String("file", name),
				slog.String("target", desc),
				slog.String("action", action.Key))

			var err error

			switch action.Key {
			case script.ActionUpdates:
				err = r.updateFile(ctx, path, action.Value, update)
			case script.ActionWrite:
				err = r.writeFile(path, action.Value, update)
			case script.ActionCopyFrom:
				err = r.copyFile(baseDir, path, action.Value, update)
			}

			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Run) updateFile(
	ctx context.Context,
	path string,
	updates *script.Node,
	update bool,
) error {
	content, err := r.fs.ReadFile(path)
	if err != nil {
		return script.ErrIO.Wrap(err).With(slog.String("path", path))
	}

	text := string(content)
	matched := false

	for _, u := range updates.Elements {
		search := u.Get("search")
		expr, _ := search.Str()

		re, err := regexp.Compile("(?m)" + expr)
		if err != nil {
			return script.Errorf(search, "invalid search: %w", err)
		}

		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			r.logger.WarnContext(ctx, "update did not match anything",
				slog.String("search", expr),
				slog.String("path", path))

			continue
		}

		bindings := make(map[string]any)

		for i, group := range re.SubexpNames() {
			if group != "" && loc[2*i] >= 0 {
				bindings[group] = text[loc[2*i]:loc[2*i+1]]
			}
		}

		v, err := r.InterpolateWith(u.Get("replace"), bindings)
		if err != nil {
			return err
		}

		text = text[:loc[0]] + formatValue(v) + text[loc[1]:]
		matched = true
	}

	if !matched {
		r.logger.DebugContext(ctx, "no update matched; file left unchanged",
			slog.String("path", path))

		return nil
	}

	if !update {
		return nil
	}

	if err := r.fs.WriteFile(path, []byte(text)); err != nil {
		return script.ErrIO.Wrap(err).With(slog.String("path", path))
	}

	return nil
}

func (r *Run) writeFile(path string, content *script.Node, update bool) error {
	if !update {
		return nil
	}

	v, err := r.Interpolate(content)
	if err != nil {
		return err
	}

	if err := r.fs.WriteFile(path, []byte(formatValue(v))); err != nil {
		return script.ErrIO.Wrap(err).With(slog.String("path", path))
	}

	return nil
}

func (r *Run) copyFile(baseDir, path string, from *script.Node, update bool) error {
	if !update {
		return nil
	}

	v, err := r.Interpolate(from)
	if err != nil {
		return err
	}

	src := resolve(baseDir, filepath.FromSlash(formatValue(v)))

	if err := r.fs.CopyFile(src, path); err != nil {
		return script.ErrIO.Wrap(err).With(
			slog.String("from", src),
			slog.String("path", path))
	}

	return nil
}
