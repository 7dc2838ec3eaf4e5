// Package bootstrap loads the optional definition sources layered on top of
// the interpreter's built-in vocabulary: the version-tagged update file and
// the user's own definitions file.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/vk/gmicli/internal/ctxlog"
	"github.com/vk/gmicli/internal/interp"
)

// Origin tells the two definition sources apart.
type Origin string

const (
	OriginUpdate Origin = "update"
	OriginUser   Origin = "user"
)

// Source is one optional layer of command definitions. An empty Content
// means the layer is absent. Invalid is set when the layer was found but the
// interpreter rejected it; its content is then discarded.
type Source struct {
	Origin  Origin
	Path    string
	Content []byte
	Invalid bool
}

// Present reports whether the source holds definitions.
func (s Source) Present() bool {
	return len(s.Content) > 0
}

// Sources is the result of a bootstrap.
type Sources struct {
	Update Source
	User   Source
}

// Registrar accepts definition sources.
type Registrar interface {
	AddCommands(src []byte, filename string) error
}

// Reader reads definition files. Load may convert structured formats, while
// LoadRaw returns bytes untouched.
type Reader interface {
	Load(ctx context.Context, path string) ([]byte, error)
	LoadRaw(ctx context.Context, path string) ([]byte, error)
}

// Load reads both sources and registers them with reg. It never fails: a
// missing or unreadable file yields an empty source, and a source reg rejects
// is discarded and flagged Invalid.
//
// The update file must also start with the definition marker. When it does
// not, its content is dropped without flagging it, though the commands it
// defined stay registered.
func Load(ctx context.Context, reg Registrar, reader Reader, updatePath, userPath string) Sources {
	return Sources{
		Update: loadUpdate(ctx, reg, reader, updatePath),
		User:   loadUser(ctx, reg, reader, userPath),
	}
}

func loadUpdate(ctx context.Context, reg Registrar, reader Reader, path string) Source {
	logger := ctxlog.FromContext(ctx).With("origin", OriginUpdate, "path", path)
	src := Source{Origin: OriginUpdate, Path: path}

	data, err := reader.Load(ctx, path)
	if err != nil {
		logger.Debug("Update definitions not loaded.", "error", err)
		return src
	}
	src.Content = append(data, interp.Terminator)

	if err := register(reg, src.Content, ""); err != nil {
		logger.Debug("Update definitions rejected by the interpreter.", "error", err)
		src.Content, src.Invalid = nil, true
		return src
	}

	if !interp.HasMarker(src.Content) {
		logger.Debug("Update definitions lack the leading marker, discarding them.")
		src.Content = nil
		return src
	}
	logger.Debug("Update definitions loaded.", "bytes", len(src.Content))
	return src
}

func loadUser(ctx context.Context, reg Registrar, reader Reader, path string) Source {
	logger := ctxlog.FromContext(ctx).With("origin", OriginUser, "path", path)
	src := Source{Origin: OriginUser, Path: path}

	data, err := reader.LoadRaw(ctx, path)
	if err != nil {
		logger.Debug("User definitions not loaded.", "error", err)
		return src
	}
	src.Content = append(data, interp.Terminator)

	if err := register(reg, src.Content, path); err != nil {
		logger.Debug("User definitions rejected by the interpreter.", "error", err)
		src.Content, src.Invalid = nil, true
		return src
	}
	logger.Debug("User definitions loaded.", "bytes", len(src.Content))
	return src
}

// register calls reg.AddCommands and turns a panic into an error.
func register(reg Registrar, content []byte, filename string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while registering definitions: %v", r)
		}
	}()
	return reg.AddCommands(content, filename)
}
