// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// Payload is the result of loading a source reference: the content bytes,
// the media type the loader determined and optional file metadata.
type Payload struct {
	Data      []byte
	MediaType string
	Meta      *FileMeta
}

// Loader is the resource loading backend the resolution phase fans out
// over. Implementations must settle every load to exactly one success or
// failure and should honor cancellation through the context. Timeouts and
// retries are the loader's own business.
type Loader interface {
	Load(ctx context.Context, ref SourceRef) (Payload, error)
}

// LoaderFunc adapts a plain function to the Loader interface.
type LoaderFunc func(ctx context.Context, ref SourceRef) (Payload, error)

// Load implements the Loader interface for LoaderFunc.
func (f LoaderFunc) Load(ctx context.Context, ref SourceRef) (Payload, error) {
	return f(ctx, ref)
}

// FSLoader loads source references as paths in the local filesystem. A
// non-empty Root restricts and anchors all references below a base
// directory.
type FSLoader struct {
	Root string
}

// Load implements the Loader interface for FSLoader. The media type is
// guessed from the file extension with application/octet-stream as
// fallback.
func (l *FSLoader) Load(ctx context.Context, ref SourceRef) (Payload, error) {
	if err := ctx.Err(); err != nil {
		return Payload{}, err
	}
	name := ref.Ref
	if l.Root != "" {
		name = filepath.Join(l.Root, filepath.Clean("/"+name))
	}
	info, err := os.Stat(name)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to stat resource file: %w", err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read resource file: %w", err)
	}
	mt := ref.MediaType
	if mt == "" {
		mt = mime.TypeByExtension(filepath.Ext(name))
	}
	if mt == "" {
		mt = "application/octet-stream"
	}
	return Payload{
		Data:      data,
		MediaType: mt,
		Meta: &FileMeta{
			Name:    filepath.Base(name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		},
	}, nil
}
