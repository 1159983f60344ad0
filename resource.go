// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"
)

// FileMeta carries the optional file metadata of a resource. It feeds the
// filename, size and modification-date parameters of the synthesized
// Content-Disposition header.
type FileMeta struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// SourceRef is an abstract reference to externally addressed content. The
// core is agnostic to the reference scheme; interpreting Ref is entirely
// the loader backend's business.
type SourceRef struct {
	// Ref is the opaque content locator, e.g. a filesystem path or URL.
	Ref string

	// MediaType optionally declares the media type ahead of loading. The
	// loader may confirm or override it.
	MediaType string
}

// ResourceOption is a function type used to modify properties of a
// Resource at construction time.
type ResourceOption func(*Resource)

// Resource represents the content of one MIME body: either inline bytes
// or a deferred source reference, plus disposition metadata and an
// optional content identifier. Once resolved a Resource is immutable.
type Resource struct {
	data        []byte
	source      *SourceRef
	mediaType   MediaType
	disposition DispositionKind
	filename    string
	contentID   string
	meta        *FileMeta
	encoding    Encoding
}

// NewInlineResource returns a resolved Resource holding the given bytes
// and media type.
func NewInlineResource(data []byte, mediaType MediaType, opts ...ResourceOption) *Resource {
	r := &Resource{
		data:        data,
		mediaType:   mediaType,
		disposition: DispositionInline,
	}
	applyResourceOptions(r, opts)
	return r
}

// NewDeferredResource returns an unresolved Resource referencing external
// content. Its bytes are loaded during the resolution phase.
func NewDeferredResource(ref SourceRef, opts ...ResourceOption) *Resource {
	r := &Resource{
		source:      &ref,
		mediaType:   NewMediaType(ref.MediaType),
		disposition: DispositionInline,
	}
	applyResourceOptions(r, opts)
	return r
}

// PlainTextResource returns a resolved text/plain UTF-8 Resource.
func PlainTextResource(text string) *Resource {
	return NewInlineResource([]byte(text),
		NewMediaType("text/plain").WithParam("charset", "utf-8"))
}

// TextResource returns a resolved text Resource. Payloads declared in a
// charset other than UTF-8 or US-ASCII are transcoded to UTF-8, so the
// encoder only ever deals with one body charset.
func TextResource(text []byte, mediaType, charset string, opts ...ResourceOption) (*Resource, error) {
	cs := strings.ToLower(charset)
	if cs != "" && cs != "utf-8" && cs != "us-ascii" {
		enc, err := ianaindex.IANA.Encoding(charset)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unknown charset %q", charset)
		}
		decoded, err := enc.NewDecoder().Bytes(text)
		if err != nil {
			return nil, fmt.Errorf("transcoding %q payload to UTF-8 failed: %w", charset, err)
		}
		text = decoded
	}
	return NewInlineResource(text,
		NewMediaType(mediaType).WithParam("charset", "utf-8"), opts...), nil
}

// WithDisposition overrides the default inline disposition.
func WithDisposition(kind DispositionKind) ResourceOption {
	return func(r *Resource) {
		r.disposition = kind
	}
}

// WithAttachmentFilename marks the resource as attachment and sets the
// filename suggested to the receiving client.
func WithAttachmentFilename(name string) ResourceOption {
	return func(r *Resource) {
		r.disposition = DispositionAttachment
		r.filename = name
	}
}

// WithContentID sets the content identifier other parts may reference the
// resource by via a cid: locator.
func WithContentID(cid string) ResourceOption {
	return func(r *Resource) {
		r.contentID = cid
	}
}

// WithFileMeta attaches file metadata to the resource.
func WithFileMeta(meta FileMeta) ResourceOption {
	return func(r *Resource) {
		m := meta
		r.meta = &m
	}
}

// WithResourceEncoding pins the content-transfer-encoding instead of
// letting the encoder select one. Pinning an identity encoding for an
// 8-bit payload forces the whole mail to negotiate an 8-bit capable mail
// type.
func WithResourceEncoding(enc Encoding) ResourceOption {
	return func(r *Resource) {
		r.encoding = enc
	}
}

// applyResourceOptions applies the optionally provided ResourceOption
// functions, skipping nil entries.
func applyResourceOptions(r *Resource, opts []ResourceOption) {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
}

// IsResolved returns true once the resource holds its content bytes.
func (r *Resource) IsResolved() bool {
	return r.source == nil
}

// Data returns the resolved content bytes. It returns nil for deferred
// resources.
func (r *Resource) Data() []byte {
	return r.data
}

// MediaType returns the media type of the resource.
func (r *Resource) MediaType() MediaType {
	return r.mediaType
}

// Disposition returns the disposition kind of the resource.
func (r *Resource) Disposition() DispositionKind {
	return r.disposition
}

// Filename returns the suggested attachment filename, falling back to the
// file metadata name.
func (r *Resource) Filename() string {
	if r.filename != "" {
		return r.filename
	}
	if r.meta != nil {
		return r.meta.Name
	}
	return ""
}

// ContentID returns the content identifier of the resource, if set.
func (r *Resource) ContentID() string {
	return r.contentID
}

// FileMeta returns the file metadata of the resource, if any.
func (r *Resource) FileMeta() *FileMeta {
	return r.meta
}

// Source returns the source reference of a deferred resource, or nil for
// resolved resources.
func (r *Resource) Source() *SourceRef {
	return r.source
}

// resolveWith returns a new resolved Resource carrying the loaded payload
// while keeping all caller-set metadata. The deferred original is left
// untouched.
func (r *Resource) resolveWith(p Payload) *Resource {
	resolved := *r
	resolved.source = nil
	resolved.data = p.Data
	if p.MediaType != "" {
		resolved.mediaType = NewMediaType(p.MediaType)
	}
	if r.source != nil && r.source.MediaType != "" {
		// A caller-declared media type wins over the loader's guess.
		resolved.mediaType = NewMediaType(r.source.MediaType)
	}
	if resolved.meta == nil && p.Meta != nil {
		m := *p.Meta
		resolved.meta = &m
	}
	return &resolved
}
