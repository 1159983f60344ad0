// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"path/filepath"
	"time"
)

// MultipartKind is the subtype token of a multipart node. Custom subtypes
// can be expressed by converting a raw token, e.g.
// MultipartKind("x-custom").
type MultipartKind string

const (
	// MultipartMixed groups independent sibling bodies, typically a text
	// body plus attachments.
	MultipartMixed MultipartKind = "mixed"

	// MultipartAlternative groups renderings of the same content ordered
	// from least to most preferred. The encoder never reorders them.
	MultipartAlternative MultipartKind = "alternative"

	// MultipartRelated groups a root body with the resources it
	// references by cid: locator, e.g. an HTML body with inline images.
	MultipartRelated MultipartKind = "related"

	// MultipartDigest groups forwarded messages.
	MultipartDigest MultipartKind = "digest"
)

// String satisfies the fmt.Stringer interface for the MultipartKind type.
func (k MultipartKind) String() string {
	return string(k)
}

// Mail is one node of the recursive mail body tree: either a leaf holding
// exactly one Resource or a multipart node holding a subtype and ordered
// children. The same type represents both a complete mail and any nested
// sub-body.
type Mail struct {
	headers  *HeaderMap
	resource *Resource
	subtype  MultipartKind
	parts    []*Mail
}

// NewLeaf returns a new leaf node for the given resource.
func NewLeaf(r *Resource) *Mail {
	return &Mail{headers: NewHeaderMap(), resource: r}
}

// NewMultipart returns a new multipart node with the given subtype and
// children in the given order.
func NewMultipart(kind MultipartKind, parts ...*Mail) *Mail {
	return &Mail{headers: NewHeaderMap(), subtype: kind, parts: parts}
}

// PlainText returns a single leaf mail with a text/plain UTF-8 body.
func PlainText(text string) *Mail {
	return NewLeaf(PlainTextResource(text))
}

// AlternativeBody returns a multipart/alternative mail holding a plain
// text rendering and an HTML rendering of the same content, least
// preferred first.
func AlternativeBody(plain, html string) *Mail {
	return NewMultipart(MultipartAlternative,
		PlainText(plain),
		NewLeaf(NewInlineResource([]byte(html),
			NewMediaType("text/html").WithParam("charset", "utf-8"))))
}

// AttachFile appends a deferred attachment leaf referencing the given
// file to a multipart node. The content is loaded through the Context's
// loader backend during resolution.
func (m *Mail) AttachFile(name string, opts ...ResourceOption) error {
	opts = append([]ResourceOption{WithAttachmentFilename(filepath.Base(name))}, opts...)
	return m.AddPart(NewLeaf(NewDeferredResource(SourceRef{Ref: name}, opts...)))
}

// EmbedFile appends a deferred inline leaf referencing the given file to
// a multipart node, addressable by other parts via a cid: locator using
// the given content identifier.
func (m *Mail) EmbedFile(name, cid string, opts ...ResourceOption) error {
	opts = append([]ResourceOption{WithContentID(cid)}, opts...)
	return m.AddPart(NewLeaf(NewDeferredResource(SourceRef{Ref: name}, opts...)))
}

// IsMultipart returns true if the node is a multipart node.
func (m *Mail) IsMultipart() bool {
	return m.resource == nil
}

// Headers returns the header map of the node.
func (m *Mail) Headers() *HeaderMap {
	return m.headers
}

// Resource returns the resource of a leaf node, or nil for multipart
// nodes.
func (m *Mail) Resource() *Resource {
	return m.resource
}

// Subtype returns the multipart subtype of the node.
func (m *Mail) Subtype() MultipartKind {
	return m.subtype
}

// Parts returns the ordered children of a multipart node.
func (m *Mail) Parts() []*Mail {
	return m.parts
}

// AddPart appends a child to a multipart node. Leaf nodes cannot grow
// children; adding to one returns ErrNotMultipart.
func (m *Mail) AddPart(p *Mail) error {
	if !m.IsMultipart() {
		return ErrNotMultipart
	}
	if p == nil {
		return ErrNilPart
	}
	m.parts = append(m.parts, p)
	return nil
}

// From parses and sets the "From" header field of the mail.
func (m *Mail) From(addr string) error {
	al, err := ParseAddressList(addr)
	if err != nil {
		return err
	}
	m.headers.Set(HeaderFrom, al)
	return nil
}

// To parses and sets the "To" header field of the mail.
func (m *Mail) To(addrs ...string) error {
	return m.setAddrHeader(HeaderTo, addrs...)
}

// Cc parses and sets the "Cc" header field of the mail.
func (m *Mail) Cc(addrs ...string) error {
	return m.setAddrHeader(HeaderCc, addrs...)
}

// Bcc parses and sets the "Bcc" header field of the mail.
func (m *Mail) Bcc(addrs ...string) error {
	return m.setAddrHeader(HeaderBcc, addrs...)
}

// ReplyTo parses and sets the "Reply-To" header field of the mail.
func (m *Mail) ReplyTo(addr string) error {
	return m.setAddrHeader(HeaderReplyTo, addr)
}

// setAddrHeader parses the given addresses and sets them as the given
// address header field.
func (m *Mail) setAddrHeader(h Header, addrs ...string) error {
	al, err := ParseAddressList(addrs...)
	if err != nil {
		return err
	}
	m.headers.Set(h, al)
	return nil
}

// Subject sets the "Subject" header field of the mail.
func (m *Mail) Subject(s string) {
	m.headers.Set(HeaderSubject, Unstructured(s))
}

// SetDate sets the "Date" header field to the given time.
func (m *Mail) SetDate(t time.Time) {
	m.headers.Set(HeaderDate, DateTime(t))
}

// SetMessageID sets the "Message-ID" header field to an identifier
// generated by the given Context.
func (m *Mail) SetMessageID(c *Context) {
	m.headers.Set(HeaderMessageID, IDList{c.GenerateMessageID()})
}

// IsResolved returns true once every resource in the tree holds its
// content bytes. Only fully resolved trees can be encoded.
func (m *Mail) IsResolved() bool {
	resolved := true
	m.eachLeaf(func(leaf *Mail) {
		if leaf.resource == nil || !leaf.resource.IsResolved() {
			resolved = false
		}
	})
	return resolved
}

// eachLeaf visits every leaf node of the tree in deterministic depth
// first pre-order.
func (m *Mail) eachLeaf(fn func(leaf *Mail)) {
	if !m.IsMultipart() {
		fn(m)
		return
	}
	for _, p := range m.parts {
		p.eachLeaf(fn)
	}
}

// walk visits every node of the tree in depth first pre-order, passing
// the slash separated child index path of each node.
func (m *Mail) walk(path string, fn func(path string, node *Mail)) {
	fn(path, m)
	for i, p := range m.parts {
		p.walk(childPath(path, i), fn)
	}
}

// cloneStructure returns a structural copy of the tree with fresh nodes
// and cloned header maps. Resources are shared, they are either immutable
// or replaced wholesale during resolution.
func (m *Mail) cloneStructure() *Mail {
	clone := &Mail{
		headers:  m.headers.Clone(),
		resource: m.resource,
		subtype:  m.subtype,
	}
	if m.parts != nil {
		clone.parts = make([]*Mail, len(m.parts))
		for i, p := range m.parts {
			clone.parts[i] = p.cloneStructure()
		}
	}
	return clone
}
