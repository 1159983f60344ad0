// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"bytes"
	"io"
	"strings"
	"time"

	mblog "github.com/mimebuild/mimebuild/log"
)

// EncodingBuffer is the transient output state of exactly one encode
// invocation: the negotiated mail type, the stack of active multipart
// boundaries, the output sink with its error latch and the optional
// trace logger. It is never shared across concurrent encodes.
type EncodingBuffer struct {
	mailType      MailType
	w             io.Writer
	n             int64
	err           error
	boundaries    []string
	boundaryCount int
	logger        mblog.Logger
}

// Write implements the io.Writer interface for EncodingBuffer. Once a
// write failed, all further writes are rejected with the first error.
func (eb *EncodingBuffer) Write(p []byte) (int, error) {
	if eb.err != nil {
		return 0, encodeErr(ErrWriteContent, "", eb.err)
	}
	var n int
	n, eb.err = eb.w.Write(p)
	eb.n += int64(n)
	return n, eb.err
}

// Encode serializes a fully resolved mail tree into the given writer and
// returns the negotiated mail type (the transport layer needs it to pick
// its protocol extensions) along with the number of bytes written.
//
// Encoding is strictly synchronous and deterministic: all I/O happened
// during resolution, the single depth-first pass only transforms bytes.
// Any failure is fatal for the whole attempt, nothing partial is
// returned as a valid result.
func (m *Mail) Encode(mctx *Context, w io.Writer) (MailType, int64, error) {
	if !m.IsResolved() {
		return 0, 0, ErrUnresolvedResource
	}
	mt := negotiateMailType(m, mctx.SuggestMailType())
	eb := &EncodingBuffer{mailType: mt, w: w, logger: mctx.Logger()}
	eb.tracef("encoding mail as %s", mt)
	rendered, err := eb.renderNode(m, mctx, "/", true)
	if err != nil {
		return mt, 0, err
	}
	if _, err := eb.Write(rendered); err != nil {
		return mt, eb.n, encodeErr(ErrWriteContent, "/", err)
	}
	return mt, eb.n, nil
}

// EncodeToBytes is a wrapper around Encode that returns the encoded mail
// as a byte slice.
func (m *Mail) EncodeToBytes(mctx *Context) ([]byte, MailType, error) {
	var buf bytes.Buffer
	mt, _, err := m.Encode(mctx, &buf)
	if err != nil {
		return nil, mt, err
	}
	return buf.Bytes(), mt, nil
}

// negotiateMailType decides the mail type for the whole output once at
// the root. The Context's hint is the floor; header bodies that cannot
// be escaped under ASCII escalate to internationalized and resources
// pinned to an identity encoding with 8-bit payloads escalate to 8-bit.
// A single mail type applies to the entire output, downgrading mid-tree
// is not possible.
func negotiateMailType(m *Mail, hint MailType) MailType {
	mt := hint
	m.walk("/", func(_ string, node *Mail) {
		for _, f := range node.headers.Fields() {
			if req, ok := f.Body.(internationalizedRequirer); ok && req.RequiresInternationalized() {
				mt = mt.escalate(TypeInternationalized)
			}
		}
	})
	m.eachLeaf(func(leaf *Mail) {
		res := leaf.resource
		if res == nil || !res.IsResolved() {
			return
		}
		identityPinned := res.encoding == Encoding7Bit || res.encoding == Encoding8Bit
		if identityPinned && scanPayload(res.Data()).has8bit {
			mt = mt.escalate(Type8Bit)
		}
	})
	return mt
}

// renderNode renders one tree node including all its descendants into a
// byte slice. Multipart children are rendered before their parent's
// boundary is generated, so the collision scan can run against the
// actual encoded bytes.
func (eb *EncodingBuffer) renderNode(node *Mail, mctx *Context, path string, top bool) ([]byte, error) {
	if node.IsMultipart() {
		return eb.renderMultipart(node, mctx, path, top)
	}
	return eb.renderLeaf(node, mctx, path, top)
}

// renderMultipart renders a multipart node: children first, then a
// collision checked boundary, then headers, blank line and the delimited
// child sections.
func (eb *EncodingBuffer) renderMultipart(node *Mail, mctx *Context, path string, top bool) ([]byte, error) {
	sections := make([][]byte, len(node.parts))
	for i, part := range node.parts {
		section, err := eb.renderNode(part, mctx, childPath(path, i), false)
		if err != nil {
			return nil, err
		}
		sections[i] = section
	}

	boundary, err := generateBoundary(eb.boundaryCount, sections)
	if err != nil {
		if encErr, ok := err.(*EncodeError); ok && encErr.Place == "" {
			encErr.Place = path
		}
		return nil, err
	}
	eb.boundaryCount++
	eb.boundaries = append(eb.boundaries, boundary)
	defer func() {
		eb.boundaries = eb.boundaries[:len(eb.boundaries)-1]
	}()
	eb.tracef("multipart/%s node %s uses boundary %q", node.subtype, path, boundary)

	headers := node.headers.Clone()
	ct := NewMediaType("multipart/" + string(node.subtype))
	if body, ok := headers.Get(HeaderContentType); ok {
		if mediaType, isMediaType := body.(MediaType); isMediaType {
			ct = mediaType
		}
	}
	// The boundary parameter is always ours, any existing one is replaced.
	headers.Set(HeaderContentType, ct.WithParam("boundary", boundary))
	if top {
		synthesizeTopHeaders(headers, mctx)
	}

	var buf bytes.Buffer
	if err := eb.writeHeaders(&buf, headers, path); err != nil {
		return nil, err
	}
	buf.WriteString(lineBreak)

	for _, section := range sections {
		buf.WriteString("--" + boundary + lineBreak)
		buf.Write(section)
		if !bytes.HasSuffix(section, newlineBytes) {
			buf.WriteString(lineBreak)
		}
	}
	buf.WriteString("--" + boundary + "--" + lineBreak)
	return buf.Bytes(), nil
}

// renderLeaf renders a leaf node: synthesized headers, blank line and the
// transfer-encoded resource payload.
func (eb *EncodingBuffer) renderLeaf(node *Mail, mctx *Context, path string, top bool) ([]byte, error) {
	res := node.resource

	enc := res.encoding
	if enc == EncodingUnset {
		enc = selectEncoding(res.Data(), eb.mailType)
	} else if err := encodingPermitted(enc, res.Data(), eb.mailType); err != nil {
		return nil, encodeErr(ErrBodyEncode, path, err)
	}
	eb.tracef("leaf %s encodes %s as %s", path, res.MediaType().ContentType, enc)

	headers := node.headers.Clone()
	synthesizeLeafHeaders(headers, res, enc, mctx, top)
	if top {
		synthesizeTopHeaders(headers, mctx)
	}

	var buf bytes.Buffer
	if err := eb.writeHeaders(&buf, headers, path); err != nil {
		return nil, err
	}
	buf.WriteString(lineBreak)

	if err := transferEncode(&buf, res.Data(), enc); err != nil {
		return nil, encodeErr(ErrBodyEncode, path, err)
	}
	body := buf.Bytes()
	if !bytes.HasSuffix(body, newlineBytes) {
		buf.WriteString(lineBreak)
	}
	return buf.Bytes(), nil
}

// synthesizeLeafHeaders appends the mandatory leaf headers the caller did
// not set explicitly. Caller-set fields are never overridden.
func synthesizeLeafHeaders(headers *HeaderMap, res *Resource, enc Encoding, mctx *Context, top bool) {
	if !headers.Contains(HeaderContentType) {
		ct := res.MediaType()
		if name := res.Filename(); name != "" {
			ct = ct.WithParam("name", name)
		}
		headers.Add(HeaderContentType, ct)
	}
	if !headers.Contains(HeaderContentTransferEnc) {
		headers.Add(HeaderContentTransferEnc, Raw(enc.String()))
	}

	if !headers.Contains(HeaderContentDisposition) {
		if res.Disposition() == DispositionAttachment || res.Filename() != "" || res.FileMeta() != nil {
			d := DispositionBody{Kind: res.Disposition(), Filename: res.Filename()}
			if meta := res.FileMeta(); meta != nil {
				// Backfill empty metadata fields from the resolved resource.
				if d.Filename == "" {
					d.Filename = meta.Name
				}
				d.Size = meta.Size
				d.ModTime = meta.ModTime
			}
			headers.Add(HeaderContentDisposition, d)
		}
	}

	if top {
		// The top-level entity is identified by its Message-ID.
		headers.Remove(HeaderContentID)
		return
	}
	if !headers.Contains(HeaderContentID) {
		cid := res.ContentID()
		if cid == "" {
			cid = mctx.GenerateContentID()
		}
		headers.Add(HeaderContentID, IDList{cid})
	}
}

// synthesizeTopHeaders appends the mandatory top-level headers the caller
// did not set explicitly.
func synthesizeTopHeaders(headers *HeaderMap, mctx *Context) {
	if !headers.Contains(HeaderDate) {
		headers.Add(HeaderDate, DateTime(time.Now()))
	}
	if !headers.Contains(HeaderMessageID) {
		headers.Add(HeaderMessageID, IDList{mctx.GenerateMessageID()})
	}
	if !headers.Contains(HeaderMIMEVersion) {
		headers.Add(HeaderMIMEVersion, Raw("1.0"))
	}
}

// writeHeaders emits all fields of a header map in encoding order: trace
// fields first as one contiguous block in insertion order, then all
// remaining fields. Every field is validated, encoded for the negotiated
// mail type and folded. A field that fails aborts the whole encode, no
// partial header is emitted.
func (eb *EncodingBuffer) writeHeaders(buf *bytes.Buffer, headers *HeaderMap, path string) error {
	for _, f := range headers.orderedForEncoding() {
		if err := f.Body.Validate(); err != nil {
			return encodeErr(ErrHeaderEncode, string(f.Name), err)
		}
		value, err := f.Body.EncodeBody(eb.mailType)
		if err != nil {
			return encodeErr(ErrHeaderEncode, string(f.Name), err)
		}
		lines, err := foldHeader(f.Name, value)
		if err != nil {
			return err
		}
		buf.WriteString(strings.Join(lines, lineBreak))
		buf.WriteString(lineBreak)
	}
	eb.tracef("wrote %d header fields for node %s", headers.Len(), path)
	return nil
}

// tracef sends a debug message to the attached trace logger, if any.
func (eb *EncodingBuffer) tracef(format string, args ...interface{}) {
	if eb.logger == nil {
		return
	}
	eb.logger.Debugf(mblog.Log{
		Phase:    mblog.PhaseEncode,
		Format:   format,
		Messages: args,
	})
}
