// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"net/textproto"
	"strings"
)

// Header is a type wrapper for a string and represents the canonical name
// of a mail header field.
type Header string

const (
	// HeaderBcc is the "Blind Carbon Copy" header field.
	HeaderBcc Header = "Bcc"

	// HeaderCc is the "Carbon Copy" header field.
	HeaderCc Header = "Cc"

	// HeaderComments is the "Comments" header field.
	HeaderComments Header = "Comments"

	// HeaderContentDescription is the "Content-Description" header.
	HeaderContentDescription Header = "Content-Description"

	// HeaderContentDisposition is the "Content-Disposition" header (RFC 2183).
	HeaderContentDisposition Header = "Content-Disposition"

	// HeaderContentID is the "Content-ID" header.
	HeaderContentID Header = "Content-ID"

	// HeaderContentTransferEnc is the "Content-Transfer-Encoding" header.
	HeaderContentTransferEnc Header = "Content-Transfer-Encoding"

	// HeaderContentType is the "Content-Type" header.
	HeaderContentType Header = "Content-Type"

	// HeaderDate represents the "Date" field.
	HeaderDate Header = "Date"

	// HeaderFrom is the "From" header field.
	HeaderFrom Header = "From"

	// HeaderInReplyTo represents the "In-Reply-To" field.
	HeaderInReplyTo Header = "In-Reply-To"

	// HeaderMessageID represents the "Message-ID" field for message
	// identification.
	HeaderMessageID Header = "Message-ID"

	// HeaderMIMEVersion represents the "MIME-Version" field as per RFC 2045.
	HeaderMIMEVersion Header = "MIME-Version"

	// HeaderReceived is the "Received" trace header field.
	HeaderReceived Header = "Received"

	// HeaderReferences is the "References" header field.
	HeaderReferences Header = "References"

	// HeaderReplyTo is the "Reply-To" header field.
	HeaderReplyTo Header = "Reply-To"

	// HeaderReturnPath is the "Return-Path" trace header field.
	HeaderReturnPath Header = "Return-Path"

	// HeaderSender is the "Sender" header field.
	HeaderSender Header = "Sender"

	// HeaderSubject is the "Subject" header field.
	HeaderSubject Header = "Subject"

	// HeaderTo is the "Recipient" header field.
	HeaderTo Header = "To"

	// HeaderUserAgent is the "User-Agent" header field.
	HeaderUserAgent Header = "User-Agent"

	// HeaderXMailer is the "X-Mailer" header field.
	HeaderXMailer Header = "X-Mailer"
)

// String satisfies the fmt.Stringer interface for the Header type.
func (h Header) String() string {
	return string(h)
}

// fieldSpec describes the registered properties of a header field: its
// canonical casing, whether it may appear at most once per header map and
// whether it belongs to the trace block the encoder emits first.
type fieldSpec struct {
	name   Header
	maxOne bool
	trace  bool
}

// fieldRegistry is the declarative field table, keyed by the lowercased
// field name. Fields not present here are treated as repeatable,
// non-trace fields with textproto-canonicalized casing.
var fieldRegistry = func() map[string]fieldSpec {
	specs := []fieldSpec{
		{name: HeaderBcc, maxOne: true},
		{name: HeaderCc, maxOne: true},
		{name: HeaderComments},
		{name: HeaderContentDescription, maxOne: true},
		{name: HeaderContentDisposition, maxOne: true},
		{name: HeaderContentID, maxOne: true},
		{name: HeaderContentTransferEnc, maxOne: true},
		{name: HeaderContentType, maxOne: true},
		{name: HeaderDate, maxOne: true},
		{name: HeaderFrom, maxOne: true},
		{name: HeaderInReplyTo, maxOne: true},
		{name: HeaderMessageID, maxOne: true},
		{name: HeaderMIMEVersion, maxOne: true},
		{name: HeaderReceived, trace: true},
		{name: HeaderReferences, maxOne: true},
		{name: HeaderReplyTo, maxOne: true},
		{name: HeaderReturnPath, trace: true},
		{name: HeaderSender, maxOne: true},
		{name: HeaderSubject, maxOne: true},
		{name: HeaderTo, maxOne: true},
		{name: HeaderUserAgent, maxOne: true},
		{name: HeaderXMailer, maxOne: true},
	}
	reg := make(map[string]fieldSpec, len(specs))
	for _, s := range specs {
		reg[strings.ToLower(string(s.name))] = s
	}
	return reg
}()

// CanonicalHeader returns the canonical casing for a header field name.
// Registered fields keep the casing fixed at registration time, unknown
// fields fall back to MIME canonicalization.
func CanonicalHeader(name string) Header {
	if s, ok := fieldRegistry[strings.ToLower(name)]; ok {
		return s.name
	}
	return Header(textproto.CanonicalMIMEHeaderKey(name))
}

// lookupField returns the registered field spec for a header name. The
// zero spec is returned for unregistered fields.
func lookupField(name Header) fieldSpec {
	return fieldRegistry[strings.ToLower(string(name))]
}

// EncodableBody is the contract every typed header body satisfies: it can
// check its own validity and produce its textual representation for a
// given target mail type. The returned value is the unfolded field body,
// folding into continuation lines is the encoder's job.
type EncodableBody interface {
	// Validate reports whether the body can be encoded at all, e.g. an
	// empty value where one is required.
	Validate() error

	// EncodeBody returns the field body text for the given mail type.
	// Under a non-internationalized mail type the result must be pure
	// ASCII, with non-ASCII text escaped as encoded words.
	EncodeBody(mt MailType) (string, error)
}

// HeaderField is a single name/typed-body pair of a HeaderMap.
type HeaderField struct {
	Name Header
	Body EncodableBody
}

// HeaderMap is an ordered collection of header fields. Insertion order is
// preserved and stays mutable until the mail is finalized; multiplicity
// rules are checked by the explicit validation step, not at insertion.
type HeaderMap struct {
	fields []HeaderField
}

// NewHeaderMap returns a new empty HeaderMap.
func NewHeaderMap() *HeaderMap {
	return &HeaderMap{}
}

// Add appends a field to the map, keeping any existing fields of the
// same name.
func (h *HeaderMap) Add(name Header, body EncodableBody) {
	h.fields = append(h.fields, HeaderField{Name: CanonicalHeader(string(name)), Body: body})
}

// Set replaces all fields of the given name with a single field, keeping
// the position of the first occurrence. If the field is not present yet
// it is appended.
func (h *HeaderMap) Set(name Header, body EncodableBody) {
	name = CanonicalHeader(string(name))
	out := h.fields[:0]
	replaced := false
	for _, f := range h.fields {
		if f.Name == name {
			if !replaced {
				out = append(out, HeaderField{Name: name, Body: body})
				replaced = true
			}
			continue
		}
		out = append(out, f)
	}
	h.fields = out
	if !replaced {
		h.fields = append(h.fields, HeaderField{Name: name, Body: body})
	}
}

// Get returns the body of the first field with the given name.
func (h *HeaderMap) Get(name Header) (EncodableBody, bool) {
	name = CanonicalHeader(string(name))
	for _, f := range h.fields {
		if f.Name == name {
			return f.Body, true
		}
	}
	return nil, false
}

// GetAll returns the bodies of all fields with the given name in
// insertion order.
func (h *HeaderMap) GetAll(name Header) []EncodableBody {
	name = CanonicalHeader(string(name))
	var bodies []EncodableBody
	for _, f := range h.fields {
		if f.Name == name {
			bodies = append(bodies, f.Body)
		}
	}
	return bodies
}

// Contains returns true if at least one field with the given name is set.
func (h *HeaderMap) Contains(name Header) bool {
	_, ok := h.Get(name)
	return ok
}

// Remove deletes all fields with the given name and returns how many
// were removed.
func (h *HeaderMap) Remove(name Header) int {
	name = CanonicalHeader(string(name))
	out := h.fields[:0]
	removed := 0
	for _, f := range h.fields {
		if f.Name == name {
			removed++
			continue
		}
		out = append(out, f)
	}
	h.fields = out
	return removed
}

// Len returns the number of fields in the map.
func (h *HeaderMap) Len() int {
	return len(h.fields)
}

// Fields returns a copy of the field sequence in insertion order.
func (h *HeaderMap) Fields() []HeaderField {
	fields := make([]HeaderField, len(h.fields))
	copy(fields, h.fields)
	return fields
}

// Clone returns a shallow copy of the map. Field bodies are shared, the
// field sequence is not.
func (h *HeaderMap) Clone() *HeaderMap {
	return &HeaderMap{fields: h.Fields()}
}

// orderedForEncoding returns the field sequence in the order the encoder
// must emit it: trace fields first as one contiguous block in their
// relative insertion order, then all remaining fields in insertion order.
func (h *HeaderMap) orderedForEncoding() []HeaderField {
	ordered := make([]HeaderField, 0, len(h.fields))
	for _, f := range h.fields {
		if lookupField(f.Name).trace {
			ordered = append(ordered, f)
		}
	}
	for _, f := range h.fields {
		if !lookupField(f.Name).trace {
			ordered = append(ordered, f)
		}
	}
	return ordered
}

// checkMultiplicity returns one violation per field that is registered as
// "at most one" but appears more than once.
func (h *HeaderMap) checkMultiplicity() []Violation {
	var violations []Violation
	seen := make(map[Header]int, len(h.fields))
	for _, f := range h.fields {
		seen[f.Name]++
	}
	for _, f := range h.fields {
		if seen[f.Name] > 1 && lookupField(f.Name).maxOne {
			violations = append(violations, Violation{
				Severity: SeverityError,
				Code:     ViolationDuplicateField,
				Message:  "header field " + string(f.Name) + " must not appear more than once",
			})
			seen[f.Name] = 0
		}
	}
	return violations
}
