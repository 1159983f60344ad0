// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyHeaderValue is returned when a header body that requires a
	// value is encoded while being empty
	ErrEmptyHeaderValue = errors.New("header field requires a non-empty value")

	// ErrNonASCIIHeaderValue is returned when a header body contains
	// non-ASCII text that cannot be escaped for the target mail type
	ErrNonASCIIHeaderValue = errors.New("header value requires an internationalized mail type")
)

// internationalizedRequirer is implemented by header bodies that may carry
// text which no encoded-word escape can represent under an ASCII mail
// type, e.g. mailboxes with non-ASCII address specs. The negotiation step
// uses it to escalate the mail type before encoding starts.
type internationalizedRequirer interface {
	RequiresInternationalized() bool
}

// Unstructured is an EncodableBody for free-form header text such as
// Subject or Comments. Non-ASCII text is escaped with RFC 2047 encoded
// words when the target mail type forbids raw UTF-8.
type Unstructured string

// Validate implements the EncodableBody interface for Unstructured.
func (u Unstructured) Validate() error {
	if strings.TrimSpace(string(u)) == "" {
		return ErrEmptyHeaderValue
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for Unstructured.
func (u Unstructured) EncodeBody(mt MailType) (string, error) {
	s := string(u)
	if mt.IsInternationalized() || isASCII(s) {
		return s, nil
	}
	return wordEncoderFor(s).Encode("utf-8", s), nil
}

// AddressList is an EncodableBody holding one or more mailboxes for
// address header fields like From, To or Cc.
type AddressList []*mail.Address

// ParseAddressList builds an AddressList from RFC 5322 address strings.
func ParseAddressList(addrs ...string) (AddressList, error) {
	var al AddressList
	for _, a := range addrs {
		addr, err := mail.ParseAddress(a)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mail address %q: %w", a, err)
		}
		al = append(al, addr)
	}
	return al, nil
}

// Validate implements the EncodableBody interface for AddressList.
func (a AddressList) Validate() error {
	if len(a) == 0 {
		return ErrEmptyHeaderValue
	}
	for _, addr := range a {
		if addr == nil || addr.Address == "" {
			return ErrEmptyHeaderValue
		}
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for AddressList.
func (a AddressList) EncodeBody(mt MailType) (string, error) {
	var parts []string
	for _, addr := range a {
		if !mt.IsInternationalized() && !isASCII(addr.Address) {
			return "", fmt.Errorf("%w: address %q", ErrNonASCIIHeaderValue, addr.Address)
		}
		if mt.IsInternationalized() {
			if addr.Name != "" {
				parts = append(parts, fmt.Sprintf("%s <%s>", quotePhrase(addr.Name), addr.Address))
				continue
			}
			parts = append(parts, fmt.Sprintf("<%s>", addr.Address))
			continue
		}
		// Address.String escapes non-ASCII display names with encoded words.
		parts = append(parts, addr.String())
	}
	return strings.Join(parts, ", "), nil
}

// RequiresInternationalized implements the internationalizedRequirer
// interface for AddressList.
func (a AddressList) RequiresInternationalized() bool {
	for _, addr := range a {
		if addr != nil && !isASCII(addr.Address) {
			return true
		}
	}
	return false
}

// IDList is an EncodableBody for identifier header fields such as
// Message-ID, In-Reply-To or References. Identifiers are stored without
// angle brackets.
type IDList []string

// Validate implements the EncodableBody interface for IDList.
func (l IDList) Validate() error {
	if len(l) == 0 {
		return ErrEmptyHeaderValue
	}
	for _, id := range l {
		if id == "" {
			return ErrEmptyHeaderValue
		}
		if strings.ContainsAny(id, "<> \t\r\n") {
			return fmt.Errorf("invalid identifier %q", id)
		}
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for IDList.
func (l IDList) EncodeBody(mt MailType) (string, error) {
	var parts []string
	for _, id := range l {
		if !mt.IsInternationalized() && !isASCII(id) {
			return "", fmt.Errorf("%w: identifier %q", ErrNonASCIIHeaderValue, id)
		}
		parts = append(parts, "<"+id+">")
	}
	return strings.Join(parts, " "), nil
}

// RequiresInternationalized implements the internationalizedRequirer
// interface for IDList.
func (l IDList) RequiresInternationalized() bool {
	for _, id := range l {
		if !isASCII(id) {
			return true
		}
	}
	return false
}

// DateTime is an EncodableBody for the Date header field.
type DateTime time.Time

// Validate implements the EncodableBody interface for DateTime.
func (d DateTime) Validate() error {
	if time.Time(d).IsZero() {
		return ErrEmptyHeaderValue
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for DateTime.
func (d DateTime) EncodeBody(_ MailType) (string, error) {
	return time.Time(d).Format(time.RFC1123Z), nil
}

// MediaType is an EncodableBody for the Content-Type header field,
// holding a media type token plus its parameters.
type MediaType struct {
	ContentType string
	Params      map[string]string
}

// NewMediaType returns a MediaType for the given type token without
// parameters.
func NewMediaType(contentType string) MediaType {
	return MediaType{ContentType: contentType}
}

// WithParam returns a copy of the MediaType with the given parameter set.
func (m MediaType) WithParam(key, value string) MediaType {
	params := make(map[string]string, len(m.Params)+1)
	for k, v := range m.Params {
		params[k] = v
	}
	params[strings.ToLower(key)] = value
	return MediaType{ContentType: m.ContentType, Params: params}
}

// IsMultipart returns true if the media type belongs to the multipart
// top-level type.
func (m MediaType) IsMultipart() bool {
	return strings.HasPrefix(strings.ToLower(m.ContentType), "multipart/")
}

// Validate implements the EncodableBody interface for MediaType.
func (m MediaType) Validate() error {
	if m.ContentType == "" {
		return ErrEmptyHeaderValue
	}
	if mime.FormatMediaType(m.ContentType, m.Params) == "" {
		return fmt.Errorf("invalid media type %q", m.ContentType)
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for MediaType.
func (m MediaType) EncodeBody(_ MailType) (string, error) {
	v := mime.FormatMediaType(m.ContentType, m.Params)
	if v == "" {
		return "", fmt.Errorf("invalid media type %q", m.ContentType)
	}
	return v, nil
}

// DispositionKind describes whether a body is meant to be rendered inline
// or offered as a downloadable attachment.
type DispositionKind string

const (
	// DispositionInline marks a body for inline rendering.
	DispositionInline DispositionKind = "inline"

	// DispositionAttachment marks a body as downloadable attachment.
	DispositionAttachment DispositionKind = "attachment"
)

// DispositionBody is an EncodableBody for the Content-Disposition header
// field (RFC 2183) including its optional file metadata parameters.
type DispositionBody struct {
	Kind     DispositionKind
	Filename string
	Size     int64
	ModTime  time.Time
}

// Validate implements the EncodableBody interface for DispositionBody.
func (d DispositionBody) Validate() error {
	if d.Kind != DispositionInline && d.Kind != DispositionAttachment {
		return fmt.Errorf("invalid disposition kind %q", string(d.Kind))
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for DispositionBody.
func (d DispositionBody) EncodeBody(_ MailType) (string, error) {
	params := make(map[string]string, 3)
	if d.Filename != "" {
		params["filename"] = d.Filename
	}
	if d.Size > 0 {
		params["size"] = strconv.FormatInt(d.Size, 10)
	}
	if !d.ModTime.IsZero() {
		params["modification-date"] = d.ModTime.Format(time.RFC1123Z)
	}
	v := mime.FormatMediaType(string(d.Kind), params)
	if v == "" {
		return "", fmt.Errorf("invalid disposition %q", string(d.Kind))
	}
	return v, nil
}

// Raw is an EncodableBody holding a pre-encoded field body. It is emitted
// verbatim and must already be pure ASCII under non-internationalized
// mail types.
type Raw string

// Validate implements the EncodableBody interface for Raw.
func (r Raw) Validate() error {
	if string(r) == "" {
		return ErrEmptyHeaderValue
	}
	for _, b := range []byte(r) {
		if b == '\r' || b == '\n' {
			return fmt.Errorf("raw header body must not contain line breaks")
		}
	}
	return nil
}

// EncodeBody implements the EncodableBody interface for Raw.
func (r Raw) EncodeBody(mt MailType) (string, error) {
	if !mt.IsInternationalized() && !isASCII(string(r)) {
		return "", fmt.Errorf("%w: raw body", ErrNonASCIIHeaderValue)
	}
	return string(r), nil
}

// RequiresInternationalized implements the internationalizedRequirer
// interface for Raw.
func (r Raw) RequiresInternationalized() bool {
	return !isASCII(string(r))
}

// isASCII reports whether s consists of 7-bit ASCII only.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return false
		}
	}
	return true
}

// wordEncoderFor picks the encoded-word flavor for a string: Q encoding
// for mostly-ASCII text, B encoding when more than a third of the
// characters would need escaping. Characters are counted per rune so
// multi-byte UTF-8 text does not get over-weighted.
func wordEncoderFor(s string) mime.WordEncoder {
	runes, nonASCII := 0, 0
	for _, r := range s {
		runes++
		if r > 0x7f {
			nonASCII++
		}
	}
	if nonASCII > runes/3 {
		return mime.BEncoding
	}
	return mime.QEncoding
}

// quotePhrase quotes a display name if it contains characters outside the
// atom grammar.
func quotePhrase(s string) string {
	if !strings.ContainsAny(s, "()<>[]:;@\\,.\"") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
