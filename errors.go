// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFromAddress should be used when a sender field is required but not set
	ErrNoFromAddress = errors.New("no From address field set")

	// ErrNoRcptAddresses should be used when no recipient field is set
	ErrNoRcptAddresses = errors.New("no recipient address field set")

	// ErrUnresolvedResource is returned when a tree holding deferred resources
	// is handed to the encoder without a prior resolution phase
	ErrUnresolvedResource = errors.New("tree contains unresolved resources")

	// ErrNotMultipart is returned when a part is added to a leaf node
	ErrNotMultipart = errors.New("parts can only be added to multipart nodes")

	// ErrNilPart is returned when a nil part is added to a multipart node
	ErrNilPart = errors.New("cannot add a nil part")
)

// List of EncodeError reasons
const (
	// ErrHeaderEncode is returned if a header value could not be encoded for
	// the negotiated mail type
	ErrHeaderEncode EncodeErrReason = iota

	// ErrHardLineLimit is returned if a header line would exceed the hard
	// 998 character limit even after folding
	ErrHardLineLimit

	// ErrBoundaryExhausted is returned if no collision free multipart
	// boundary could be generated within the attempt budget
	ErrBoundaryExhausted

	// ErrBodyEncode is returned if a body payload could not be represented
	// under any transfer encoding
	ErrBodyEncode

	// ErrWriteContent is returned if writing to the output sink failed
	ErrWriteContent
)

// EncodeErrReason is a comparable reason code describing why an encode
// attempt failed.
type EncodeErrReason int

// String satisfies the fmt.Stringer interface for the EncodeErrReason type.
func (r EncodeErrReason) String() string {
	switch r {
	case ErrHeaderEncode:
		return "encoding header value failed"
	case ErrHardLineLimit:
		return "hard line length limit exceeded"
	case ErrBoundaryExhausted:
		return "multipart boundary generation exhausted"
	case ErrBodyEncode:
		return "encoding body payload failed"
	case ErrWriteContent:
		return "writing message content failed"
	default:
		return "unknown reason"
	}
}

// EncodeError is the error type returned for failures during the encoding
// phase. Encoding errors indicate a data problem rather than a transient
// one, so retrying the same encode is not useful.
type EncodeError struct {
	// Reason is the comparable reason code of the failure
	Reason EncodeErrReason

	// Place names the node or header field the failure occurred at
	Place string

	errlist []error
}

// Error implements the error interface for the EncodeError type.
func (e *EncodeError) Error() string {
	var b strings.Builder
	b.WriteString("mail encoding failed: ")
	b.WriteString(e.Reason.String())
	if e.Place != "" {
		fmt.Fprintf(&b, " at %q", e.Place)
	}
	for i, err := range e.errlist {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Is implements the errors.Is interface for the EncodeError type. Two
// EncodeErrors are considered equal if their reason codes match.
func (e *EncodeError) Is(target error) bool {
	var t *EncodeError
	if errors.As(target, &t) {
		return t.Reason == e.Reason
	}
	return false
}

// Unwrap returns the underlying cause of the EncodeError, if any.
func (e *EncodeError) Unwrap() error {
	if len(e.errlist) == 0 {
		return nil
	}
	return e.errlist[0]
}

// encodeErr constructs an EncodeError with the given reason, place and
// optional underlying causes.
func encodeErr(reason EncodeErrReason, place string, errs ...error) *EncodeError {
	return &EncodeError{Reason: reason, Place: place, errlist: errs}
}

// ResolveError is the error type returned when the resolution phase fails.
// It reports the first failing source reference; all sibling loads are
// cancelled and their partial results discarded, no partial tree is ever
// handed to the encoder.
type ResolveError struct {
	// Ref is the source reference whose load failed
	Ref SourceRef

	cause error
}

// Error implements the error interface for the ResolveError type.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolving resource %q failed: %s", e.Ref.Ref, e.cause)
}

// Unwrap returns the loader error that caused the resolution failure.
func (e *ResolveError) Unwrap() error {
	return e.cause
}
