// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

// MailType describes the capability level of the byte stream a mail is
// encoded into. It is negotiated once per encode at the root of the tree
// and applies to the whole output. The transport layer uses it to select
// the matching protocol extensions (e.g. 8BITMIME or SMTPUTF8).
type MailType int

const (
	// TypeASCII is a plain 7-bit us-ascii mail. Non-ASCII header text is
	// escaped with encoded words and non-ASCII bodies are transfer encoded.
	TypeASCII MailType = iota

	// Type8Bit is a us-ascii mail whose bodies may carry raw 8-bit values,
	// e.g. an unencoded UTF-8 text body. Headers are still ASCII only.
	Type8Bit

	// TypeInternationalized extends the header grammar to allow UTF-8,
	// which is required for mailboxes with non-ASCII local or domain
	// parts and lets header text skip encoded words entirely.
	TypeInternationalized
)

// Supports8BitBodies returns true if bodies may contain raw 8-bit values
// under this mail type.
func (t MailType) Supports8BitBodies() bool {
	return t == Type8Bit || t == TypeInternationalized
}

// IsInternationalized returns true if headers may contain raw UTF-8 under
// this mail type.
func (t MailType) IsInternationalized() bool {
	return t == TypeInternationalized
}

// String satisfies the fmt.Stringer interface for the MailType type.
func (t MailType) String() string {
	switch t {
	case TypeASCII:
		return "7bit-ascii"
	case Type8Bit:
		return "8bit-mime"
	case TypeInternationalized:
		return "internationalized"
	default:
		return "unknown"
	}
}

// escalate returns the higher of the two mail types. Negotiation only ever
// moves upwards, a requested capability is never downgraded mid-tree.
func (t MailType) escalate(o MailType) MailType {
	if o > t {
		return o
	}
	return t
}
