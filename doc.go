// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

// Package mimebuild generates RFC 5322/2045/2046/2047/2183 compliant mail
// messages from an in-memory body tree and serializes them into a byte
// stream suitable for handover to a mail submission agent.
//
// A mail is built as a recursive tree of leaf bodies (a Resource plus
// headers) and multipart nodes (subtype plus ordered children). Deferred
// resources are loaded concurrently during the resolution phase and the
// resolved tree is then encoded in a single deterministic pass. The package
// takes care of header folding, encoded words, boundary generation and
// collision avoidance, content-transfer-encoding selection and the
// negotiation of the transmissible mail type (7-bit ASCII, 8-bit or
// internationalized).
package mimebuild

// VERSION is the current version of the package.
const VERSION = "0.2.1"
