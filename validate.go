// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"fmt"
	"strconv"
	"strings"
)

// List of violation codes
const (
	// ViolationDuplicateField flags an "at most one" header field that
	// appears more than once
	ViolationDuplicateField ViolationCode = iota

	// ViolationInvalidHeaderBody flags a header body that fails its own
	// validity check
	ViolationInvalidHeaderBody

	// ViolationReservedField flags a caller-set header field the encoder
	// derives from the tree itself
	ViolationReservedField

	// ViolationSubtypeMismatch flags a multipart node whose caller-set
	// Content-Type is not a matching multipart media type
	ViolationSubtypeMismatch

	// ViolationEmptyMultipart flags a multipart node without children
	ViolationEmptyMultipart

	// ViolationMissingSender flags a top-level node without a From field
	ViolationMissingSender

	// ViolationMissingRecipient flags a top-level node without any
	// recipient field
	ViolationMissingRecipient

	// ViolationMissingSubject flags a top-level node without a Subject
	ViolationMissingSubject

	// ViolationDispositionMisuse flags an attachment-disposed child
	// nested as non-last child of a related node
	ViolationDispositionMisuse

	// ViolationMissingContentID flags a non-root child of a related node
	// that cannot be referenced because it has no content identifier
	ViolationMissingContentID

	// ViolationSingleAlternative flags an alternative node with fewer
	// than two renderings
	ViolationSingleAlternative
)

// ViolationCode is a comparable code identifying the kind of a validation
// violation.
type ViolationCode int

// Severity describes whether a violation invalidates the mail or merely
// flags semantically surprising but encodable structure.
type Severity int

const (
	// SeverityWarning marks a violation that still yields a valid byte
	// stream; the caller decides whether to treat it as fatal.
	SeverityWarning Severity = iota

	// SeverityError marks a violation that prevents encoding a valid
	// mail.
	SeverityError
)

// String satisfies the fmt.Stringer interface for the Severity type.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Violation is a single finding of the validation step.
type Violation struct {
	Severity Severity
	Code     ViolationCode
	Node     string
	Message  string
}

// String satisfies the fmt.Stringer interface for the Violation type.
func (v Violation) String() string {
	if v.Node == "" {
		return fmt.Sprintf("%s: %s", v.Severity, v.Message)
	}
	return fmt.Sprintf("%s at %s: %s", v.Severity, v.Node, v.Message)
}

// ValidationResult is the outcome of validating a mail tree: the
// unchanged tree plus a list of violations. The tree is never silently
// amended, surfacing warnings and letting the caller decide is part of
// the contract.
type ValidationResult struct {
	Violations []Violation
}

// OK returns true if validation found nothing at all.
func (r *ValidationResult) OK() bool {
	return len(r.Violations) == 0
}

// Fatal returns true if any violation has error severity.
func (r *ValidationResult) Fatal() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns the violations with warning severity.
func (r *ValidationResult) Warnings() []Violation {
	var warnings []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			warnings = append(warnings, v)
		}
	}
	return warnings
}

// Err returns a ValidationError carrying all violations if any violation
// is fatal, nil otherwise.
func (r *ValidationResult) Err() error {
	if !r.Fatal() {
		return nil
	}
	return &ValidationError{Violations: r.Violations}
}

// ValidationError is the error type returned when a mail tree fails
// validation. Validation runs before any resolution cost is paid, so the
// caller can amend the tree cheaply and retry.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface for the ValidationError type.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Severity == SeverityError {
			msgs = append(msgs, v.String())
		}
	}
	return "mail validation failed: " + strings.Join(msgs, "; ")
}

// ValidationPolicy configures which headers are structurally required at
// the outermost node.
type ValidationPolicy struct {
	RequireSender    bool
	RequireRecipient bool
	RequireSubject   bool
}

// DefaultValidationPolicy requires a sender, at least one recipient field
// and a subject at the top level.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		RequireSender:    true,
		RequireRecipient: true,
		RequireSubject:   true,
	}
}

// Validate checks the assembled tree against the header multiplicity
// rules, the structural header policy and the multipart subtype
// invariants. It runs once after assembly and before resolution and
// never modifies the tree.
func (m *Mail) Validate(policy ValidationPolicy) *ValidationResult {
	result := &ValidationResult{}
	m.walk("/", func(path string, node *Mail) {
		validateNode(result, path, node)
	})
	validateTopLevel(result, m, policy)
	return result
}

// validateNode collects the violations of a single tree node.
func validateNode(result *ValidationResult, path string, node *Mail) {
	for _, v := range node.headers.checkMultiplicity() {
		v.Node = path
		result.Violations = append(result.Violations, v)
	}
	for _, f := range node.headers.Fields() {
		if err := f.Body.Validate(); err != nil {
			result.add(SeverityError, ViolationInvalidHeaderBody, path,
				fmt.Sprintf("header field %s: %s", f.Name, err))
		}
	}

	// The transfer encoding is derived from the resource payload; a
	// caller-set field would desynchronize header and body.
	if node.headers.Contains(HeaderContentTransferEnc) {
		result.add(SeverityError, ViolationReservedField, path,
			"Content-Transfer-Encoding is derived from the resource and must not be set")
	}

	if !node.IsMultipart() {
		validateLeaf(result, path, node)
		return
	}
	validateMultipart(result, path, node)
}

// validateLeaf collects the leaf specific violations.
func validateLeaf(result *ValidationResult, path string, node *Mail) {
	if body, ok := node.headers.Get(HeaderContentType); ok {
		if mt, isMediaType := body.(MediaType); isMediaType && mt.IsMultipart() {
			result.add(SeverityError, ViolationSubtypeMismatch, path,
				"leaf node must not carry a multipart Content-Type")
		}
	}
}

// validateMultipart collects the multipart specific violations including
// the subtype invariants for alternative and related nodes.
func validateMultipart(result *ValidationResult, path string, node *Mail) {
	if len(node.parts) == 0 {
		result.add(SeverityError, ViolationEmptyMultipart, path,
			"multipart node has no children")
	}
	if body, ok := node.headers.Get(HeaderContentType); ok {
		mt, isMediaType := body.(MediaType)
		if !isMediaType || !mt.IsMultipart() {
			result.add(SeverityError, ViolationSubtypeMismatch, path,
				"multipart node requires a multipart Content-Type")
		} else if !strings.EqualFold(mt.ContentType, "multipart/"+string(node.subtype)) {
			result.add(SeverityWarning, ViolationSubtypeMismatch, path,
				fmt.Sprintf("Content-Type %q does not match node subtype %q",
					mt.ContentType, node.subtype))
		}
	}

	switch node.subtype {
	case MultipartAlternative:
		if len(node.parts) == 1 {
			result.add(SeverityWarning, ViolationSingleAlternative, path,
				"alternative node with a single rendering")
		}
	case MultipartRelated:
		for i, p := range node.parts {
			if p.IsMultipart() {
				continue
			}
			if i > 0 && p.resource.ContentID() == "" {
				result.add(SeverityWarning, ViolationMissingContentID, childPath(path, i),
					"related child cannot be referenced without a content identifier")
			}
			// Accepted by the encoder, but semantically surprising; the
			// caller decides, the tree is not silently fixed.
			if i < len(node.parts)-1 && p.resource.Disposition() == DispositionAttachment {
				result.add(SeverityWarning, ViolationDispositionMisuse, childPath(path, i),
					"attachment-disposed body nested as non-last child of a related node")
			}
		}
	}
}

// validateTopLevel checks the structurally required headers of the
// outermost node against the policy.
func validateTopLevel(result *ValidationResult, m *Mail, policy ValidationPolicy) {
	if policy.RequireSender && !m.headers.Contains(HeaderFrom) {
		result.add(SeverityError, ViolationMissingSender, "/", ErrNoFromAddress.Error())
	}
	if policy.RequireRecipient &&
		!m.headers.Contains(HeaderTo) && !m.headers.Contains(HeaderCc) && !m.headers.Contains(HeaderBcc) {
		result.add(SeverityError, ViolationMissingRecipient, "/", ErrNoRcptAddresses.Error())
	}
	if policy.RequireSubject && !m.headers.Contains(HeaderSubject) {
		result.add(SeverityError, ViolationMissingSubject, "/", "no Subject field set")
	}
}

// add appends one violation to the result.
func (r *ValidationResult) add(sev Severity, code ViolationCode, node, msg string) {
	r.Violations = append(r.Violations, Violation{
		Severity: sev,
		Code:     code,
		Node:     node,
		Message:  msg,
	})
}

// childPath returns the tree path of the i-th child of a node.
func childPath(parent string, i int) string {
	if parent == "/" {
		return "/" + strconv.Itoa(i)
	}
	return parent + "/" + strconv.Itoa(i)
}
