package requests

import "strings"

// Status enumerates the durable lifecycle states of a request.
//
// waiting_admin_file is a legacy alias still emitted by older rows: it means
// "approved, file not attached yet" and every consumer must treat the two
// spellings identically.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUrgent      Status = "urgent"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusWaitingFile Status = "waiting_admin_file"
)

// NormalizeStatus maps the empty status reported by the backend for fresh
// rows onto pending, and trims stray whitespace.
func NormalizeStatus(s Status) Status {
	s = Status(strings.TrimSpace(string(s)))
	if s == "" {
		return StatusPending
	}
	return s
}

// Canonical collapses the legacy waiting_admin_file spelling onto approved.
// Equality checks between durable statuses must compare canonical forms.
func Canonical(s Status) Status {
	s = NormalizeStatus(s)
	if s == StatusWaitingFile {
		return StatusApproved
	}
	return s
}

// AwaitingFile reports whether the request sits in the intermediate
// approved-without-file state, under either spelling.
func AwaitingFile(s Status, hasFile bool) bool {
	s = NormalizeStatus(s)
	if s == StatusWaitingFile {
		return true
	}
	return s == StatusApproved && !hasFile
}

// Terminal reports whether no further admin action is offered: a rejected
// request, or an approved request whose file is attached.
func Terminal(s Status, hasFile bool) bool {
	s = NormalizeStatus(s)
	if s == StatusRejected {
		return true
	}
	return s == StatusApproved && hasFile
}

// CanApprove reports whether an approve action is allowed from the status.
func CanApprove(s Status) bool {
	s = NormalizeStatus(s)
	return s == StatusPending || s == StatusUrgent
}

// CanReject reports whether a reject (or delete-as-reject) is allowed.
// Rejection is the soft-delete path, so it is reachable from any
// non-rejected state.
func CanReject(s Status) bool {
	return NormalizeStatus(s) != StatusRejected
}

// CanUpload reports whether a file upload is allowed: only while the request
// awaits its admin attachment.
func CanUpload(s Status, hasFile bool) bool {
	return AwaitingFile(s, hasFile)
}

// Allowed validates a durable transition requested through the status
// endpoint. Only approved and rejected are writable targets; the
// intermediate display states are derived, never stored by this path.
func Allowed(from, to Status) bool {
	from = NormalizeStatus(from)
	to = NormalizeStatus(to)

	switch to {
	case StatusApproved:
		return CanApprove(from)
	case StatusRejected:
		return CanReject(from)
	default:
		return false
	}
}

// Control names an action the admin table offers on a row.
type Control string

const (
	ControlApprove Control = "approve"
	ControlReject  Control = "reject"
	ControlUpload  Control = "upload_file"
	ControlDelete  Control = "delete"
)

// Controls derives the actions offered for a row. Rejected rows and fully
// resolved rows offer nothing.
func Controls(s Status, hasFile bool) []Control {
	s = NormalizeStatus(s)
	switch {
	case Terminal(s, hasFile):
		return nil
	case AwaitingFile(s, hasFile):
		return []Control{ControlUpload, ControlDelete}
	default:
		return []Control{ControlApprove, ControlReject}
	}
}
