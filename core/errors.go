package core

// errors.go – the distinct error kinds of spec.md §7. Modelled as
// sentinel values plus a CmdErrorKind-tagged CmdError, following the
// teacher's fmt.Errorf("... %w") wrapping idiom (core/ledger.go) and
// pkg/utils/errors.go's Wrap helper where a caller only needs context,
// not a kind to branch on.

import (
	"errors"
	"fmt"
)

// ChainBreak: block linkage or height violation at append time.
var ErrChainBreak = errors.New("core: chain break")

// ValidatorRejected: the block-level predicate returned false.
var ErrValidatorRejected = errors.New("core: block rejected by validator")

// Busy: a second concurrent mutable storage was requested.
var ErrBusy = errors.New("core: mutable storage already open")

// StoreIOError: block store write failure after staging rollback.
var ErrStoreIO = errors.New("core: block store I/O error")

// IndexInconsistency: an invariant violation detected by the query index.
var ErrIndexInconsistency = errors.New("core: query index inconsistency")

// CmdErrorKind enumerates the per-command rejection reasons of spec.md §4.5.
type CmdErrorKind int

const (
	CmdMissing CmdErrorKind = iota
	CmdDuplicate
	CmdInsufficientFunds
	CmdPrecisionMismatch
	CmdBadAmount
	CmdQuorumViolation
	CmdPermissionDenied
)

func (k CmdErrorKind) String() string {
	switch k {
	case CmdMissing:
		return "Missing"
	case CmdDuplicate:
		return "Duplicate"
	case CmdInsufficientFunds:
		return "InsufficientFunds"
	case CmdPrecisionMismatch:
		return "PrecisionMismatch"
	case CmdBadAmount:
		return "BadAmount"
	case CmdQuorumViolation:
		return "QuorumViolation"
	case CmdPermissionDenied:
		return "PermissionDenied"
	default:
		return "Unknown"
	}
}

// CmdError is returned by the command executor. It never escapes beyond
// the transaction boundary: mutablestorage.go catches it, rolls back the
// staged snapshot for that transaction, and marks the transaction
// skipped, letting the rest of the block proceed (spec.md §7).
type CmdError struct {
	Kind CmdErrorKind
	Msg  string
}

func (e *CmdError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func newCmdError(kind CmdErrorKind, format string, args ...any) *CmdError {
	return &CmdError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// AsCmdError reports whether err is a *CmdError and returns it.
func AsCmdError(err error) (*CmdError, bool) {
	var ce *CmdError
	ok := errors.As(err, &ce)
	return ce, ok
}
