// Package syncerrors defines the flat error taxonomy shared by every
// component in this module.
//
// The wallet-backend library this module builds on parameterizes its own
// error type over five type variables (data source, commitment tree,
// note selection, fee, and note-reference errors). Propagating that
// shape outward would leak an implementation detail into every caller.
// Instead every component collapses its errors into this one enum, with
// an opaque message for backend-specific variants -- see Design Note
// "Error-type explosion" in DESIGN.md.
package syncerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for the purposes of retry and recovery
// decisions made by the sync engine.
type Kind int

const (
	KindTransport Kind = iota
	KindRPCStatus
	KindWallet
	KindBlockSource
	KindScanContinuity
	KindScanOther
	KindIO
	KindInvalidHeight
	KindInvalidAmount
	KindInsufficientFunds
	KindInvalidAddress
	KindInvalidMemo
	KindInvalidKey
	KindOutPointMissing
	KindSyncFirst
	KindInvalidArgument
	KindInternal
	KindCancelled
	KindSendFailed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "Transport"
	case KindRPCStatus:
		return "RpcStatus"
	case KindWallet:
		return "Wallet"
	case KindBlockSource:
		return "BlockSource"
	case KindScanContinuity:
		return "Scan(continuity)"
	case KindScanOther:
		return "Scan(other)"
	case KindIO:
		return "Io"
	case KindInvalidHeight:
		return "InvalidHeight"
	case KindInvalidAmount:
		return "InvalidAmount"
	case KindInsufficientFunds:
		return "InsufficientFunds"
	case KindInvalidAddress:
		return "InvalidAddress"
	case KindInvalidMemo:
		return "InvalidMemo"
	case KindInvalidKey:
		return "InvalidKey"
	case KindOutPointMissing:
		return "OutPointMissing"
	case KindSyncFirst:
		return "SyncFirst"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInternal:
		return "Internal"
	case KindCancelled:
		return "Cancelled"
	case KindSendFailed:
		return "SendFailed"
	default:
		return "Unknown"
	}
}

// Error is the single flat error type every component returns.
type Error struct {
	Kind      Kind
	Message   string
	Required  int64 // only meaningful for KindInsufficientFunds
	Available int64 // only meaningful for KindInsufficientFunds
	Code      int32 // only meaningful for KindSendFailed
	Cause     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a plain Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around an underlying cause,
// preserving it for errors.Unwrap/errors.Is chains.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Internal wraps an error of unknown origin so no information is lost.
func Internal(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// InsufficientFunds builds the one Kind that carries structured payload
// beyond a message.
func InsufficientFunds(required, available int64) *Error {
	return &Error{
		Kind:      KindInsufficientFunds,
		Required:  required,
		Available: available,
	}
}

// Is reports whether err is a *Error of the given kind, anywhere in its
// unwrap chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
