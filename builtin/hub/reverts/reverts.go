// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	InvalidAmount Kind = iota + 1
	InsufficientBalance
	AlreadyExists
	NotFound
	StillDelegated
	BatchNotMatured
	NothingToClaim
	RateRegression
	EncodingError
	Unauthorized
	InvalidState
)

var kindNames = map[Kind]string{
	InvalidAmount:       "InvalidAmount",
	InsufficientBalance: "InsufficientBalance",
	AlreadyExists:       "AlreadyExists",
	NotFound:            "NotFound",
	StillDelegated:      "StillDelegated",
	BatchNotMatured:     "BatchNotMatured",
	NothingToClaim:      "NothingToClaim",
	RateRegression:      "RateRegression",
	EncodingError:       "EncodingError",
	Unauthorized:        "Unauthorized",
	InvalidState:        "InvalidState",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ErrRevert is a domain failure. It aborts the request and leaves state untouched.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.kind.String() + ": " + e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// Is reports whether err is a revert of the given kind.
func Is(err error, kind Kind) bool {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind == kind
	}
	return false
}

// KindOf returns the kind of err, or zero if err is not a revert.
func KindOf(err error) Kind {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind
	}
	return 0
}
