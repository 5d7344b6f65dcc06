package mft

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	//ErrBadSignature is returned when a record does not start with the FILE magic
	ErrBadSignature = errors.New("bad record signature")
	//ErrTruncatedHeader is returned when there are fewer bytes than a record header needs
	ErrTruncatedHeader = errors.New("truncated record header")
	//ErrTruncatedAttribute means an attribute (or part of one) runs past the end of its buffer
	ErrTruncatedAttribute = errors.New("truncated attribute")
	//ErrInvalidLength is used for length fields that contradict each other
	ErrInvalidLength = errors.New("invalid length")
	//ErrFixupOutOfRange means the update sequence array does not fit inside the record
	ErrFixupOutOfRange = errors.New("fixup array out of range")
	//ErrNoReader is returned when a resolver is built without a record reader
	ErrNoReader = errors.New("no record reader")
)

//IssueKind identifies a data quality problem found while resolving an entry.
type IssueKind int

const (
	FixupMismatch IssueKind = iota
	FixupOutOfRange
	TruncatedAttribute
	DecodeFailure
	ExtensionUnreadable
	ExtensionInvalid
	StaleReference
	NonResidentUnavailable
)

var issueNames = map[IssueKind]string{
	FixupMismatch:          "FixupMismatch",
	FixupOutOfRange:        "FixupOutOfRange",
	TruncatedAttribute:     "TruncatedAttribute",
	DecodeFailure:          "DecodeFailure",
	ExtensionUnreadable:    "ExtensionUnreadable",
	ExtensionInvalid:       "ExtensionInvalid",
	StaleReference:         "StaleReference",
	NonResidentUnavailable: "NonResidentUnavailable",
}

func (k IssueKind) String() string {
	if s, ok := issueNames[k]; ok {
		return s
	}
	return fmt.Sprintf("IssueKind(%d)", int(k))
}

func (k IssueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

//Issue is a non fatal problem attached to a resolved entry. Consumers decide whether to trust the data.
type Issue struct {
	Record uint64    `json:"record"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail,omitempty"`
}

func (i Issue) String() string {
	if i.Detail == "" {
		return fmt.Sprintf("record %d: %s", i.Record, i.Kind)
	}
	return fmt.Sprintf("record %d: %s: %s", i.Record, i.Kind, i.Detail)
}
