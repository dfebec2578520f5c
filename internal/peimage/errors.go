package peimage

import (
	"github.com/pkg/errors"
)

// ErrorKind classifies a structural failure found while reading an image
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTruncated
	KindBadMagic
	KindUnsupportedMachine
	KindMalformedImportTable
	KindMalformedDelayImportTable
	KindRvaResolution
)

// Sentinel errors. Every error returned by this package wraps exactly one of them.
var (
	ErrTruncated                 = errors.New("image truncated")
	ErrBadMagic                  = errors.New("bad image signature")
	ErrUnsupportedMachine        = errors.New("unsupported machine type")
	ErrMalformedImportTable      = errors.New("malformed import table")
	ErrMalformedDelayImportTable = errors.New("malformed delay load import table")
	ErrRvaResolution             = errors.New("rva does not resolve to a section")
)

var kindErrors = []struct {
	kind ErrorKind
	err  error
}{
	{KindTruncated, ErrTruncated},
	{KindBadMagic, ErrBadMagic},
	{KindUnsupportedMachine, ErrUnsupportedMachine},
	{KindMalformedImportTable, ErrMalformedImportTable},
	{KindMalformedDelayImportTable, ErrMalformedDelayImportTable},
	{KindRvaResolution, ErrRvaResolution},
}

// KindOf returns the ErrorKind wrapped by err, or KindNone
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindNone
}

// String returns the taxonomy name of the kind
func (k ErrorKind) String() string {
	switch k {
	case KindTruncated:
		return "Truncated"
	case KindBadMagic:
		return "BadMagic"
	case KindUnsupportedMachine:
		return "UnsupportedMachine"
	case KindMalformedImportTable:
		return "MalformedImportTable"
	case KindMalformedDelayImportTable:
		return "MalformedDelayImportTable"
	case KindRvaResolution:
		return "RvaResolutionFailure"
	default:
		return "None"
	}
}

// IsSoftSkip reports whether err means the file should be skipped with a note
// instead of being counted as a failure.
func IsSoftSkip(err error) bool {
	return errors.Is(err, ErrUnsupportedMachine)
}
