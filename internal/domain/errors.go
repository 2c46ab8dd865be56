package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for the storage layer. Every error returned by a
// backend or the file service matches exactly one of these with errors.Is.
var (
	ErrNotFound          = errors.New("requested resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInternal          = errors.New("internal storage error")
	ErrInvalidIdentifier = errors.New("invalid resource identifier")
)

// StorageError describes a failed storage operation on a bucket or asset.
type StorageError struct {
	Kind   error  // one of the sentinel kinds above
	Bucket string // bucket the operation targeted, if any
	Asset  string // asset the operation targeted, if any
	Msg    string // optional human-readable detail
	Err    error  // underlying cause, if any
}

func (e *StorageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Bucket != "" {
		fmt.Fprintf(&b, "; bucket=%q", e.Bucket)
	}
	if e.Asset != "" {
		fmt.Fprintf(&b, "; asset=%q", e.Asset)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StorageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound reports a missing bucket, or a missing asset when asset is set.
func NotFound(bucket, asset string) error {
	return &StorageError{Kind: ErrNotFound, Bucket: bucket, Asset: asset}
}

// AlreadyExists reports a bucket or asset that is already present.
func AlreadyExists(bucket, asset string) error {
	return &StorageError{Kind: ErrAlreadyExists, Bucket: bucket, Asset: asset}
}

// Internal wraps a failure of the storage medium.
func Internal(bucket, asset, msg string, cause error) error {
	return &StorageError{Kind: ErrInternal, Bucket: bucket, Asset: asset, Msg: msg, Err: cause}
}

// InvalidIdentifier reports an identifier that cannot be used as a path segment.
func InvalidIdentifier(bucket, asset string, cause error) error {
	return &StorageError{Kind: ErrInvalidIdentifier, Bucket: bucket, Asset: asset, Err: cause}
}

// Kind returns the sentinel kind of err, or nil if err carries none. The
// kind of the outermost StorageError wins over kinds found in its causes.
func Kind(err error) error {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	for _, k := range []error{ErrNotFound, ErrAlreadyExists, ErrInvalidIdentifier, ErrInternal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
