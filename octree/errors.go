package octree

import "github.com/pkg/errors"

// Error taxonomy (§7 of the specification this implements). Each kind
// wraps github.com/pkg/errors the way the teacher's octree and
// pointcloud packages build every error, and is distinguishable via
// errors.Is against the sentinel it wraps.
var (
	// ErrConfig marks a ConfigError: depth_levels out of range, NaN/Inf
	// thresholds, non-positive resolution.
	ErrConfig = errors.New("config error")

	// ErrIO marks an IOError: stream not readable/writable, truncation,
	// LZ4 failure.
	ErrIO = errors.New("io error")

	// ErrFormat marks a FormatError: missing/malformed header token,
	// wrong id, inconsistent uncompressed_data_size, binary flag without
	// binary support.
	ErrFormat = errors.New("format error")

	// ErrArgument marks an ArgumentError: bad child index, bounding
	// volume inconsistency, non-leaf where a leaf was required.
	ErrArgument = errors.New("argument error")
)

// NewConfigError builds a ConfigError wrapping ErrConfig.
func NewConfigError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConfig, format, args...)
}

// NewIOError builds an IOError wrapping ErrIO.
func NewIOError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrIO, format, args...)
}

// NewFormatError builds a FormatError wrapping ErrFormat.
func NewFormatError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

// NewArgumentError builds an ArgumentError wrapping ErrArgument.
func NewArgumentError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrArgument, format, args...)
}
