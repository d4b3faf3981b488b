package provider

import "errors"

var (
	ErrNoOutput         = errors.New("query produced no output")
	ErrMalformedPayload = errors.New("malformed detection payload")
	ErrFieldMissing     = errors.New("detection payload has no usable field")
	ErrNotInRepository  = errors.New("entry is not inside a git work tree")
	ErrExcluded         = errors.New("entry matches an exclude pattern")
	ErrUnknownQuery     = errors.New("unknown query")
	ErrInvalidDetector  = errors.New("unknown language detector")
)
