package generation

import (
	"errors"

	"interiorviz/internal/imagecodec"
	llmclient "interiorviz/internal/llmClient"
)

var (
	ErrEmptyPrompt  = errors.New("generation: prompt is required")
	ErrNoActiveView = errors.New("generation: no active view")
	ErrBatchFailed  = errors.New("generation: batch failed")
	ErrUnexpected   = errors.New("generation: unexpected failure")

	ErrNoImageDataReturned = llmclient.ErrNoImageData
	ErrTransportFailure    = llmclient.ErrTransport
	ErrInvalidSource       = imagecodec.ErrInvalidSource
)

type FailureKind string

const (
	FailureNone        FailureKind = ""
	FailureNoImageData FailureKind = "no_image_data"
	FailureTransport   FailureKind = "transport"
	FailureInvalidSrc  FailureKind = "invalid_source"
	FailureUnexpected  FailureKind = "unexpected"
)

// Classify maps a single generation error onto the failure taxonomy.
// Unrecognised collaborator errors count as transport failures.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUnexpected):
		return FailureUnexpected
	case errors.Is(err, ErrNoImageDataReturned):
		return FailureNoImageData
	case errors.Is(err, ErrInvalidSource), errors.Is(err, llmclient.ErrInvalidPart):
		return FailureInvalidSrc
	default:
		return FailureTransport
	}
}
