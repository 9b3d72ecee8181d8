package commlog

import "errors"

// Sentinel errors for telegram log parsing and rendering.
var (
	// ErrMalformedLog indicates the input is not well-formed XML.
	ErrMalformedLog = errors.New("commlog: malformed telegram log")

	// ErrUnexpectedRoot indicates the root element is not <CommunicationLog>.
	ErrUnexpectedRoot = errors.New("commlog: unexpected root element")

	// ErrRenderFailed indicates writing a rendered document failed.
	ErrRenderFailed = errors.New("commlog: render failed")
)
