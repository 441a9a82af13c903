package core

import "errors"

var (
	// ErrInvalidInput is returned when a request carries no usable content,
	// for example neither text nor image, empty text, or a zero-byte image.
	// It is fatal to the request and rejected before dispatch.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModelUnavailable is returned when an underlying model backend
	// cannot be invoked. The fusion engine recovers it into an absent
	// component rather than failing the request.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrUnsupportedFormat is returned for image payloads that cannot be decoded
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrAllComponentsUnavailable is returned when every dispatched
	// analysis component failed and no verdict can be produced.
	ErrAllComponentsUnavailable = errors.New("all analysis components unavailable")
)
