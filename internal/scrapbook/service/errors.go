package service

import "errors"

var (
	// ErrInvalidRequest marks a request the service layer rejects before
	// touching any backend.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnparseableModelOutput marks language-model output that is not the
	// structured data the prompt asked for. Enrichment degrades to defaults
	// on it instead of propagating.
	ErrUnparseableModelOutput = errors.New("unparseable model output")
)
