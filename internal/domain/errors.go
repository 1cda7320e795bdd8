package domain

import "errors"

var (
	// ErrExtraction marks a document whose text could not be extracted.
	ErrExtraction = errors.New("document extraction failed")
	// ErrIndexUnavailable means the embedding capability is missing or its build failed.
	ErrIndexUnavailable = errors.New("semantic index unavailable")
	// ErrRetrieval marks a failed similarity query on a built index.
	ErrRetrieval = errors.New("semantic retrieval failed")
	// ErrGatewayFailure is the single user-facing category for completion failures.
	ErrGatewayFailure = errors.New("completion service failure")
	// ErrMissingCredential means no API key was configured for the completion service.
	ErrMissingCredential = errors.New("missing API credential")

	ErrEmptyInput    = errors.New("empty message")
	ErrNoPendingTurn = errors.New("no unanswered message to resend")
)
