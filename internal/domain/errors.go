package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned when an argument is invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists is returned when trying to store a node whose ID is already stored.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSourceNotFound is returned when the backing file or table is absent.
	ErrSourceNotFound = errors.New("workflow source not found")

	// ErrAmbiguousMatch is returned when a path lookup matches more than one stored node.
	ErrAmbiguousMatch = errors.New("more than one workflow matches")

	// ErrNoWorkflowFound is returned when a search completes without a match.
	ErrNoWorkflowFound = errors.New("no workflow found with given options")

	// ErrUnsupportedSource is returned for a backend kind that is not recognised.
	ErrUnsupportedSource = errors.New("workflow source not recognised")

	// ErrUnsupportedVersion is returned when a snapshot was written by an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)
