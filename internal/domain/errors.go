package domain

import "errors"

var (
	// ErrValidation is returned for uploads with an unsupported type or size.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration is returned when a component is constructed with invalid settings.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch is returned when the number of vectors and chunks disagree.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDimensionMismatch is returned when a vector's width differs from the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrEmptyDocument is returned when a document produces no chunks.
	ErrEmptyDocument = errors.New("empty document")

	// ErrGeneration is returned when the generation capability fails permanently.
	ErrGeneration = errors.New("generation failed")
)
