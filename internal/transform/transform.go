package transform

import (
	"fmt"

	"github.com/rgehrsitz/dispo/internal/domain"
)

// AssetTransform defines the interface for all asset transformations.
// Transforms never mutate their input: Apply returns a modified deep copy,
// which is what lets the interactive layer swap whole values atomically.
type AssetTransform interface {
	// Apply transforms a base asset and returns a new modified asset.
	Apply(base *domain.Asset) (*domain.Asset, error)

	// Name returns a short identifier for this transform (e.g., "adjust_phase").
	Name() string

	// Description returns a human-readable description of what this transform does.
	Description() string

	// Validate checks if the transform parameters are valid without applying it.
	Validate(base *domain.Asset) error
}

// ApplyTransforms applies a sequence of transforms to a base asset.
// Transforms are applied in order, with each transform receiving the output of the previous one.
func ApplyTransforms(base *domain.Asset, transforms []AssetTransform) (*domain.Asset, error) {
	if base == nil {
		return nil, fmt.Errorf("base asset cannot be nil")
	}

	if len(transforms) == 0 {
		return base.DeepCopy(), nil
	}

	current := base
	for i, transform := range transforms {
		if transform == nil {
			return nil, fmt.Errorf("transform at index %d is nil", i)
		}

		if err := transform.Validate(current); err != nil {
			return nil, fmt.Errorf("transform %s validation failed: %w", transform.Name(), err)
		}

		next, err := transform.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("transform %s failed: %w", transform.Name(), err)
		}

		current = next
	}

	return current, nil
}

// TransformError represents an error that occurred during transformation.
type TransformError struct {
	TransformName string
	Operation     string
	Reason        string
	Err           error
}

func (e *TransformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transform %s (%s): %s: %v", e.TransformName, e.Operation, e.Reason, e.Err)
	}
	return fmt.Sprintf("transform %s (%s): %s", e.TransformName, e.Operation, e.Reason)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// NewTransformError creates a new TransformError.
func NewTransformError(transformName, operation, reason string, err error) error {
	return &TransformError{
		TransformName: transformName,
		Operation:     operation,
		Reason:        reason,
		Err:           err,
	}
}
