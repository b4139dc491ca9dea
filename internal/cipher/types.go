package cipher

import (
	"context"
	"fmt"
)

// OperationType defines the direction of a transformation operation
type OperationType string

const (
	OperationTypeEncrypt OperationType = "encrypt"
	OperationTypeDecrypt OperationType = "decrypt"
	// OperationTypeInvolution marks operations that are their own inverse.
	OperationTypeInvolution OperationType = "involution"
)

// Operation is a named text transformation that can be looked up in a
// Registry and chained in a Pipeline.
type Operation interface {
	// Name returns the unique identifier for this operation
	Name() string

	// Type returns the category of this operation
	Type() OperationType

	// Description returns a human-readable description
	Description() string

	// Execute applies the operation to the input text
	Execute(ctx context.Context, input string, params Params) (string, error)

	// Reverse returns the inverse operation if available
	Reverse() (Operation, bool)
}

// OperationConfig names an operation in a pipeline together with its
// parameters.
type OperationConfig struct {
	Name       string `json:"name" yaml:"name"`
	Parameters Params `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Pipeline is a chain of operations applied in order.
type Pipeline struct {
	Operations []OperationConfig `json:"operations" yaml:"operations"`
	Reversible bool              `json:"reversible" yaml:"reversible"`
}

// Execute runs the pipeline on input, resolving operations from the default
// registry.
func (p *Pipeline) Execute(ctx context.Context, input string) (string, error) {
	return p.ExecuteWith(ctx, DefaultRegistry(), input)
}

// ExecuteWith runs the pipeline resolving operations from reg.
func (p *Pipeline) ExecuteWith(ctx context.Context, reg *Registry, input string) (string, error) {
	result := input
	for i, opConfig := range p.Operations {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		op, exists := reg.Get(opConfig.Name)
		if !exists {
			return "", fmt.Errorf("step %d: %w: %s", i, ErrUnknownOperation, opConfig.Name)
		}

		var err error
		result, err = op.Execute(ctx, result, opConfig.Parameters)
		if err != nil {
			return "", fmt.Errorf("operation %s failed at step %d: %w", opConfig.Name, i, err)
		}
	}
	return result, nil
}

// Reverse builds the inverse pipeline: steps in reverse order, each replaced
// by its inverse operation with the same parameters.
func (p *Pipeline) Reverse() (*Pipeline, error) {
	return p.ReverseWith(DefaultRegistry())
}

// ReverseWith is Reverse resolving operations from reg.
func (p *Pipeline) ReverseWith(reg *Registry) (*Pipeline, error) {
	if !p.Reversible {
		return nil, fmt.Errorf("%w: pipeline is not marked reversible", ErrNotReversible)
	}

	reversed := &Pipeline{
		Operations: make([]OperationConfig, len(p.Operations)),
		Reversible: true,
	}
	for i, opConfig := range p.Operations {
		op, exists := reg.Get(opConfig.Name)
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, opConfig.Name)
		}
		inverse, ok := op.Reverse()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotReversible, opConfig.Name)
		}
		reversed.Operations[len(p.Operations)-1-i] = OperationConfig{
			Name:       inverse.Name(),
			Parameters: opConfig.Parameters,
		}
	}
	return reversed, nil
}

// Recipe is a named, reusable pipeline.
type Recipe struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Pipeline    Pipeline `json:"pipeline" yaml:"pipeline"`
	CreatedAt   string   `json:"created_at" yaml:"created_at"`
	UpdatedAt   string   `json:"updated_at" yaml:"updated_at"`
}

// BaseOperation provides common functionality for operations
type BaseOperation struct {
	NameValue        string
	TypeValue        OperationType
	DescriptionValue string
	ReverseOp        Operation
}

func (b *BaseOperation) Name() string {
	return b.NameValue
}

func (b *BaseOperation) Type() OperationType {
	return b.TypeValue
}

func (b *BaseOperation) Description() string {
	return b.DescriptionValue
}

func (b *BaseOperation) Reverse() (Operation, bool) {
	if b.ReverseOp == nil {
		return nil, false
	}
	return b.ReverseOp, true
}
