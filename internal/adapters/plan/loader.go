// Package plan loads requirement plans from YAML files. A plan names the
// requirements of one task and, for dry runs, the sandbox world they run in.
package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/requisition-go/internal/adapters/sandbox"
	"github.com/andrescamacho/requisition-go/internal/application/store"
	"github.com/andrescamacho/requisition-go/internal/domain/requirement"
	"github.com/andrescamacho/requisition-go/internal/domain/shared"
	"github.com/andrescamacho/requisition-go/internal/domain/shop"
)

// ErrUnknownItem is returned when a requirement names an item missing from
// the catalog
var ErrUnknownItem = errors.New("unknown item")

// Plan is a loaded, validated requirement plan
type Plan struct {
	Name         string
	Context      shared.TaskContext
	Requirements []requirement.Requirement
	External     []requirement.Requirement
	Seed         sandbox.Seed
}

// Register files every requirement of the plan into s and returns how many
// were new
func (p *Plan) Register(ctx context.Context, s *store.RequirementStore) int {
	added := 0
	for _, r := range p.Requirements {
		if s.Register(ctx, r) {
			added++
		}
	}
	for _, r := range p.External {
		if s.RegisterExternal(ctx, r) {
			added++
		}
	}
	return added
}

// Loader parses plan files
type Loader struct {
	validate *validator.Validate
	pricing  shop.ExchangePricing
}

// NewLoader creates a loader. pricing applies to every demand; per-demand
// price limits override its MaxPrice and MinPrice.
func NewLoader(pricing shop.ExchangePricing) *Loader {
	return &Loader{
		validate: validator.New(),
		pricing:  pricing,
	}
}

// LoadFile reads and parses the plan at path
func (l *Loader) LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	p, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and builds a plan.
//
// Workflow:
//  1. Decode YAML (unknown fields are rejected)
//  2. Validate field tags
//  3. Index the item catalog and merge it into the world seed
//  4. Build every requirement through the domain constructors
func (l *Loader) Parse(data []byte) (*Plan, error) {
	var file File
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}

	if err := l.validate.Struct(&file); err != nil {
		return nil, formatValidationError(err)
	}

	b, err := newBuilder(&file, l.pricing)
	if err != nil {
		return nil, err
	}

	p := &Plan{Name: file.Name, Context: b.context, Seed: b.seed()}
	for i, dto := range file.Requirements {
		r, err := b.build(dto, b.context)
		if err != nil {
			return nil, fmt.Errorf("requirement %d (%s): %w", i, dto.Kind, err)
		}
		p.Requirements = append(p.Requirements, r)
	}
	for i, dto := range file.External {
		r, err := b.build(dto, b.context)
		if err != nil {
			return nil, fmt.Errorf("external requirement %d (%s): %w", i, dto.Kind, err)
		}
		p.External = append(p.External, r)
	}
	return p, nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')",
			e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}
