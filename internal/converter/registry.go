package converter

import (
	"context"
	"fmt"
	"sort"

	"FormatConverter/internal/domain"
)

// Result is the output of a single format strategy.
type Result struct {
	Content string
	Cached  bool
}

// Converter captures a single format strategy (original, AP, ...).
type Converter interface {
	Format() domain.Format
	Convert(ctx context.Context, article domain.Article) (Result, error)
}

// Registry keeps a mapping from format names to their implementations.
type Registry struct {
	converters map[domain.Format]Converter
}

// NewRegistry builds a registry with the given converters.
func NewRegistry(converters ...Converter) *Registry {
	r := &Registry{converters: map[domain.Format]Converter{}}
	for _, c := range converters {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a converter implementation.
func (r *Registry) Register(c Converter) {
	if r.converters == nil {
		r.converters = map[domain.Format]Converter{}
	}
	r.converters[c.Format()] = c
}

// Resolve returns the converter for a format or an InvalidFormat error.
func (r *Registry) Resolve(format domain.Format) (Converter, error) {
	if c, ok := r.converters[format]; ok {
		return c, nil
	}
	return nil, &domain.ConversionError{
		Kind:    domain.KindInvalidFormat,
		Message: "Invalid format requested",
		Err:     fmt.Errorf("converter %q is not registered", format),
	}
}

// Formats lists registered formats in a stable order.
func (r *Registry) Formats() []domain.Format {
	formats := make([]domain.Format, 0, len(r.converters))
	for f := range r.converters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
