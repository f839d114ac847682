package converter

import (
	"context"
	"errors"
	"testing"

	"FormatConverter/internal/domain"
)

type stubConverter struct {
	format  domain.Format
	content string
}

func (s stubConverter) Format() domain.Format { return s.format }

func (s stubConverter) Convert(context.Context, domain.Article) (Result, error) {
	return Result{Content: s.content}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubConverter{format: domain.FormatOriginal, content: "o"})
	reg.Register(stubConverter{format: domain.FormatAP, content: "first"})
	reg.Register(stubConverter{format: domain.FormatAP, content: "second"})

	c, err := reg.Resolve(domain.FormatAP)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	res, _ := c.Convert(context.Background(), domain.Article{})
	if res.Content != "second" {
		t.Fatalf("expected replaced converter, got %q", res.Content)
	}

	formats := reg.Formats()
	if len(formats) != 2 || formats[0] != domain.FormatAP || formats[1] != domain.FormatOriginal {
		t.Fatalf("unexpected formats: %v", formats)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	var reg Registry
	_, err := reg.Resolve("braille")
	if !errors.Is(err, domain.ErrInvalidFormat) {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if domain.PublicMessage(err) != "Invalid format requested" {
		t.Fatalf("unexpected message: %q", domain.PublicMessage(err))
	}
}
