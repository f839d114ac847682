package domain

import (
	"fmt"
	"strings"
	"time"
)

// Article is the content unit a visitor can view in either format.
type Article struct {
	ID        int64
	Title     string
	Body      string
	UpdatedAt time.Time
}

// Format enumerates the renderings a visitor can switch between.
type Format string

const (
	FormatOriginal Format = "original"
	FormatAP       Format = "ap"
)

// ParseFormat normalizes a requested format name.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatOriginal:
		return FormatOriginal, nil
	case FormatAP:
		return FormatAP, nil
	default:
		return "", &ConversionError{Kind: KindInvalidFormat, Message: "Invalid format requested"}
	}
}

// ConversionRequest carries the parameters of a single Convert call.
type ConversionRequest struct {
	ArticleID int64
	Format    Format
}

// Conversion is the rendered content returned to the visitor.
type Conversion struct {
	ArticleID int64
	Format    Format
	Content   string
	Cached    bool
}

// CacheKeyPrefix returns the namespace shared by all cached conversions of a format.
func CacheKeyPrefix(format Format) string {
	return string(format) + "_conversion_"
}

// CacheKey identifies the single cache entry of an (article, format) pair.
func CacheKey(articleID int64, format Format) string {
	return fmt.Sprintf("%s%d", CacheKeyPrefix(format), articleID)
}

// CachePattern matches every cache entry of a format.
func CachePattern(format Format) string {
	return CacheKeyPrefix(format) + "*"
}
