package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/plantops/assetmodeler/pkg/apperrors"
)

var (
	placeholderPattern  = regexp.MustCompile(`\{([^{}]+)\}`)
	sourcePrefixPattern = regexp.MustCompile(`^s=\[.+\]`)
)

// SourceTemplate is a parsed opcItemPath binding. Bindings look like
//
//	ns=1;s=[default]Pumps/{pumpId}/Speed
//
// Provider is the first ';'-separated segment, RawPath the second.
// RawPath may contain {param} placeholders resolved per instance.
type SourceTemplate struct {
	Provider     string
	RawPath      string
	Placeholders []string
}

// ParseSourceTemplate splits a binding into its provider and raw path
// segments and extracts the placeholder list. A binding without a
// second segment is a malformed template.
func ParseSourceTemplate(binding string) (SourceTemplate, error) {
	segments := strings.Split(binding, ";")
	if len(segments) < 2 {
		return SourceTemplate{}, fmt.Errorf("binding %q has no path segment: %w", binding, apperrors.ErrMalformedTemplate)
	}

	rawPath := segments[1]

	var placeholders []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(rawPath, -1) {
		placeholders = append(placeholders, match[1])
	}

	return SourceTemplate{
		Provider:     segments[0],
		RawPath:      rawPath,
		Placeholders: placeholders,
	}, nil
}

// Resolve substitutes instance parameters into the template's raw path
// and rewrites the leading bracketed source prefix (`s=[...]`) to the
// alias provider prefix. Every placeholder must be present in params.
func (t SourceTemplate) Resolve(params map[string]string, aliasPrefix string) (string, error) {
	resolved := t.RawPath
	for _, name := range t.Placeholders {
		value, ok := params[name]
		if !ok {
			return "", fmt.Errorf("placeholder %q: %w", name, apperrors.ErrMissingParameter)
		}
		resolved = strings.ReplaceAll(resolved, "{"+name+"}", value)
	}

	return sourcePrefixPattern.ReplaceAllString(resolved, aliasPrefix+"/"), nil
}
