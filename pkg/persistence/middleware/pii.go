package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/questline/pkg/ports"
)

// Mask replaces the stored value of a sensitive answer.
const Mask = "***"

type piiMiddleware struct {
	next     ports.AnswerBackend
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the values of answer keys matching the patterns.
// Only the persisted copy is masked; the running game keeps the real answer.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.AnswerBackend) ports.AnswerBackend {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Put(ctx context.Context, namespace, key, value string) error {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			value = Mask
			break
		}
	}
	return m.next.Put(ctx, namespace, key, value)
}

func (m *piiMiddleware) Load(ctx context.Context, namespace string) (map[string]string, error) {
	return m.next.Load(ctx, namespace)
}

func (m *piiMiddleware) Clear(ctx context.Context, namespace string) error {
	return m.next.Clear(ctx, namespace)
}
