package middleware

import "github.com/aretw0/questline/pkg/ports"

// Middleware allows wrapping an AnswerBackend to add behavior.
type Middleware func(ports.AnswerBackend) ports.AnswerBackend

// Chain applies the middlewares so that the first one sees writes first.
func Chain(next ports.AnswerBackend, mws ...Middleware) ports.AnswerBackend {
	for i := len(mws) - 1; i >= 0; i-- {
		next = mws[i](next)
	}
	return next
}
