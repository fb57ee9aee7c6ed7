package memory_test

import (
	"testing"

	"github.com/aretw0/questline/pkg/adapters/memory"
	"github.com/aretw0/questline/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryAnswerBackend_Contract(t *testing.T) {
	backend := memory.NewAnswerBackend()
	ports.RunAnswerBackendContract(t, backend)
}

func TestMemoryCounter_Contract(t *testing.T) {
	counter := memory.NewCounter()
	ports.RunCounterContract(t, counter)
	assert.NotEmpty(t, counter.Keys())
}
