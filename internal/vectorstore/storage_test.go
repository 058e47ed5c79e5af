package vectorstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPointIDStable(t *testing.T) {
	a := PointID("https://example.com/terms.pdf", 0)
	assert.Equal(t, a, PointID("https://example.com/terms.pdf", 0))
	assert.NotEqual(t, a, PointID("https://example.com/terms.pdf", 1))
	assert.NotEqual(t, a, PointID("https://example.com/other.pdf", 0))

	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}
