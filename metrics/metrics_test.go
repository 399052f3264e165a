package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateViewsCarryDescriptions(t *testing.T) {
	m := newRingMetric()

	viewList := createAppendViews(m, nil)

	assert.Equal(t, m.Appends.Description(), viewList[0].Description)
}

func TestCountDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { Count(RingMetric.Appends) })
}
