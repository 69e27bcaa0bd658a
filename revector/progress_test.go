package revector

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressTracker(&out, 100, 25)
	p.Start()

	p.Update(10)
	assert.Empty(t, out.String())

	p.Update(30)
	assert.Contains(t, out.String(), "30/100")

	p.Finish()
	assert.Contains(t, out.String(), "100/100")
	assert.Contains(t, out.String(), "100.0%")
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressTracker(&out, 10, 1)
	p.Start()

	p.Update(50)
	assert.Contains(t, out.String(), "10/10")
}

func TestProgressTracker_NilWriter(t *testing.T) {
	p := NewProgressTracker(nil, 10, 1)
	p.Start()

	p.Update(5)
	p.Finish()
	assert.NotZero(t, p.Elapsed())
}

func TestProgressTracker_NoopBeforeStart(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressTracker(&out, 10, 1)

	p.Update(5)
	p.Finish()
	assert.Empty(t, out.String())
	assert.Zero(t, p.Elapsed())
}
