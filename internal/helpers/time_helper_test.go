package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToEAT(t *testing.T) {
	utc := time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC)

	eat := ToEAT(utc)
	assert.True(t, utc.Equal(eat), "same instant")
	_, offset := eat.Zone()
	assert.Equal(t, 3*60*60, offset)
	assert.Equal(t, 2, eat.Day())
	assert.Equal(t, 0, eat.Hour())

	assert.True(t, ToEAT(time.Time{}).IsZero())
	assert.Nil(t, ToEATPtr(nil))
	assert.Equal(t, 3*60*60, func() int { _, o := ToEATPtr(&utc).Zone(); return o }())
}
