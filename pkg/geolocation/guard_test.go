package geolocation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRejectsReentry(t *testing.T) {
	var g Guard
	var inner bool
	ran := g.Do(func() {
		assert.True(t, g.Busy())
		inner = g.Do(func() { t.Error("nested call ran") })
	})
	assert.True(t, ran)
	assert.False(t, inner)
	assert.False(t, g.Busy())
}

func TestGuardReleasedOnPanic(t *testing.T) {
	var g Guard
	assert.Panics(t, func() {
		g.Do(func() { panic("boom") })
	})
	assert.False(t, g.Busy())
	assert.True(t, g.Do(func() {}))
}

func TestErrorRendering(t *testing.T) {
	err := &Error{Op: "GetPosition", Kind: KindUserDeclinedEnable, Message: messageNotEnabled}
	assert.Equal(t, "UserDeclinedEnable: location services not enabled", err.Error())
	assert.Equal(t, "CapabilityQueryError", (&Error{Kind: KindCapabilityQuery}).Error())

	wrapped := fmt.Errorf("page: %w", err)
	assert.ErrorIs(t, wrapped, ErrUserDeclinedEnable)
	assert.NotErrorIs(t, wrapped, ErrUserDeclinedAuthorize)
	assert.Equal(t, KindUserDeclinedEnable, KindOf(wrapped))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}
