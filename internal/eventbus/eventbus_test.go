package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	b := New()
	var order []int

	b.Subscribe(GameStarted, func(payload any) { order = append(order, 1) })
	b.Subscribe(GameStarted, func(payload any) { order = append(order, 2) })

	b.Publish(GameStarted, nil)

	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishPassesPayload(t *testing.T) {
	b := New()
	var got any
	b.Subscribe(GameExited, func(payload any) { got = payload })

	b.Publish(GameExited, 137)

	assert.Equal(t, 137, got)
}

func TestPublishWithNoSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Publish(JavaListReady, nil) })
}

func TestDistinctKindsDoNotCrossTalk(t *testing.T) {
	b := New()
	var gotStarted, gotExited bool
	b.Subscribe(GameStarted, func(payload any) { gotStarted = true })
	b.Subscribe(GameExited, func(payload any) { gotExited = true })

	b.Publish(GameStarted, nil)

	assert.True(t, gotStarted)
	assert.False(t, gotExited)
}
