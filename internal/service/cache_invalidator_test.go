package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sqall01/alertR/alertr-common/mqtt"
)

type fakeSubscriber struct {
	topic    string
	qos      byte
	handler  mqtt.MessageHandler
	unsubbed []string
	err      error
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.topic, f.qos, f.handler = topic, qos, handler
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topics ...string) error {
	f.unsubbed = append(f.unsubbed, topics...)
	return nil
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

func TestCacheInvalidator_InvalidatesOnMessage(t *testing.T) {
	sub := &fakeSubscriber{}
	target := &countingInvalidator{}
	inv := NewCacheInvalidator(sub, target, "alertr/manager/update", 1, zap.NewNop())

	require.NoError(t, inv.Start())
	assert.Equal(t, "alertr/manager/update", sub.topic)
	assert.Equal(t, byte(1), sub.qos)

	require.NoError(t, sub.handler("alertr/manager/update", []byte(`{"changed":"sensors"}`)))
	require.NoError(t, sub.handler("alertr/manager/update", nil))
	assert.Equal(t, 2, target.calls)

	require.NoError(t, inv.Stop())
	assert.Equal(t, []string{"alertr/manager/update"}, sub.unsubbed)
}

func TestCacheInvalidator_Errors(t *testing.T) {
	sub := &fakeSubscriber{err: errors.New("not connected")}
	inv := NewCacheInvalidator(sub, &countingInvalidator{}, "t", 0, zap.NewNop())
	assert.ErrorContains(t, inv.Start(), "not connected")

	sub = &fakeSubscriber{}
	target := &countingInvalidator{err: errors.New("redis down")}
	inv = NewCacheInvalidator(sub, target, "t", 0, zap.NewNop())
	require.NoError(t, inv.Start())
	assert.ErrorContains(t, sub.handler("t", nil), "redis down")
}
