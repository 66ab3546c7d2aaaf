package mdevaluation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractrisk/internal/app/domains/entity/etevaluation"
)

type recordingPublisher struct {
	queue string
	data  []byte
}

func (p *recordingPublisher) Publish(queue string, data []byte, delay time.Duration) (string, error) {
	p.queue = queue
	p.data = data
	return "job-1", nil
}

type recordingBus struct {
	listened  []string
	published map[string]string
}

func (b *recordingBus) Listen(ctx context.Context, channel string) (ResultWaiter, error) {
	b.listened = append(b.listened, channel)
	return nil, nil
}

func (b *recordingBus) Publish(ctx context.Context, channel string, message string) error {
	if b.published == nil {
		b.published = map[string]string{}
	}
	b.published[channel] = message
	return nil
}

func TestPublishEvaluateJob_RoundTrip(t *testing.T) {
	pub := &recordingPublisher{}
	m := NewEvaluationModule(pub, &recordingBus{}, "contract_evaluate")

	ev, err := etevaluation.NewEvaluation("ev-1", "the contract")
	require.NoError(t, err)

	jobID, err := m.PublishEvaluateJob(context.Background(), "req-1", ev, "the contract")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "contract_evaluate", pub.queue)

	data, err := DecodeJob(pub.data)
	require.NoError(t, err)
	assert.Equal(t, "req-1", data.RequestID)
	assert.Equal(t, "ev-1", data.ID)
	assert.Equal(t, "ev-1", data.Data.EvaluationID)
	assert.Equal(t, "the contract", data.Data.ContractText)
	assert.Equal(t, ev.ContractDigest, data.Data.ContractDigest)
}

func TestDecodeJob_Rejects(t *testing.T) {
	_, err := DecodeJob([]byte("not json"))
	assert.ErrorIs(t, err, ErrMalformedJob)

	_, err = DecodeJob([]byte(`{"payload":{"data":{"action_type":"order_diagnose","data":{"evaluation_id":"x"}}}}`))
	assert.ErrorIs(t, err, ErrUnsupportedAction)

	_, err = DecodeJob([]byte(`{"payload":{"data":{"action_type":"contract_evaluate","data":{}}}}`))
	assert.ErrorIs(t, err, ErrMalformedJob)
}

func TestNotifyResult(t *testing.T) {
	bus := &recordingBus{}
	m := NewEvaluationModule(&recordingPublisher{}, bus, "q")

	ev, err := etevaluation.NewEvaluation("ev-9", "text")
	require.NoError(t, err)
	ev.Fail("boom")

	require.NoError(t, m.NotifyResult(context.Background(), ev))

	raw, ok := bus.published["evaluation:result:ev-9"]
	require.True(t, ok)
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	assert.Equal(t, "ev-9", n.EvaluationID)
	assert.Equal(t, "FAILED", n.Status)
	assert.NotZero(t, n.Timestamp)

	_, _ = m.ListenResult(context.Background(), "ev-9")
	assert.Equal(t, []string{"evaluation:result:ev-9"}, bus.listened)
}
