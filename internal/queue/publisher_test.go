package queue

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	sent   []ReservationEvent
	fail   error
	closed bool
}

func (s *recordingSender) send(_ context.Context, ev ReservationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		err := s.fail
		s.fail = nil
		return err
	}
	s.sent = append(s.sent, ev)
	return nil
}

func (s *recordingSender) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// syncBuffer is a log sink safe to read while the run loop writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}

func newClock() *manualClock {
	return &manualClock{now: time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func TestPublisher_DeliversAndDrainsOnClose(t *testing.T) {
	s := &recordingSender{}
	var dials atomic.Int32
	p := newPublisher(func() (sender, error) {
		dials.Add(1)
		return s, nil
	}, DefaultQueue, zerolog.Nop(), 8, time.Second, newClock().Now)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	}
	require.NoError(t, p.Close())

	assert.Equal(t, 3, s.count())
	assert.Equal(t, int32(1), dials.Load())
	assert.True(t, s.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), sampleEvent()), ErrPublisherClosed)
	assert.NoError(t, p.Close())
}

func TestPublisher_PublishDoesNotWaitForBroker(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := newPublisher(func() (sender, error) {
		close(started)
		<-release
		return nil, errors.New("connection timed out")
	}, DefaultQueue, zerolog.Nop(), 1, time.Minute, newClock().Now)

	begin := time.Now()
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	<-started // the run loop is stuck dialing

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	assert.ErrorIs(t, p.Publish(context.Background(), sampleEvent()), ErrBufferFull)
	assert.Less(t, time.Since(begin), 500*time.Millisecond)

	close(release)
	require.NoError(t, p.Close())
}

func TestPublisher_BacksOffAfterDialFailure(t *testing.T) {
	clock := newClock()
	logs := &syncBuffer{}
	s := &recordingSender{}
	var dials atomic.Int32
	var up atomic.Bool
	p := newPublisher(func() (sender, error) {
		dials.Add(1)
		if !up.Load() {
			return nil, errors.New("connection refused")
		}
		return s, nil
	}, DefaultQueue, zerolog.New(logs), 8, 5*time.Second, clock.Now)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Eventually(t, func() bool { return dials.Load() == 1 }, time.Second, 5*time.Millisecond)

	// Within the back-off window nothing is dialed.
	up.Store(true)
	clock.Advance(time.Second)
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Eventually(t, func() bool { return logs.Contains("broker unavailable, event dropped") },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), dials.Load())
	assert.Equal(t, 0, s.count())

	clock.Advance(5 * time.Second)
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Close())

	assert.Equal(t, int32(2), dials.Load())
	assert.Equal(t, 1, s.count())
}

func TestPublisher_RedialsAfterSendFailure(t *testing.T) {
	s := &recordingSender{fail: errors.New("channel closed")}
	var dials atomic.Int32
	p := newPublisher(func() (sender, error) {
		dials.Add(1)
		return s, nil
	}, DefaultQueue, zerolog.Nop(), 8, time.Second, newClock().Now)

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.NoError(t, p.Close())

	assert.Equal(t, int32(2), dials.Load())
	assert.Equal(t, 1, s.count())
}
