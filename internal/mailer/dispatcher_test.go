// SPDX-License-Identifier: MIT

package mailer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []job
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, job{to: to, subject: subject, body: body})
	return nil
}

func (f *fakeSender) delivered() []job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]job, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestDispatcher_DeliversQueuedMail(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{}
	d := NewDispatcher(sender, 8, zerolog.Nop())
	d.Start()

	d.Enqueue("user@example.com", "Hello", "<p>hi</p>")

	require.Eventually(t, func() bool {
		return len(sender.delivered()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	got := sender.delivered()[0]
	assert.Equal(t, "user@example.com", got.to)
	assert.Equal(t, "Hello", got.subject)

	d.Close()
}

func TestDispatcher_SendFailureDoesNotStopWorker(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{err: errors.New("relay down")}
	d := NewDispatcher(sender, 8, zerolog.Nop())
	d.Start()

	d.Enqueue("a@example.com", "s", "b")

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	d.Enqueue("b@example.com", "s", "b")

	require.Eventually(t, func() bool {
		return len(sender.delivered()) == 1
	}, 10*time.Second, 10*time.Millisecond)
	assert.Equal(t, "b@example.com", sender.delivered()[0].to)

	d.Close()
}

func TestDispatcher_EnqueueNeverBlocksWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{}
	d := NewDispatcher(sender, 1, zerolog.Nop())
	// Worker never started, so the queue fills up.

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			d.Enqueue("user@example.com", "s", "b")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestDispatcher_CloseDrainsQueuedMail(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &fakeSender{}
	d := NewDispatcher(sender, 8, zerolog.Nop())
	d.Start()

	for i := 0; i < 3; i++ {
		d.Enqueue("user@example.com", "s", "b")
	}
	d.Close()

	assert.Len(t, sender.delivered(), 3)

	// Enqueue after Close is a counted drop, not a panic.
	d.Enqueue("late@example.com", "s", "b")
	assert.Len(t, sender.delivered(), 3)
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(&fakeSender{}, 8, zerolog.Nop())
	d.Close() // never started

	d.Start()
	d.Start() // second start is a no-op
	d.Close()
	d.Close()
}

func TestVerificationBody(t *testing.T) {
	body := VerificationBody("http://127.0.0.1:8000", "tok+en")
	assert.Contains(t, body, "http://127.0.0.1:8000/contacts/verify?token=tok%2Ben")
	assert.True(t, strings.Contains(body, "<a href="))
}
