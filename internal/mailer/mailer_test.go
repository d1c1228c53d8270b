package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	name string
	fail bool

	mu    sync.Mutex
	sends []string
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Send(_ context.Context, to, subject, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New(f.name + " is down")
	}
	f.sends = append(f.sends, to+"|"+subject)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

func TestDispatchUsesPrimaryChannel(t *testing.T) {
	primary := &fakeNotifier{name: "primary"}
	fallback := &fakeNotifier{name: "fallback"}
	m := NewWithChannels("ops@example.com", primary, fallback)

	m.Dispatch("user@example.com", "hello", "<p>hi</p>")

	require.Eventually(t, func() bool { return primary.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, fallback.count(), "fallback must stay idle while primary works")
}

func TestDispatchFallsBack(t *testing.T) {
	primary := &fakeNotifier{name: "primary", fail: true}
	fallback := &fakeNotifier{name: "fallback"}
	m := NewWithChannels("ops@example.com", primary, fallback)

	m.Dispatch("user@example.com", "hello", "<p>hi</p>")

	require.Eventually(t, func() bool { return fallback.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestDispatchAbsorbsTotalFailure(t *testing.T) {
	primary := &fakeNotifier{name: "primary", fail: true}
	fallback := &fakeNotifier{name: "fallback", fail: true}
	m := NewWithChannels("ops@example.com", primary, fallback)

	// Must not panic or surface an error to the caller.
	m.Dispatch("user@example.com", "hello", "<p>hi</p>")
	time.Sleep(50 * time.Millisecond)
}

func TestDispatchWithoutChannels(t *testing.T) {
	m := NewWithChannels("ops@example.com")
	m.Dispatch("user@example.com", "hello", "<p>hi</p>")
	time.Sleep(20 * time.Millisecond)
}

func TestNotifyOperatorTargetsConfiguredAddress(t *testing.T) {
	primary := &fakeNotifier{name: "primary"}
	m := NewWithChannels("ops@example.com", primary)

	m.NotifyOperator("alert", "<p>new inquiry</p>")

	require.Eventually(t, func() bool { return primary.count() == 1 }, time.Second, 10*time.Millisecond)
	primary.mu.Lock()
	defer primary.mu.Unlock()
	assert.Equal(t, "ops@example.com|alert", primary.sends[0])
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	out := render(contactReplyTmpl, ContactMailData{
		Name:    "<script>alert(1)</script>",
		Message: "hello & goodbye",
		SiteURL: "https://noveos.jp",
	})
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}
