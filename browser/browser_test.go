package browser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchRejectsUnknownEngine(t *testing.T) {
	_, err := Launch("selenium", LaunchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown browser engine "selenium"`)
}

func TestChromedpOnlyDrivesChromium(t *testing.T) {
	_, err := Launch(EngineChromedp, LaunchOptions{Browser: "firefox"})
	require.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	u, err := resolveURL("https://parabank.parasoft.com/parabank/", "index.htm")
	require.NoError(t, err)
	assert.Equal(t, "https://parabank.parasoft.com/parabank/index.htm", u)

	u, err = resolveURL("https://parabank.parasoft.com/parabank/", "/")
	require.NoError(t, err)
	assert.Equal(t, "https://parabank.parasoft.com/", u)

	u, err = resolveURL("", "http://localhost:8080/x")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/x", u)

	u, err = resolveURL("http://localhost:8080", "https://example.com/a")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", u)
}

func TestTimeoutErrorMatchesSentinel(t *testing.T) {
	err := timeoutError(errors.New("deadline"), `clicking "#go"`)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), `clicking "#go"`)
}

func TestCloseOnDoneClosesWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	closed := make(chan struct{})
	stop := CloseOnDone(ctx, func() { close(closed) })
	defer stop()

	cancel()
	select {
	case <-closed:
	case <-time.After(time.Second):
		require.Fail(t, "session was not closed after its context ended")
	}
}

func TestCloseOnDoneStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int32
	stop := CloseOnDone(ctx, func() { atomic.AddInt32(&calls, 1) })
	stop()
	stop()
	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClosedErrorMatchesSentinel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := closedError(ctx, `filling "#user"`)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, `filling "#user": browser session closed: context canceled`, err.Error())
}

func TestKeySequence(t *testing.T) {
	assert.Equal(t, kb.Enter, keySequence("Enter"))
	assert.Equal(t, kb.Escape, keySequence("Escape"))
	assert.Equal(t, "a", keySequence("a"))
}

func TestChromedpLocatorElementsExpression(t *testing.T) {
	l := &chromedpLocator{selector: `input[name="username"]`}
	assert.Equal(t, `Array.from(document.querySelectorAll("input[name=\"username\"]"))`, l.elements())
	first := l.First().(*chromedpLocator)
	assert.Equal(t, `[document.querySelector("input[name=\"username\"]")].filter(Boolean)`, first.elements())
	assert.Equal(t, l.Selector(), first.Selector())
}
