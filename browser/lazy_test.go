package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBrowser struct {
	sessions int
	closed   int
}

func (b *stubBrowser) NewSession(context.Context, SessionOptions) (Session, error) {
	b.sessions++
	return nil, nil
}

func (b *stubBrowser) Close() error {
	b.closed++
	return nil
}

func TestLazyBrowserLaunchesOnce(t *testing.T) {
	launches := 0
	stub := &stubBrowser{}
	l := &LazyBrowser{launch: func() (Browser, error) {
		launches++
		return stub, nil
	}}
	assert.False(t, l.Launched())
	require.NoError(t, l.Close())

	_, err := l.NewSession(context.Background(), SessionOptions{})
	require.NoError(t, err)
	_, err = l.NewSession(context.Background(), SessionOptions{})
	require.NoError(t, err)

	assert.True(t, l.Launched())
	assert.Equal(t, 1, launches)
	assert.Equal(t, 2, stub.sessions)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.Equal(t, 1, stub.closed)
}

func TestLazyBrowserKeepsLaunchError(t *testing.T) {
	launches := 0
	l := &LazyBrowser{launch: func() (Browser, error) {
		launches++
		return nil, errors.New("no browsers installed")
	}}
	for i := 0; i < 2; i++ {
		_, err := l.NewSession(context.Background(), SessionOptions{})
		assert.EqualError(t, err, "no browsers installed")
	}
	assert.Equal(t, 1, launches)
	assert.False(t, l.Launched())
}

func TestLazyUnknownEngine(t *testing.T) {
	_, err := Lazy("selenium", LaunchOptions{}).NewSession(context.Background(), SessionOptions{})
	assert.Error(t, err)
}
