package navigator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubOpenURL(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := openURL
	openURL = fn
	t.Cleanup(func() { openURL = orig })
}

func TestBrowser_Navigate(t *testing.T) {
	var opened string
	stubOpenURL(t, func(u string) error {
		opened = u
		return nil
	})

	nav := &Browser{}
	require.NoError(t, nav.Navigate(context.Background(), "https://sso.example.com/oauth/authorize?state=x"))
	assert.Equal(t, "https://sso.example.com/oauth/authorize?state=x", opened)
}

func TestBrowser_FallsBackToPrint(t *testing.T) {
	stubOpenURL(t, func(string) error { return errors.New("no display") })

	var buf bytes.Buffer
	nav := &Browser{Fallback: &buf}
	require.NoError(t, nav.Navigate(context.Background(), "https://sso.example.com/x"))
	assert.Contains(t, buf.String(), "https://sso.example.com/x")
}

func TestBrowser_NoFallbackReturnsError(t *testing.T) {
	stubOpenURL(t, func(string) error { return errors.New("no display") })

	err := (&Browser{}).Navigate(context.Background(), "https://sso.example.com/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open browser")
}

func TestPrint_Navigate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&Print{W: &buf}).Navigate(context.Background(), "http://localhost:5173/"))
	assert.Equal(t, "Open this URL in your browser:\n  http://localhost:5173/\n", buf.String())
}
