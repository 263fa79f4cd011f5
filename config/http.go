package config

import (
	"net"
	"net/url"
	"strings"
)

// NavigatorKind selects how full-page navigations are performed.
type NavigatorKind string

const (
	// NavigatorBrowser opens URLs in the system browser.
	NavigatorBrowser NavigatorKind = "browser"
	// NavigatorPrint writes URLs to stdout for the user to open.
	NavigatorPrint NavigatorKind = "print"
)

// AppURLConfig contains the application URLs used for navigation.
type AppURLConfig struct {
	// EntryURL is where logout navigates to.
	EntryURL string `env:"ENTRY_URL" envDefault:"http://localhost:5173/"`

	// PostLoginURL is where the callback server redirects after a successful login.
	// Defaults to EntryURL.
	PostLoginURL string `env:"POST_LOGIN_URL"`
}

// Sanitize defaults PostLoginURL to EntryURL.
func (a *AppURLConfig) Sanitize() {
	a.EntryURL = strings.TrimSpace(a.EntryURL)
	a.PostLoginURL = strings.TrimSpace(a.PostLoginURL)
	if a.PostLoginURL == "" {
		a.PostLoginURL = a.EntryURL
	}
}

// HTTPConfig contains configuration for the loopback callback server.
type HTTPConfig struct {
	// Navigator selects the navigation adapter.
	Navigator NavigatorKind `env:"NAVIGATOR" envDefault:"browser"`

	// CallbackAddr is the address the callback server binds to.
	// Derived from the redirect URI host when empty.
	CallbackAddr string `env:"CALLBACK_ADDR"`

	// CallbackPath is the path the callback server handles.
	// Derived from the redirect URI path when empty.
	CallbackPath string `env:"CALLBACK_PATH"`
}

// Sanitize derives the callback listen address and path from the redirect URI.
func (h *HTTPConfig) Sanitize(redirectURI string) {
	if h.Navigator != NavigatorPrint {
		h.Navigator = NavigatorBrowser
	}
	h.CallbackAddr = strings.TrimSpace(h.CallbackAddr)
	h.CallbackPath = strings.TrimSpace(h.CallbackPath)

	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		if h.CallbackPath == "" {
			h.CallbackPath = "/auth/callback"
		}
		return
	}
	if h.CallbackAddr == "" {
		port := u.Port()
		if port == "" {
			port = "80"
			if u.Scheme == "https" {
				port = "443"
			}
		}
		h.CallbackAddr = net.JoinHostPort(u.Hostname(), port)
	}
	if h.CallbackPath == "" {
		h.CallbackPath = u.Path
		if h.CallbackPath == "" {
			h.CallbackPath = "/"
		}
	}
}
