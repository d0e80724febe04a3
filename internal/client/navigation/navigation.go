// Package navigation names the screens the client can switch to. Routing
// itself belongs to the presentation layer behind the Navigator interface.
package navigation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/atinyakov/MediaKeeper/internal/logger"
	"go.uber.org/zap"
)

// Route is a named navigation target.
type Route string

const (
	Home           Route = "home"
	About          Route = "about"
	ForgotPassword Route = "ForgotPassword"
	ResetPassword  Route = "ResetPassword"
)

var paths = map[Route]string{
	Home:           "/",
	About:          "/about",
	ForgotPassword: "/forgot-password",
	ResetPassword:  "/reset-password",
}

// Routes lists every known route in display order.
func Routes() []Route {
	return []Route{Home, About, ForgotPassword, ResetPassword}
}

// Path returns the URL path of r, or "" for an unknown route.
func (r Route) Path() string {
	return paths[r]
}

// Valid reports whether r is a known route.
func (r Route) Valid() bool {
	_, ok := paths[r]
	return ok
}

// ParseRoute resolves a route name (case-insensitive) or its path.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	for r, p := range paths {
		if strings.EqualFold(s, string(r)) || s == p {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", s)
}

// Navigator switches the UI to a route.
type Navigator interface {
	Navigate(r Route) error
}

// Log is a Navigator for headless front ends: it logs each navigation and
// remembers the current route.
type Log struct {
	log *zap.Logger

	mu      sync.RWMutex
	current Route
}

// NewLog returns a Log positioned on Home.
func NewLog(log *zap.Logger) *Log {
	return &Log{log: logger.OrNop(log), current: Home}
}

func (l *Log) Navigate(r Route) error {
	if !r.Valid() {
		return fmt.Errorf("unknown route %q", r)
	}
	l.mu.Lock()
	from := l.current
	l.current = r
	l.mu.Unlock()

	l.log.Debug("navigate", zap.String("from", string(from)), zap.String("to", string(r)))
	return nil
}

// Current returns the route last navigated to.
func (l *Log) Current() Route {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}
