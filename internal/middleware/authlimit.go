package middleware

import (
	"sync"
	"time"
)

const (
	authMaxFailures   = 5
	authFailureWindow = time.Minute
	authCleanupPeriod = 5 * time.Minute
)

type authFailure struct {
	count       int
	windowStart time.Time
}

// AuthFailureLimiter locks an IP out of the operator gate after repeated
// failed credential checks within a window.
type AuthFailureLimiter struct {
	mu          sync.Mutex
	failures    map[string]*authFailure
	lastCleanup time.Time
	now         func() time.Time
}

func NewAuthFailureLimiter() *AuthFailureLimiter {
	return &AuthFailureLimiter{
		failures:    make(map[string]*authFailure),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (l *AuthFailureLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < authCleanupPeriod {
		return
	}
	l.lastCleanup = now

	for ip, f := range l.failures {
		if now.Sub(f.windowStart) > authFailureWindow {
			delete(l.failures, ip)
		}
	}
}

func (l *AuthFailureLimiter) Blocked(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.failures[ip]
	if !ok {
		return false
	}
	if l.now().Sub(f.windowStart) > authFailureWindow {
		delete(l.failures, ip)
		return false
	}
	return f.count >= authMaxFailures
}

func (l *AuthFailureLimiter) RecordFailure(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	f, ok := l.failures[ip]
	if !ok || now.Sub(f.windowStart) > authFailureWindow {
		l.failures[ip] = &authFailure{count: 1, windowStart: now}
		return
	}
	f.count++
}
