// Package status holds the transient user-facing banner that actions report to.
package status

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Kind is the banner severity.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Message is one banner.
type Message struct {
	Kind Kind
	Text string
	At   time.Time
	// TTL is how long the banner stays up; zero keeps it until replaced or dismissed.
	TTL time.Duration
}

// Expired reports whether the message should no longer be shown at now.
func (m Message) Expired(now time.Time) bool {
	return m.TTL > 0 && now.Sub(m.At) >= m.TTL
}

// Policy decides how long each kind of banner is shown.
type Policy struct {
	SuccessTTL time.Duration
	InfoTTL    time.Duration
	ErrorTTL   time.Duration
}

// DefaultPolicy dismisses success and info after five seconds and keeps errors.
func DefaultPolicy() Policy {
	return Policy{
		SuccessTTL: 5 * time.Second,
		InfoTTL:    5 * time.Second,
	}
}

// ErrShortErrorTTL is returned when errors would vanish before successes.
var ErrShortErrorTTL = errors.New("error banners must stay up at least as long as success and info banners")

// Validate checks that errors remain visible at least as long as successes.
func (p Policy) Validate() error {
	if p.SuccessTTL < 0 || p.InfoTTL < 0 || p.ErrorTTL < 0 {
		return fmt.Errorf("banner durations must not be negative")
	}
	if p.ErrorTTL == 0 {
		return nil
	}
	if (p.SuccessTTL == 0 || p.ErrorTTL < p.SuccessTTL) || (p.InfoTTL == 0 || p.ErrorTTL < p.InfoTTL) {
		return ErrShortErrorTTL
	}
	return nil
}

// TTL returns the display duration for kind.
func (p Policy) TTL(k Kind) time.Duration {
	switch k {
	case KindSuccess:
		return p.SuccessTTL
	case KindInfo:
		return p.InfoTTL
	}
	return p.ErrorTTL
}

// Notifier receives banner messages.
type Notifier interface {
	Notify(Message)
}

// NotifierFunc adapts a func to Notifier.
type NotifierFunc func(Message)

// Notify implements Notifier.
func (f NotifierFunc) Notify(m Message) { f(m) }

// Banner keeps the latest message and forwards each one to an optional sink.
type Banner struct {
	mu     sync.Mutex
	policy Policy
	cur    *Message
	sink   Notifier
	now    func() time.Time
}

// NewBanner creates a banner using policy. sink may be nil.
func NewBanner(policy Policy, sink Notifier) *Banner {
	return &Banner{policy: policy, sink: sink, now: time.Now}
}

// Show replaces the current banner.
func (b *Banner) Show(kind Kind, format string, args ...any) Message {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	b.mu.Lock()
	m := Message{Kind: kind, Text: text, At: b.now(), TTL: b.policy.TTL(kind)}
	b.cur = &m
	sink := b.sink
	b.mu.Unlock()
	if sink != nil {
		sink.Notify(m)
	}
	return m
}

// Success shows a success banner.
func (b *Banner) Success(format string, args ...any) { b.Show(KindSuccess, format, args...) }

// Info shows an informational banner.
func (b *Banner) Info(format string, args ...any) { b.Show(KindInfo, format, args...) }

// Warning shows a warning banner. Warnings follow the error TTL.
func (b *Banner) Warning(format string, args ...any) { b.Show(KindWarning, format, args...) }

// Error shows an error banner.
func (b *Banner) Error(format string, args ...any) { b.Show(KindError, format, args...) }

// Current returns the visible banner, if any.
func (b *Banner) Current() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil {
		return Message{}, false
	}
	if b.cur.Expired(b.now()) {
		b.cur = nil
		return Message{}, false
	}
	return *b.cur, true
}

// Dismiss clears the banner.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	b.cur = nil
	b.mu.Unlock()
}
