package services

import (
	"context"
	"sync"
	"time"
)

// EmailProbe debounces "does this email already have an account" lookups.
// Each edit resets the cached result and restarts the debounce window; a
// lookup result is applied only when it belongs to the most recent edit, so
// a stale response can never overwrite a newer one.
type EmailProbe struct {
	lookup func(ctx context.Context, email string) (bool, error)
	delay  time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	seq    uint64
	email  string
	exists bool
}

func NewEmailProbe(lookup func(ctx context.Context, email string) (bool, error), delay time.Duration) *EmailProbe {
	return &EmailProbe{
		lookup: lookup,
		delay:  delay,
	}
}

// Changed records an edit. When probe is true a lookup is scheduled after the
// quiet period; either way the cached result is reset until the lookup lands.
func (p *EmailProbe) Changed(email string, probe bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.email = email
	p.exists = false

	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if !probe || email == "" {
		return
	}

	seq := p.seq
	p.timer = time.AfterFunc(p.delay, func() {
		p.run(seq, email)
	})
}

func (p *EmailProbe) run(seq uint64, email string) {
	exists, err := p.lookup(context.Background(), email)
	if err != nil {
		// advisory only; a failed probe just means no login hint
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq != p.seq || email != p.email {
		return
	}
	p.exists = exists
}

// Exists returns the cached result for the current email.
func (p *EmailProbe) Exists() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exists
}

// SetExists overrides the cached result, used when another operation (e.g.
// sending a verification code) learns the email is registered.
func (p *EmailProbe) SetExists(exists bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exists = exists
}

// Stop cancels any pending lookup.
func (p *EmailProbe) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
