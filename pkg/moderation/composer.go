package moderation

import (
	"sync"
	"time"
)

// Composer owns one text box: the draft text, its latest validation report,
// and the submit gate. Validation runs debounced as the text changes and
// synchronously at submit time, so the gate never acts on a stale report.
type Composer struct {
	mu        sync.Mutex
	kind      Kind
	validator *Validator
	debouncer *Debouncer
	text      string
	report    Report
	onChange  func(Report)
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithDebounce validates after the delay instead of on every keystroke.
func WithDebounce(delay time.Duration) ComposerOption {
	return func(c *Composer) {
		c.debouncer = NewDebouncer(delay)
	}
}

// WithOnChange registers a callback invoked with each fresh report.
func WithOnChange(fn func(Report)) ComposerOption {
	return func(c *Composer) {
		c.onChange = fn
	}
}

// NewComposer constructs a composer for the given kind.
func NewComposer(validator *Validator, kind Kind, opts ...ComposerOption) *Composer {
	c := &Composer{
		kind:      kind,
		validator: validator,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.report = validator.Validate(kind, "")
	return c
}

// SetText updates the draft and schedules validation.
func (c *Composer) SetText(text string) {
	c.mu.Lock()
	c.text = text
	debouncer := c.debouncer
	c.mu.Unlock()
	if debouncer == nil {
		c.revalidate()
		return
	}
	debouncer.Schedule(func() { c.revalidate() })
}

// Restore puts text back after a failed submission and validates it
// immediately so the composer reopens ready to retry.
func (c *Composer) Restore(text string) {
	if c.debouncer != nil {
		c.debouncer.Cancel()
	}
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	c.revalidate()
}

// Text returns the current draft.
func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Report returns the latest validation report.
func (c *Composer) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.report
}

// CanSubmit revalidates the current draft and reports whether it may be
// posted.
func (c *Composer) CanSubmit() bool {
	if c.debouncer != nil {
		c.debouncer.Cancel()
	}
	return c.revalidate().Allowed()
}

// Clear resets the draft after a successful submission.
func (c *Composer) Clear() {
	if c.debouncer != nil {
		c.debouncer.Cancel()
	}
	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
	c.revalidate()
}

// Close cancels any pending validation.
func (c *Composer) Close() {
	if c.debouncer != nil {
		c.debouncer.Cancel()
	}
}

func (c *Composer) revalidate() Report {
	c.mu.Lock()
	text := c.text
	c.mu.Unlock()

	report := c.validator.Validate(c.kind, text)

	c.mu.Lock()
	c.report = report
	onChange := c.onChange
	c.mu.Unlock()
	if onChange != nil {
		onChange(report)
	}
	return report
}
