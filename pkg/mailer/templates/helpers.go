package templates

import (
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = strings.TrimSpace(ip) } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

// NewWelcomeData fills the welcome template fields, then applies opts.
func NewWelcomeData(appName, name, email, accountType string, opts ...Option) map[string]any {
	d := EmailData{
		Name:        name,
		Email:       email,
		AppName:     appName,
		AccountType: accountType,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return ToMap(d)
}
