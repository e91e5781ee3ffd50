// Package report wraps Sentry error reporting. Reporting is optional: without
// a SENTRY_DSN the package degrades to no-ops, because this is first and
// foremost a personal tool running on a laptop.
package report

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// Setup initializes Sentry when a DSN is configured.
func Setup() {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	}); err != nil {
		log.Printf("sentry.Init: %s", err)
		return
	}
	enabled = true
}

// Flush drains pending events; call it on the way out of main.
func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}

// Enabled reports whether events actually go anywhere.
func Enabled() bool { return enabled }

// ConfigureScope sets global scope tags describing this process.
func ConfigureScope(env, version string) {
	if !enabled {
		return
	}
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("env", env)
		scope.SetTag("app_version", version)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("goarch", runtime.GOARCH)
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": hostname(),
		})
	})
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// Options provides optional data attached to a report.
type Options struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
}

// ReportError reports the error with the given severity; nil errors are
// ignored. Defaults to sentry.LevelError.
func ReportError(err error, levels ...sentry.Level) {
	if err == nil || !enabled {
		return
	}
	level := sentry.LevelError
	if len(levels) > 0 {
		level = levels[0]
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		sentry.CaptureException(err)
	})
}

// ReportErrorWithOptions reports the error with tags, extra context and level.
func ReportErrorWithOptions(err error, opts Options) {
	if err == nil || !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if opts.ExtraContext != nil {
			scope.SetContext("extra", opts.ExtraContext)
		}
		for k, v := range opts.Tags {
			scope.SetTag(k, v)
		}
		if opts.Level != "" {
			scope.SetLevel(opts.Level)
		}
		sentry.CaptureException(err)
	})
}
