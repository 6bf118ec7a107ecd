package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

// CaptureError reports err to Sentry tagged with the component that failed.
// It is a no-op when Sentry was never initialised.
func CaptureError(component string, err error) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		sentry.CaptureException(err)
	})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
