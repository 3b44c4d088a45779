package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"attachbridge/internal/model"
)

// DefaultTimeout bounds a single automation call.
const DefaultTimeout = 10 * time.Second

const successMessage = "Outlook opened successfully"

// Dispatcher opens the mail client through the Mailer chosen for the host.
// Every call is a single attempt; failures are reported, never retried.
type Dispatcher struct {
	mailer  Mailer
	timeout time.Duration
}

// New selects the Mailer for goos (normally runtime.GOOS) once.
func New(goos string, runner Runner, timeout time.Duration) *Dispatcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return NewWithMailer(ForPlatform(goos, runner), timeout)
}

// NewWithMailer builds a Dispatcher around an explicit Mailer.
func NewWithMailer(m Mailer, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{mailer: m, timeout: timeout}
}

// Platform reports the host platform the dispatcher was built for.
func (d *Dispatcher) Platform() string { return d.mailer.Platform() }

// OpenMailWithAttachment opens a draft with filePath attached and reports the
// outcome. It never returns an error: failures become Success=false.
func (d *Dispatcher) OpenMailWithAttachment(ctx context.Context, filePath string) model.AttachResult {
	if err := d.Attach(ctx, filePath); err != nil {
		return model.AttachResult{Success: false, Message: err.Error()}
	}
	return model.AttachResult{Success: true, Message: successMessage}
}

// Attach is OpenMailWithAttachment with the typed error kept.
func (d *Dispatcher) Attach(ctx context.Context, filePath string) error {
	ctx, span := otel.Tracer("attachbridge/dispatch").Start(ctx, "dispatch.Attach")
	defer span.End()
	span.SetAttributes(attribute.String("attach.platform", d.mailer.Platform()))

	err := d.attach(ctx, filePath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (d *Dispatcher) attach(ctx context.Context, filePath string) error {
	// A client hanging up must not abort an automation that already started.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	return d.mailer.Open(ctx, filePath)
}
