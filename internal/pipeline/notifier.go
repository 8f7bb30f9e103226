package pipeline

import (
	"mcpdock/internal/report"
	"mcpdock/pkg/logging"
)

// Notifier is the injected notification sink the pipeline reports through.
// There is deliberately no global notification store; whoever owns the flow
// decides where messages go.
type Notifier interface {
	Info(title, body string)
	Success(title, body string)
	Warning(title, body string)
	Error(title, body string)
}

// NopNotifier discards all notifications. Useful in tests and for headless
// callers that read flow state directly.
type NopNotifier struct{}

func (NopNotifier) Info(title, body string)    {}
func (NopNotifier) Success(title, body string) {}
func (NopNotifier) Warning(title, body string) {}
func (NopNotifier) Error(title, body string)   {}

// LogNotifier forwards notifications to the logging subsystem.
type LogNotifier struct{}

func (LogNotifier) Info(title, body string)    { logging.Info("Notify", "%s: %s", title, body) }
func (LogNotifier) Success(title, body string) { logging.Info("Notify", "%s: %s", title, body) }
func (LogNotifier) Warning(title, body string) { logging.Warn("Notify", "%s: %s", title, body) }
func (LogNotifier) Error(title, body string) {
	logging.Error("Notify", nil, "%s: %s", title, body)
}

// notify dispatches a classified report message to the sink.
func notify(n Notifier, msg report.Message) {
	switch msg.Severity {
	case report.SeveritySuccess:
		n.Success(msg.Title, msg.Body)
	case report.SeverityWarning:
		n.Warning(msg.Title, msg.Body)
	case report.SeverityError:
		n.Error(msg.Title, msg.Body)
	default:
		n.Info(msg.Title, msg.Body)
	}
}
