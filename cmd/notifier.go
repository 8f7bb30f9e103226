package cmd

import (
	"io"

	"mcpdock/internal/formatting"
	"mcpdock/internal/report"
)

// consoleNotifier renders pipeline notifications to the terminal and
// mirrors them into the persisted notification history.
type consoleNotifier struct {
	out io.Writer
}

func (n *consoleNotifier) emit(severity report.Severity, severityName, title, body string) {
	formatting.RenderMessage(n.out, report.Message{Severity: severity, Title: title, Body: body})
	settings.AppendNotification(severityName, title, body)
}

func (n *consoleNotifier) Info(title, body string) {
	n.emit(report.SeverityInfo, "info", title, body)
}

func (n *consoleNotifier) Success(title, body string) {
	n.emit(report.SeveritySuccess, "success", title, body)
}

func (n *consoleNotifier) Warning(title, body string) {
	n.emit(report.SeverityWarning, "warning", title, body)
}

func (n *consoleNotifier) Error(title, body string) {
	n.emit(report.SeverityError, "error", title, body)
}
