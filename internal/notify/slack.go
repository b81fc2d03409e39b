package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"github.com/vibhukrishnas/sams-sub016/internal/database"
	"github.com/vibhukrishnas/sams-sub016/internal/engine"
)

// SlackSink posts alert events to a Slack channel
type SlackSink struct {
	client  *slack.Client
	channel string
}

// NewSlackSink creates a Slack sink for the given bot token and channel
func NewSlackSink(botToken, channel string) *SlackSink {
	return &SlackSink{
		client:  slack.New(botToken),
		channel: channel,
	}
}

// Notify posts the event to the configured channel. Failures are logged;
// delivery guarantees are out of scope for the engine.
func (s *SlackSink) Notify(event engine.AlertEvent) {
	attachment := slack.Attachment{
		Color: severityColor(event.Alert.Severity),
		Title: fmt.Sprintf("%s: %s", eventHeadline(event.Type), event.Alert.Summary),
		Text:  formatEventText(event),
	}

	_, _, err := s.client.PostMessage(s.channel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		log.Printf("Failed to post alert event to Slack channel %s: %v", s.channel, err)
	}
}

func eventHeadline(eventType engine.EventType) string {
	switch eventType {
	case engine.EventAlertCreated:
		return "New Alert"
	case engine.EventAlertFiring:
		return "Alert Firing"
	case engine.EventAlertAcknowledged:
		return "Alert Acknowledged"
	case engine.EventAlertResolved:
		return "Alert Resolved"
	default:
		return "Alert Event"
	}
}

func formatEventText(event engine.AlertEvent) string {
	var sb strings.Builder
	alert := event.Alert

	sb.WriteString(fmt.Sprintf("*Severity:* %s\n", alert.Severity))
	sb.WriteString(fmt.Sprintf("*Target:* %s\n", alert.TargetName))
	sb.WriteString(fmt.Sprintf("*Metric:* %s (%.2f, threshold %.2f)\n",
		alert.MetricName, alert.MetricValue, alert.ThresholdValue))

	switch event.Type {
	case engine.EventAlertAcknowledged:
		sb.WriteString(fmt.Sprintf("*Acknowledged by:* %s", alert.AcknowledgedBy))
		if alert.AcknowledgmentComment != "" {
			sb.WriteString(fmt.Sprintf(": %s", alert.AcknowledgmentComment))
		}
		sb.WriteString("\n")
	case engine.EventAlertResolved:
		sb.WriteString(fmt.Sprintf("*Resolution:* %s\n", alert.ResolutionReason))
	}

	if alert.CorrelationGroupID != nil {
		sb.WriteString(fmt.Sprintf("*Correlation group:* %s\n", *alert.CorrelationGroupID))
	}

	return sb.String()
}

func severityColor(severity database.AlertSeverity) string {
	switch severity {
	case database.AlertSeverityCritical:
		return "#d40e0d"
	case database.AlertSeverityHigh:
		return "#e8590c"
	case database.AlertSeverityMedium:
		return "#f2c744"
	case database.AlertSeverityLow:
		return "#2eb67d"
	default:
		return "#808080"
	}
}
