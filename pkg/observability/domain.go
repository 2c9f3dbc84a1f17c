package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Domain counters. They are created against the global meter, which forwards
// to the provider InitTelemetry installs; before that they are no-ops.
var (
	CrisesRaised        metric.Int64Counter
	CrisisStatusChanges metric.Int64Counter
	MessagesSent        metric.Int64Counter
	InvitesGenerated    metric.Int64Counter
	InvitesConsumed     metric.Int64Counter
)

func init() {
	meter := otel.Meter(instrumentationName)

	CrisesRaised = mustCounter(meter, "mindcare_crises_raised_total", "Crisis alerts raised by patients")
	CrisisStatusChanges = mustCounter(meter, "mindcare_crisis_status_changes_total", "Crisis status updates by psychologists")
	MessagesSent = mustCounter(meter, "mindcare_messages_sent_total", "Chat messages appended")
	InvitesGenerated = mustCounter(meter, "mindcare_invites_generated_total", "Invite codes issued")
	InvitesConsumed = mustCounter(meter, "mindcare_invites_consumed_total", "Invite codes redeemed by new patients")
}

func mustCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		panic(err)
	}
	return c
}
