package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemindersScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Reminder jobs enqueued into the delay store",
		},
		[]string{"type"}, // type: meet, lecture
	)

	RemindersCanceled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_canceled_total",
			Help: "Reminder cancellation calls issued",
		},
		[]string{"type"},
	)

	RemindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_fired_total",
			Help: "Reminder jobs consumed by the dispatcher",
		},
		[]string{"type"},
	)

	ChannelSends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_channel_sends_total",
			Help: "Per-channel delivery attempts by outcome",
		},
		[]string{"channel", "status"}, // channel: email, telegram; status: ok, error
	)

	QueueHandoffFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_queue_handoff_failures_total",
			Help: "Due jobs that could not be handed to the delivery queue",
		},
	)
)
