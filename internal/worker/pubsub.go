package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types accepted on the subscription.
const (
	JobMigrateContent = "migrate_content"
	JobHealthCheck    = "health_check"
)

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	MigrationJob     *MigrationJob
	Logger           zerolog.Logger
}

// JobMessage is the body of a worker job message.
type JobMessage struct {
	JobType string `json:"job_type"`
	DryRun  bool   `json:"dry_run,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 4
	subscriber.ReceiveSettings.MaxExtension = 30 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       NewDispatcher(cfg.MigrationJob, cfg.Logger),
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if h.dispatcher.Handle(ctx, msg.Data, logger) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// Dispatcher routes decoded job messages to jobs.
type Dispatcher struct {
	migration *MigrationJob
	logger    zerolog.Logger
}

// NewDispatcher creates a dispatcher for the migration job.
func NewDispatcher(migration *MigrationJob, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{migration: migration, logger: logger}
}

// Handle runs the job named by data and reports whether the message should
// be acknowledged. Malformed messages and failed jobs are redelivered;
// unknown job types are acknowledged and dropped.
func (d *Dispatcher) Handle(ctx context.Context, data []byte, logger zerolog.Logger) bool {
	startTime := time.Now()

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return false
	}

	var err error
	switch msg.JobType {
	case JobMigrateContent:
		err = d.migrate(ctx, msg.DryRun)
	case JobHealthCheck:
		logger.Debug().Msg("health check received")
	default:
		logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return true
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return false
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return true
}

func (d *Dispatcher) migrate(ctx context.Context, dryRun bool) error {
	result, err := d.migration.Run(ctx, dryRun)
	if err != nil {
		return err
	}
	if result.Failed > result.Migrated {
		return fmt.Errorf("too many rewrite failures: %d/%d", result.Failed, result.Legacy)
	}
	return nil
}
