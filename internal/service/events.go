package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/campusworks/coursework-api/internal/dto"
)

// EventPublisher fans out submission lifecycle events to interested consumers
// (notification workers, analytics). Publishing is best-effort and never fails
// the originating request.
type EventPublisher interface {
	SubmissionCreated(ctx context.Context, submission dto.SubmissionResponse)
	SubmissionGraded(ctx context.Context, submission dto.SubmissionResponse)
}

type submissionEvent struct {
	Type       string                 `json:"type"`
	Submission dto.SubmissionResponse `json:"submission"`
	SentAt     time.Time              `json:"sent_at"`
}

type natsEventPublisher struct {
	conn        *nats.Conn
	subjectBase string
	logger      zerolog.Logger
}

// NewEventPublisher wraps a NATS connection. A nil connection yields a
// publisher that silently drops events, keeping single-process deployments
// broker-free.
func NewEventPublisher(conn *nats.Conn, subjectBase string, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:        conn,
		subjectBase: subjectBase,
		logger:      logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsEventPublisher) SubmissionCreated(ctx context.Context, submission dto.SubmissionResponse) {
	p.publish("submission.created", submission)
}

func (p *natsEventPublisher) SubmissionGraded(ctx context.Context, submission dto.SubmissionResponse) {
	p.publish("submission.graded", submission)
}

func (p *natsEventPublisher) publish(eventType string, submission dto.SubmissionResponse) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(submissionEvent{
		Type:       eventType,
		Submission: submission,
		SentAt:     time.Now(),
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("event", eventType).Msg("failed to encode event")
		return
	}

	subject := p.subjectBase + "." + eventType
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
