// Package kafka publishes guard prompts and audit events to Kafka topics.
// The UI side consumes the prompt topic to show the upgrade and
// profile-limit dialogs.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"profileguard/internal/profile/models"
	id "profileguard/pkg/domain"
	"profileguard/pkg/platform/audit"
	"profileguard/pkg/requestcontext"
)

const (
	DefaultPromptTopic = "profileguard.prompts"
	DefaultAuditTopic  = "profileguard.audit"
)

// PromptType names the dialog the UI should raise.
type PromptType string

const (
	PromptProfileBlocked PromptType = "profile_blocked"
	PromptUpgrade        PromptType = "upgrade_required"
)

// PromptMessage is the JSON value written to the prompt topic.
type PromptMessage struct {
	Type      PromptType               `json:"type"`
	AccountID id.AccountID             `json:"account_id"`
	Blocked   *models.ArtifactIdentity `json:"blocked_profile,omitempty"`
	RequestID string                   `json:"request_id,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
}

// Publisher implements the guard's Prompter and AuditPublisher ports.
// Records are produced asynchronously; delivery failures are logged.
type Publisher struct {
	client      *kgo.Client
	logger      *slog.Logger
	promptTopic string
	auditTopic  string

	maxBuffered     int
	deliveryTimeout time.Duration
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithTopics(promptTopic, auditTopic string) Option {
	return func(p *Publisher) {
		if promptTopic != "" {
			p.promptTopic = promptTopic
		}
		if auditTopic != "" {
			p.auditTopic = auditTopic
		}
	}
}

// WithBuffer bounds how many records wait for delivery and for how long.
// Records beyond the bound are dropped and logged.
func WithBuffer(maxRecords int, deliveryTimeout time.Duration) Option {
	return func(p *Publisher) {
		if maxRecords > 0 {
			p.maxBuffered = maxRecords
		}
		if deliveryTimeout > 0 {
			p.deliveryTimeout = deliveryTimeout
		}
	}
}

func New(brokers []string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	p := &Publisher{
		logger:      slog.Default(),
		promptTopic: DefaultPromptTopic,
		auditTopic:  DefaultAuditTopic,

		maxBuffered:     10000,
		deliveryTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(5*time.Millisecond),
		kgo.RecordRetries(5),
		kgo.MaxBufferedRecords(p.maxBuffered),
		kgo.RecordDeliveryTimeout(p.deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p.client = client
	return p, nil
}

// EnsureTopics creates the prompt and audit topics when missing.
func (p *Publisher) EnsureTopics(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	responses, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, p.promptTopic, p.auditTopic)
	if err != nil {
		return fmt.Errorf("create topics: %w", err)
	}
	for _, resp := range responses.Sorted() {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", resp.Topic, resp.Err)
		}
	}
	return nil
}

// Ping checks broker connectivity.
func (p *Publisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Publisher) OnBlocked(ctx context.Context, accountID id.AccountID, blocked models.ArtifactIdentity) {
	p.publishPrompt(ctx, PromptMessage{
		Type:      PromptProfileBlocked,
		AccountID: accountID,
		Blocked:   &blocked,
	})
}

func (p *Publisher) OnNeedsUpgrade(ctx context.Context, accountID id.AccountID) {
	p.publishPrompt(ctx, PromptMessage{
		Type:      PromptUpgrade,
		AccountID: accountID,
	})
}

// Emit writes an audit event keyed by account.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	p.produce(ctx, &kgo.Record{
		Topic: p.auditTopic,
		Key:   []byte(event.AccountID.String()),
		Value: value,
	})
	return nil
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	if err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	return nil
}

func (p *Publisher) publishPrompt(ctx context.Context, msg PromptMessage) {
	msg.RequestID = requestcontext.RequestID(ctx)
	msg.Timestamp = requestcontext.Now(ctx).UTC()

	value, err := json.Marshal(msg)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode prompt", "type", string(msg.Type), "error", err)
		return
	}
	p.produce(ctx, &kgo.Record{
		Topic: p.promptTopic,
		Key:   []byte(msg.AccountID.String()),
		Value: value,
	})
}

// produce never waits for buffer space: a full buffer fails the record with
// kgo.ErrMaxBuffered. The request context is detached so a finished HTTP
// request does not cancel the buffered record.
func (p *Publisher) produce(ctx context.Context, record *kgo.Record) {
	p.client.TryProduce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("failed to publish record",
				"topic", r.Topic,
				"key", string(r.Key),
				"error", err,
			)
		}
	})
}
