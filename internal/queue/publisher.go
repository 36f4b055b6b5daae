package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

const (
	pendingSuffix = ":postings:pending"
	failedSuffix  = ":postings:failed"
)

// PendingKey returns the Redis list holding postings waiting to be applied
func PendingKey(prefix string) string {
	return prefix + pendingSuffix
}

// FailedKey returns the Redis list holding postings the ledger rejected
func FailedKey(prefix string) string {
	return prefix + failedSuffix
}

// PostingMessage is the message published to the queue
type PostingMessage struct {
	ID          uuid.UUID `json:"posting_id"`
	Account     string    `json:"account_number"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	PublishedAt time.Time `json:"published_at"`
}

// FailedPosting is recorded for every message that could not be applied
type FailedPosting struct {
	Message  PostingMessage `json:"message"`
	Error    string         `json:"error"`
	FailedAt time.Time      `json:"failed_at"`
}

// Publisher handles publishing postings to Redis
type Publisher struct {
	client *redis.Client
	prefix string
}

// NewPublisher creates a new Publisher
func NewPublisher(client *redis.Client, prefix string) *Publisher {
	return &Publisher{client: client, prefix: prefix}
}

// PublishPosting queues a deposit or withdrawal and returns its posting ID
func (p *Publisher) PublishPosting(ctx context.Context, account string, txnType model.TransactionType, amount decimal.Decimal) (uuid.UUID, error) {
	msg := PostingMessage{
		ID:          uuid.New(),
		Account:     account,
		Type:        string(txnType),
		Amount:      amount.String(),
		PublishedAt: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	// RPUSH onto the tail, workers pop from the head
	if err := p.client.RPush(ctx, PendingKey(p.prefix), data).Err(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to publish to queue: %w", err)
	}

	return msg.ID, nil
}

// QueueLength returns the current number of pending postings
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, PendingKey(p.prefix)).Result()
}

// FailedLength returns the number of recorded failed postings
func (p *Publisher) FailedLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, FailedKey(p.prefix)).Result()
}
