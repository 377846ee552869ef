// Package events publishes appended ledger blocks to Kafka so downstream
// systems can follow the audit trail without polling the API.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agrodist/agrodist/internal/ledger"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const queueSize = 256

// drainTimeout bounds how long queued blocks are still delivered after the
// delivery loop is stopped.
const drainTimeout = 5 * time.Second

// Config holds the Kafka publishing options.
type Config struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BlockEvent is the JSON value of each published message.
type BlockEvent struct {
	EventID   string `json:"event_id"`
	Index     int    `json:"index"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// Publisher delivers ledger blocks asynchronously. A disabled Publisher
// accepts and discards every block.
type Publisher struct {
	cfg    Config
	writer MessageWriter
	logger *zap.Logger

	queue     chan kafka.Message
	wg        sync.WaitGroup
	cancel    context.CancelFunc
	runCtx    context.Context
	drainCtx  context.Context
	stopDrain context.CancelFunc
	startOnce sync.Once
	stopOnce  sync.Once

	// OnDelivered, when set, is called after each delivery attempt.
	OnDelivered func(err error)
}

// New builds a Publisher for cfg. It does not contact the brokers.
func New(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if !cfg.Enabled {
		logger.Info("event publisher disabled")
		return &Publisher{cfg: cfg, logger: logger}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("events topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one events broker is required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return NewWithWriter(cfg, w, logger), nil
}

// NewWithWriter builds an enabled Publisher on top of w.
func NewWithWriter(cfg Config, w MessageWriter, logger *zap.Logger) *Publisher {
	cfg.Enabled = true
	return &Publisher{
		cfg:    cfg,
		writer: w,
		logger: logger.With(zap.String("component", "events")),
		queue:  make(chan kafka.Message, queueSize),
	}
}

// Start launches the delivery loop.
func (p *Publisher) Start(ctx context.Context) {
	if !p.cfg.Enabled {
		return
	}
	p.startOnce.Do(func() {
		p.runCtx, p.cancel = context.WithCancel(ctx)
		p.drainCtx, p.stopDrain = context.WithCancel(context.WithoutCancel(ctx))
		p.wg.Add(1)
		go p.run()
		p.logger.Info("event publisher started", zap.String("topic", p.cfg.Topic))
	})
}

// Publish queues b for delivery. It never blocks: when the queue is full the
// block is dropped and a warning logged. It is meant to be registered as a
// ledger append observer.
func (p *Publisher) Publish(b ledger.Block) {
	if !p.cfg.Enabled {
		return
	}
	value, err := json.Marshal(BlockEvent{
		EventID:   uuid.NewString(),
		Index:     b.Index,
		Hash:      b.Hash,
		PrevHash:  b.PrevHash,
		Timestamp: b.Timestamp,
		Payload:   b.Payload,
	})
	if err != nil {
		p.logger.Error("encode block event", zap.Int("index", b.Index), zap.Error(err))
		return
	}
	msg := kafka.Message{Key: []byte(strconv.Itoa(b.Index)), Value: value}
	select {
	case p.queue <- msg:
	default:
		p.logger.Warn("event queue full, dropping block", zap.Int("index", b.Index))
	}
}

// Close stops the loop and lets it drain queued blocks until ctx is done,
// then closes the writer. The writer is never closed while a delivery is
// still in flight.
func (p *Publisher) Close(ctx context.Context) error {
	if !p.cfg.Enabled {
		return nil
	}
	var stopErr error
	p.stopOnce.Do(func() {
		if p.cancel == nil {
			stopErr = p.closeWriter()
			return
		}
		p.cancel()
		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			stopErr = ctx.Err()
			p.stopDrain()
			<-done
		}
		p.stopDrain()
		if err := p.closeWriter(); err != nil && stopErr == nil {
			stopErr = err
		}
	})
	return stopErr
}

func (p *Publisher) closeWriter() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.runCtx.Done():
			p.drain()
			return
		case msg := <-p.queue:
			p.deliver(p.runCtx, msg)
		}
	}
}

// drain delivers whatever is still queued, for at most drainTimeout or until
// Close gives up. Blocks left over are dropped with a warning.
func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(p.drainCtx, drainTimeout)
	defer cancel()
	for {
		select {
		case msg := <-p.queue:
			if ctx.Err() != nil {
				p.logger.Warn("event publisher stopped, dropping queued blocks", zap.Int("dropped", len(p.queue)+1))
				return
			}
			p.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, msg kafka.Message) {
	err := p.writer.WriteMessages(ctx, msg)
	if err != nil {
		p.logger.Error("publish block event", zap.ByteString("key", msg.Key), zap.Error(err))
	}
	if p.OnDelivered != nil {
		p.OnDelivered(err)
	}
}
