package messaging

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

// lastErrorLen last_error 列长度
const lastErrorLen = 512

// Producer 消息发送方，由 mq.KafkaProducer 实现
type Producer interface {
	SendMessages(ctx context.Context, msgs ...mq.Message) error
}

// OutboxRelay 轮询 outbox 表，把待投递消息按写入顺序发往 Kafka
// 投递语义为至少一次，消费方按订单号去重
type OutboxRelay struct {
	db          *gorm.DB
	producer    Producer
	interval    time.Duration
	batchSize   int
	maxAttempts int
	metrics     *metrics.Metrics
}

// NewOutboxRelay 创建投递器，maxAttempts 为 0 时最多尝试 10 次
func NewOutboxRelay(gdb *gorm.DB, producer Producer, interval time.Duration, batchSize, maxAttempts int, m *metrics.Metrics) *OutboxRelay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &OutboxRelay{db: gdb, producer: producer, interval: interval, batchSize: batchSize, maxAttempts: maxAttempts, metrics: m}
}

// Run 阻塞运行直到 ctx 结束
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info(ctx, "outbox relay started", "interval", r.interval, "batch_size", r.batchSize)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.ProcessOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(ctx, "outbox relay batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce 投递一批消息，返回成功投递的条数
func (r *OutboxRelay) ProcessOnce(ctx context.Context) (int, error) {
	var sent int
	err := db.Transaction(ctx, r.db, func(txCtx context.Context) error {
		var batch []OutboxMessage
		err := db.Conn(txCtx, r.db).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", StatusPending).
			Order("created_at ASC").
			Limit(r.batchSize).
			Find(&batch).Error
		if err != nil || len(batch) == 0 {
			return err
		}

		msgs := make([]mq.Message, len(batch))
		ids := make([]string, len(batch))
		for i, m := range batch {
			msgs[i] = mq.Message{Topic: m.Topic, Key: m.Key, Value: []byte(m.Payload)}
			ids[i] = m.ID
		}

		if sendErr := r.producer.SendMessages(txCtx, msgs...); sendErr != nil {
			logger.Warn(txCtx, "outbox delivery failed, will retry", "count", len(batch), "error", sendErr)
			return r.recordFailure(txCtx, ids, sendErr)
		}

		if err := db.Conn(txCtx, r.db).Model(&OutboxMessage{}).
			Where("id IN ?", ids).
			Update("status", StatusSent).Error; err != nil {
			return err
		}
		sent = len(batch)
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.metrics.RecordOutboxPublished(sent)
	return sent, nil
}

// recordFailure 累加重试次数，达到上限的消息转为 failed
func (r *OutboxRelay) recordFailure(txCtx context.Context, ids []string, sendErr error) error {
	conn := db.Conn(txCtx, r.db)
	if err := conn.Model(&OutboxMessage{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": truncate(sendErr.Error(), lastErrorLen),
		}).Error; err != nil {
		return err
	}

	res := conn.Model(&OutboxMessage{}).
		Where("id IN ? AND attempts >= ?", ids, r.maxAttempts).
		Update("status", StatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Error(txCtx, "outbox messages gave up after max attempts", "count", res.RowsAffected, "max_attempts", r.maxAttempts)
	}
	return nil
}

// truncate 截断到至多 n 字节，不切开多字节字符
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
