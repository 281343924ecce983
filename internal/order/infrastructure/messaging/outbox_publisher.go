package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
)

// 消息状态
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	// StatusFailed 重试次数耗尽，需要人工处理
	StatusFailed = "failed"
)

// OutboxMessage 待投递的事件，与业务数据在同一事务内写入
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Topic     string    `gorm:"type:varchar(100);index"`
	Key       string    `gorm:"column:msg_key;type:varchar(64)"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:varchar(512)"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "order_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式
type OutboxEventPublisher struct {
	db *gorm.DB
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(gdb *gorm.DB) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: gdb}
}

// PublishOrderPlaced 发布下单成功事件
func (p *OutboxEventPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlacedEvent) error {
	return p.publishEvent(ctx, domain.TopicOrderPlaced, event.OrderNo, event)
}

// PublishOrderStatusChanged 发布订单状态变更事件
func (p *OutboxEventPublisher) PublishOrderStatusChanged(ctx context.Context, event domain.OrderStatusChangedEvent) error {
	key := event.OrderNo
	if key == "" {
		key = strconv.FormatUint(uint64(event.OrderID), 10)
	}
	return p.publishEvent(ctx, domain.TopicOrderStatusChanged, key, event)
}

// publishEvent 通用事件发布方法，消息键为订单号，同一订单的事件落在同一分区
func (p *OutboxEventPublisher) publishEvent(ctx context.Context, topic, key string, event any) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	message := OutboxMessage{
		ID:      uuid.NewString(),
		Topic:   topic,
		Key:     key,
		Payload: string(eventData),
		Status:  StatusPending,
	}
	if err := db.Conn(ctx, p.db).Create(&message).Error; err != nil {
		return fmt.Errorf("write outbox message: %w", err)
	}
	return nil
}
