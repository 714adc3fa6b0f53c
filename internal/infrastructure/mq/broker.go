package mq

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"zalo_connector/internal/config"
	"zalo_connector/pkg/constants"
	"zalo_connector/pkg/errorx"

	"github.com/segmentio/kafka-go"
)

// Event 规范化后的连接器事件,推送给下游消费者
type Event struct {
	Type           string      `json:"type"` // message / reaction / status
	AccountId      string      `json:"account_id"`
	ConversationId string      `json:"conversation_id"`
	Payload        interface{} `json:"payload"`
	At             time.Time   `json:"at"`
}

// EventBroker 事件出口,支持 channel 和 kafka 两种模式
type EventBroker interface {
	Publish(ctx context.Context, event *Event) error
	Start()
	Close() error
}

// BroadcastSink channel 模式下的事件接收方,由 websocket 网关实现
type BroadcastSink interface {
	Broadcast(data []byte)
}

// NewBroker 根据配置选择事件出口模式
func NewBroker(kafkaConfig config.KafkaConfig, sink BroadcastSink) EventBroker {
	if kafkaConfig.MessageMode == "kafka" {
		writer := &kafka.Writer{
			Addr:                   kafka.TCP(kafkaConfig.HostPort),
			Topic:                  kafkaConfig.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           time.Duration(kafkaConfig.Timeout) * time.Second,
			AllowAutoTopicCreation: true,
		}
		return &kafkaBroker{writer: writer}
	}
	return &channelBroker{
		events: make(chan *Event, constants.CHANNEL_SIZE),
		sink:   sink,
		done:   make(chan struct{}),
	}
}

// channelBroker 进程内模式,事件经 channel 转发给 websocket 网关
type channelBroker struct {
	events chan *Event
	sink   BroadcastSink
	done   chan struct{}
}

func (b *channelBroker) Publish(_ context.Context, event *Event) error {
	select {
	case b.events <- event:
		return nil
	default:
		zap.L().Warn("事件通道已满,丢弃事件",
			zap.String("type", event.Type),
			zap.String("conversationId", event.ConversationId))
		return errorx.ErrServerBusy
	}
}

func (b *channelBroker) Start() {
	go func() {
		for {
			select {
			case event := <-b.events:
				data, err := json.Marshal(event)
				if err != nil {
					zap.L().Error("事件序列化失败", zap.Error(err))
					continue
				}
				if b.sink != nil {
					b.sink.Broadcast(data)
				}
			case <-b.done:
				return
			}
		}
	}()
}

func (b *channelBroker) Close() error {
	close(b.done)
	return nil
}

// kafkaBroker kafka 模式,按会话 id 分区保证同会话事件有序
type kafkaBroker struct {
	writer *kafka.Writer
}

func (b *kafkaBroker) Publish(ctx context.Context, event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "事件序列化失败")
	}
	if err := b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ConversationId),
		Value: data,
	}); err != nil {
		zap.L().Error("kafka 写入失败", zap.Error(err))
		return errorx.Wrap(err, errorx.CodeServerBusy, "事件投递失败")
	}
	return nil
}

func (b *kafkaBroker) Start() {}

func (b *kafkaBroker) Close() error {
	return b.writer.Close()
}
