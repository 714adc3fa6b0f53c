package handler

import (
	"context"
	"time"

	"zalo_connector/internal/infrastructure/mq"
)

func contextWithDefaultTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func contextWithSyncTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Minute)
}

// qrCodeEvent 把二维码内容包装成推送事件
func qrCodeEvent(code string) *mq.Event {
	return &mq.Event{
		Type:    "qr_code",
		Payload: map[string]string{"code": code},
		At:      time.Now(),
	}
}
