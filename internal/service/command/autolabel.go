package command

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// autoLabelRecord 自动打标使用的预置标签定义
type autoLabelRecord struct {
	Name        string
	ColorHex    string
	Description string
}

// 预置标签表，首次命中时按完整定义落库
var (
	labelOpportunity = autoLabelRecord{Name: "商机", ColorHex: "#fa8c16", Description: "询价或购买意向"}
	labelOrder       = autoLabelRecord{Name: "订单", ColorHex: "#1890ff", Description: "下单与发货跟进"}
	labelAfterSales  = autoLabelRecord{Name: "售后", ColorHex: "#722ed1", Description: "退款投诉等售后事项"}
	labelUrgent      = autoLabelRecord{Name: "紧急", ColorHex: "#f5222d", Description: "需要优先处理"}
)

// autoLabelRules 关键词自动打标规则表
// key 为消息中的触发词（匹配时大小写不敏感）
var autoLabelRules = map[string]autoLabelRecord{
	"报价":    labelOpportunity,
	"价格":    labelOpportunity,
	"多少钱":   labelOpportunity,
	"下单":    labelOrder,
	"订单":    labelOrder,
	"发货":    labelOrder,
	"退款":    labelAfterSales,
	"投诉":    labelAfterSales,
	"发票":    labelAfterSales,
	"urgent": labelUrgent,
	"加急":    labelUrgent,
}

// AutoLabel 对普通消息做关键词自动打标
// 命中多条规则时全部生效；标签不存在时先按预置定义创建再关联；失败只记录
func (s *Service) AutoLabel(ctx context.Context, conversationId, content string) {
	lowered := strings.ToLower(content)
	for keyword, record := range autoLabelRules {
		if !strings.Contains(lowered, strings.ToLower(keyword)) {
			continue
		}
		// Create 遇到重名返回已存在的标签，不覆盖人工改过的颜色和描述
		if _, err := s.labels.Create(ctx, record.Name, record.ColorHex, record.Description); err != nil {
			zap.L().Warn("自动打标建标签失败",
				zap.String("conversationId", conversationId),
				zap.String("label", record.Name),
				zap.Error(err))
			continue
		}
		if _, err := s.labels.Attach(ctx, conversationId, record.Name); err != nil {
			zap.L().Warn("自动打标失败",
				zap.String("conversationId", conversationId),
				zap.String("label", record.Name),
				zap.Error(err))
			continue
		}
		zap.L().Debug("自动打标命中",
			zap.String("conversationId", conversationId),
			zap.String("keyword", keyword),
			zap.String("label", record.Name))
	}
}
