package ingest

import "fmt"

// 会话 ID 推导
// 会话 ID 必须是 (类型, 参与方) 的纯函数，并发事件引用同一逻辑会话时
// 才能收敛到同一行。单聊取双方 ID 的排序对，与事件到达顺序无关。

// DirectConversationId 推导单聊会话 ID：direct_<min(a,b)>_<max(a,b)>
func DirectConversationId(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("direct_%s_%s", a, b)
}

// GroupConversationId 推导群聊会话 ID：group_<群组id>
func GroupConversationId(groupId string) string {
	return fmt.Sprintf("group_%s", groupId)
}
