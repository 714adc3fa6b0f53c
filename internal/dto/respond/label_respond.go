package respond

// LabelRespond 标签信息
type LabelRespond struct {
	Uuid        string `json:"uuid"`
	Name        string `json:"name"`
	ColorHex    string `json:"colorHex,omitempty"`
	Description string `json:"description,omitempty"`
	IsSystem    bool   `json:"isSystem"`
}

// QuickMessageRespond 快捷语信息
type QuickMessageRespond struct {
	Uuid     string `json:"uuid"`
	Shortcut string `json:"shortcut"`
	Content  string `json:"content"`
}
