package domain

// Status 时间线条目状态（timeLineStatus 的封闭枚举）
// 机台状态条目只会是 Idle/Setup/Testing/Stopped 之一；
// 工单条目固定为 Order。
type Status string

const (
	StatusOrder   Status = "Order"
	StatusIdle    Status = "Idle"
	StatusSetup   Status = "Setup"
	StatusTesting Status = "Testing"
	StatusStopped Status = "Stopped"
)

// String 返回状态的字符串表示
func (s Status) String() string {
	return string(s)
}

// IsValid 判断是否为已知状态
func (s Status) IsValid() bool {
	switch s {
	case StatusOrder, StatusIdle, StatusSetup, StatusTesting, StatusStopped:
		return true
	default:
		return false
	}
}

// IsMachineStatus 判断是否为机台状态（非工单）
func (s Status) IsMachineStatus() bool {
	return s.IsValid() && s != StatusOrder
}

// ParseStatus 解析 timeLineStatus 字段
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.IsValid()
}

// ItemKind 条目类别（判别字段，创建后不再改变）
type ItemKind string

const (
	KindOrder         ItemKind = "Order"
	KindMachineStatus ItemKind = "MachineStatus"
)

// DialogMode 编辑器对话框模式
type DialogMode string

const (
	ModeCreate DialogMode = "create"
	ModeEdit   DialogMode = "edit"
)
