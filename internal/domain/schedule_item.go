package domain

import "time"

// ScheduleItem 机台时间线上的一个排程条目
// Kind 为判别字段：工单（Order）与机台状态（MachineStatus）二选一，
// 创建后不再改变；payload 按 Kind 恰好设置一个。
// End 为零值表示开放区间（仅机台状态条目处于进行中时允许）。
type ScheduleItem struct {
	ID             string
	MachineGroupID string
	AreaCode       string
	Kind           ItemKind
	Status         Status
	Start          time.Time
	End            time.Time

	Order         *OrderPayload
	MachineStatus *StatusPayload
}

// OrderPayload 工单条目负载（上游排程系统下发，本核心只读写部分字段）
type OrderPayload struct {
	WorkOrderID    string
	ProductSN      string
	ProductName    string
	Quantity       int
	CompletedQty   int
	Process        string
	ScheduledStart time.Time
	ScheduledEnd   time.Time
	ActualStart    time.Time // 零值表示未上机
	ActualEnd      time.Time // 零值表示未完工
	OrderStatus    string    // 自由文本生命周期标签，如"未上机"/"生产中"
}

// StatusPayload 机台状态条目负载
type StatusPayload struct {
	StatusRecordID string // 持久化前为空
	Reason         string // Stopped 状态必填
	Product        string // Testing 状态必填
	PlanStart      time.Time
	PlanEnd        time.Time
	ActualStart    time.Time
	ActualEnd      time.Time
}

// Machine 机台参考数据（外部系统拥有，本核心只读）
type Machine struct {
	ID       string
	AreaCode string
}

// EditablePolicy 条目的可编辑能力（由规则表派生）
type EditablePolicy struct {
	CanMoveTime      bool
	CanChangeMachine bool
	CanRemove        bool
}

// EditablePolicy 返回条目当前的可编辑能力
// 工单条目完全不可编辑；机台状态条目的可删除性来自规则表。
func (it ScheduleItem) EditablePolicy() EditablePolicy {
	if it.Kind == KindOrder {
		return EditablePolicy{}
	}
	rule, ok := RuleFor(it.Status)
	if !ok {
		return EditablePolicy{}
	}
	return EditablePolicy{
		CanMoveTime:      true,
		CanChangeMachine: true,
		CanRemove:        rule.CanDelete,
	}
}

// HasOpenEnd 判断条目是否为开放区间（尚无具体结束时间）
func (it ScheduleItem) HasOpenEnd() bool {
	return it.End.IsZero()
}
