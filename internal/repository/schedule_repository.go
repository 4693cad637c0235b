package repository

import (
	"context"

	"wisescheduling-timeline/internal/models"
)

// ScheduleRepository 远端持久化服务的抽象
// 生产实现走 MES API（见 RemoteScheduleRepository）；
// 测试用内存实现替换，避免共享可变的模拟数据。
type ScheduleRepository interface {
	// CreateStatus 新建机台状态记录，返回远端分配的 machineStatusId
	CreateStatus(ctx context.Context, rec models.TimelineRecord) (string, error)
	// UpdateStatus 更新既有机台状态记录
	UpdateStatus(ctx context.Context, rec models.TimelineRecord) error
	// DeleteStatus 删除机台状态记录
	DeleteStatus(ctx context.Context, statusRecordID string) error
	// UpdateOrderSchedule 更新工单排程字段（数量、生命周期标签等）
	UpdateOrderSchedule(ctx context.Context, rec models.TimelineRecord) error
	// ListMachines 拉取机台参考数据
	ListMachines(ctx context.Context) ([]models.MachineRecord, error)
	// ListTimeline 拉取指定机台集合的时间线记录
	ListTimeline(ctx context.Context, machineSNs []string) ([]models.TimelineRecord, error)
}
