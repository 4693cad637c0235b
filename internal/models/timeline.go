package models

// TimelineRecord 排程条目的线上（API）表示
// 与远端持久化服务的请求/响应数据契约保持一致：
// 时间字段为 "2006-01-02 15:04:05" 格式字符串，空串表示 null；
// 数量字段为字符串化整数。
type TimelineRecord struct {
	// 两种条目共有
	MachineSN      string `json:"machineSN"`      // 机台编号，映射到内部 MachineGroupID
	ProductionArea string `json:"productionArea"` // 生产区域，映射到内部 AreaCode
	TimeLineStatus string `json:"timeLineStatus"` // 判别字段 + 状态标签

	// 机台状态条目字段
	MachineStatusID              string `json:"machineStatusId,omitempty"` // 持久化前为空
	MachineStatusPlanStartTime   string `json:"machineStatusPlanStartTime,omitempty"`
	MachineStatusPlanEndTime     string `json:"machineStatusPlanEndTime,omitempty"`
	MachineStatusActualStartTime string `json:"machineStatusActualStartTime,omitempty"`
	MachineStatusActualEndTime   string `json:"machineStatusActualEndTime,omitempty"`
	MachineStatusReason          string `json:"machineStatusReason,omitempty"`  // Stopped 必填
	MachineStatusProduct         string `json:"machineStatusProduct,omitempty"` // Testing 必填

	// 工单条目字段
	ProductionScheduleID     string `json:"productionScheduleId,omitempty"`
	PlanOnMachineDate        string `json:"planOnMachineDate,omitempty"`
	PlanFinishDate           string `json:"planFinishDate,omitempty"`
	ActualOnMachineDate      string `json:"actualOnMachineDate,omitempty"`
	ActualFinishDate         string `json:"actualFinishDate,omitempty"`
	ProductName              string `json:"productName,omitempty"` // 工单必填
	ProductSN                string `json:"productSN,omitempty"`
	ProcessName              string `json:"processName,omitempty"`
	WorkOrderQuantity        string `json:"workOrderQuantity,omitempty"`  // 字符串化整数
	ProductionQuantity       string `json:"productionQuantity,omitempty"` // 字符串化整数
	ProductionScheduleStatus string `json:"productionScheduleStatus,omitempty"`
}

// IsOrder 按工单特有字段的存在性判别条目类别
func (r TimelineRecord) IsOrder() bool {
	return r.ProductionScheduleID != "" || r.TimeLineStatus == "Order"
}

// MachineRecord 机台参考数据的线上表示（list-machines 响应）
type MachineRecord struct {
	MachineSN      string `json:"machineSN"`
	ProductionArea string `json:"productionArea"`
}
