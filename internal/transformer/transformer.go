package transformer

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"wisescheduling-timeline/internal/domain"
	"wisescheduling-timeline/internal/models"
	"wisescheduling-timeline/internal/scheduler"
)

// WireTimeLayout 远端 API 的时间字段格式
const WireTimeLayout = "2006-01-02 15:04:05"

// DefaultMachineGroupID 线上记录缺失 machineSN 时的兜底机台组
// 缺失只记录告警，绝不硬性失败。
const DefaultMachineGroupID = "UNASSIGNED"

// defaultEndOffset 计划/实际结束时间都缺失时的兜底区间长度
const defaultEndOffset = time.Hour

// Transformer 线上表示与内部领域模型之间的双向转换器
// ToInternal / Serialize 为纯映射加兜底修复；ToWire 在映射之外
// 叠加保存门禁：转移校验与 ValidateCompleteness 按状态类别的
// 必填字段检查。
type Transformer struct {
	logger *zap.Logger
}

// New 创建转换器
func New(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// ToInternal 线上记录 -> 内部排程条目
// 按工单特有字段的存在性判别类别；时间窗口优先取实际时间，
// 其次计划时间；两者都缺失时 end = start + 1 小时，绝不留空洞。
// 兜底修复（缺失 machineSN、缺失开始时间）只记录告警，不返回错误。
func (t *Transformer) ToInternal(rec models.TimelineRecord) domain.ScheduleItem {
	item := domain.ScheduleItem{
		MachineGroupID: rec.MachineSN,
		AreaCode:       rec.ProductionArea,
	}

	if item.MachineGroupID == "" {
		t.logger.Warn("Wire record missing machineSN, falling back to default machine group",
			zap.String("fallback", DefaultMachineGroupID),
			zap.String("time_line_status", rec.TimeLineStatus),
		)
		item.MachineGroupID = DefaultMachineGroupID
	}

	if rec.IsOrder() {
		t.fillOrder(&item, rec)
	} else {
		t.fillMachineStatus(&item, rec)
	}

	if item.Start.IsZero() {
		t.logger.Warn("Wire record missing start time, falling back to current instant",
			zap.String("item_id", item.ID),
			zap.String("machine_group_id", item.MachineGroupID),
		)
		item.Start = time.Now()
	}
	if item.End.IsZero() {
		item.End = item.Start.Add(defaultEndOffset)
	}

	return item
}

// fillOrder 填充工单条目
func (t *Transformer) fillOrder(item *domain.ScheduleItem, rec models.TimelineRecord) {
	item.Kind = domain.KindOrder
	item.Status = domain.StatusOrder
	item.ID = rec.ProductionScheduleID

	planStart := t.parseTime(rec.PlanOnMachineDate, "planOnMachineDate")
	planEnd := t.parseTime(rec.PlanFinishDate, "planFinishDate")
	actualStart := t.parseTime(rec.ActualOnMachineDate, "actualOnMachineDate")
	actualEnd := t.parseTime(rec.ActualFinishDate, "actualFinishDate")

	// 实际时间优先于计划时间
	item.Start = preferTime(actualStart, planStart)
	item.End = preferTime(actualEnd, planEnd)

	item.Order = &domain.OrderPayload{
		WorkOrderID:    rec.ProductionScheduleID,
		ProductSN:      rec.ProductSN,
		ProductName:    rec.ProductName,
		Quantity:       t.parseQuantity(rec.WorkOrderQuantity, "workOrderQuantity"),
		CompletedQty:   t.parseQuantity(rec.ProductionQuantity, "productionQuantity"),
		Process:        rec.ProcessName,
		ScheduledStart: planStart,
		ScheduledEnd:   planEnd,
		ActualStart:    actualStart,
		ActualEnd:      actualEnd,
		OrderStatus:    rec.ProductionScheduleStatus,
	}
}

// fillMachineStatus 填充机台状态条目
func (t *Transformer) fillMachineStatus(item *domain.ScheduleItem, rec models.TimelineRecord) {
	item.Kind = domain.KindMachineStatus
	item.ID = rec.MachineStatusID

	status, ok := domain.ParseStatus(rec.TimeLineStatus)
	if !ok || !status.IsMachineStatus() {
		t.logger.Warn("Wire record carries unknown machine status, falling back to Idle",
			zap.String("time_line_status", rec.TimeLineStatus),
			zap.String("machine_status_id", rec.MachineStatusID),
		)
		status = domain.StatusIdle
	}
	item.Status = status

	planStart := t.parseTime(rec.MachineStatusPlanStartTime, "machineStatusPlanStartTime")
	planEnd := t.parseTime(rec.MachineStatusPlanEndTime, "machineStatusPlanEndTime")
	actualStart := t.parseTime(rec.MachineStatusActualStartTime, "machineStatusActualStartTime")
	actualEnd := t.parseTime(rec.MachineStatusActualEndTime, "machineStatusActualEndTime")

	item.Start = preferTime(actualStart, planStart)
	item.End = preferTime(actualEnd, planEnd)

	item.MachineStatus = &domain.StatusPayload{
		StatusRecordID: rec.MachineStatusID,
		Reason:         rec.MachineStatusReason,
		Product:        rec.MachineStatusProduct,
		PlanStart:      planStart,
		PlanEnd:        planEnd,
		ActualStart:    actualStart,
		ActualEnd:      actualEnd,
	}
}

// ToWire 内部排程条目 -> 线上记录
// original 非 nil 时先做状态转移校验（错误原样传播），再做完整性检查。
// dataOnlyEdit 由调用方声明本次保存是否为纯字段编辑（未动状态），
// 这里不从状态对比推断。testMode 同时跳过转移校验与完整性检查，
// 仅供非生产测试装置使用，生产代码路径不可到达。
func (t *Transformer) ToWire(item domain.ScheduleItem, original *domain.ScheduleItem, mode domain.DialogMode, dataOnlyEdit bool, testMode bool) (models.TimelineRecord, error) {
	if original != nil && !testMode {
		if err := scheduler.ValidateTransition(item.ID, original.Status, item.Status,
			item.Kind, mode, dataOnlyEdit); err != nil {
			return models.TimelineRecord{}, err
		}
	}

	rec := t.Serialize(item)

	if !testMode {
		if err := t.ValidateCompleteness(rec); err != nil {
			return models.TimelineRecord{}, err
		}
	}

	return rec, nil
}

// Serialize 内部排程条目 -> 线上记录的纯映射
// 只做字段映射与缺失标量的兜底修复（机台组/开始时间，记录告警而非
// 失败），不做转移校验与完整性检查。快照缓存等需要照原样反映存储
// 内容的路径直接使用它。
func (t *Transformer) Serialize(item domain.ScheduleItem) models.TimelineRecord {
	// 兜底修复：缺失机台组
	machineGroupID := item.MachineGroupID
	if machineGroupID == "" {
		t.logger.Warn("Item missing machine group, falling back to default",
			zap.String("item_id", item.ID),
			zap.String("fallback", DefaultMachineGroupID),
		)
		machineGroupID = DefaultMachineGroupID
	}

	// 兜底修复：缺失开始时间
	start := item.Start
	if start.IsZero() {
		t.logger.Warn("Item missing start time, falling back to current instant",
			zap.String("item_id", item.ID),
		)
		start = time.Now()
	}

	rec := models.TimelineRecord{
		MachineSN:      machineGroupID,
		ProductionArea: item.AreaCode,
		TimeLineStatus: item.Status.String(),
	}

	if item.Kind == domain.KindOrder {
		t.writeOrder(&rec, item, start)
	} else {
		t.writeMachineStatus(&rec, item, start)
	}

	return rec
}

// writeOrder 写出工单字段
func (t *Transformer) writeOrder(rec *models.TimelineRecord, item domain.ScheduleItem, start time.Time) {
	rec.ProductionScheduleID = item.ID

	payload := item.Order
	if payload == nil {
		payload = &domain.OrderPayload{}
	}

	// 计划窗口：payload 缺失时退回条目自身的时间窗口
	planStart := payload.ScheduledStart
	if planStart.IsZero() {
		planStart = start
	}
	planEnd := payload.ScheduledEnd
	if planEnd.IsZero() {
		planEnd = item.End
	}

	rec.PlanOnMachineDate = formatTime(planStart)
	rec.PlanFinishDate = formatTime(planEnd)
	rec.ActualOnMachineDate = formatTime(payload.ActualStart)
	rec.ActualFinishDate = formatTime(payload.ActualEnd)
	rec.ProductName = payload.ProductName
	rec.ProductSN = payload.ProductSN
	rec.ProcessName = payload.Process
	rec.WorkOrderQuantity = strconv.Itoa(payload.Quantity)
	rec.ProductionQuantity = strconv.Itoa(payload.CompletedQty)
	rec.ProductionScheduleStatus = payload.OrderStatus
}

// writeMachineStatus 写出机台状态字段
func (t *Transformer) writeMachineStatus(rec *models.TimelineRecord, item domain.ScheduleItem, start time.Time) {
	payload := item.MachineStatus
	if payload == nil {
		payload = &domain.StatusPayload{}
	}

	rec.MachineStatusID = payload.StatusRecordID
	if rec.MachineStatusID == "" {
		rec.MachineStatusID = item.ID
	}

	planStart := payload.PlanStart
	if planStart.IsZero() {
		planStart = start
	}
	planEnd := payload.PlanEnd
	if planEnd.IsZero() {
		planEnd = item.End
	}

	rec.MachineStatusPlanStartTime = formatTime(planStart)
	rec.MachineStatusPlanEndTime = formatTime(planEnd)
	rec.MachineStatusActualStartTime = formatTime(payload.ActualStart)
	rec.MachineStatusActualEndTime = formatTime(payload.ActualEnd)
	rec.MachineStatusReason = payload.Reason
	rec.MachineStatusProduct = payload.Product
}

// ValidateCompleteness 按状态类别检查必填字段
// Testing 要求非空 product；Stopped 要求非空 reason；工单要求非空 productName。
// 违反时返回 *domain.ValidationError，指明缺失字段与状态类别。
func (t *Transformer) ValidateCompleteness(rec models.TimelineRecord) error {
	if rec.IsOrder() {
		if rec.ProductName == "" {
			return domain.NewValidationError("productName", domain.StatusOrder,
				"order records require a product name")
		}
		return nil
	}

	switch rec.TimeLineStatus {
	case string(domain.StatusTesting):
		if rec.MachineStatusProduct == "" {
			return domain.NewValidationError("machineStatusProduct", domain.StatusTesting,
				"testing records require a product")
		}
	case string(domain.StatusStopped):
		if rec.MachineStatusReason == "" {
			return domain.NewValidationError("machineStatusReason", domain.StatusStopped,
				"stopped records require a reason")
		}
	}
	return nil
}

// parseTime 解析线上时间字段；空串返回零值，格式错误记录告警后返回零值
func (t *Transformer) parseTime(raw, field string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(WireTimeLayout, raw)
	if err != nil {
		t.logger.Warn("Failed to parse wire time field",
			zap.String("field", field),
			zap.String("value", raw),
			zap.Error(err),
		)
		return time.Time{}
	}
	return parsed
}

// parseQuantity 解析字符串化整数；空串或坏值按 0 处理并告警
func (t *Transformer) parseQuantity(raw, field string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		t.logger.Warn("Invalid wire quantity field, treating as zero",
			zap.String("field", field),
			zap.String("value", raw),
		)
		return 0
	}
	return v
}

// formatTime 格式化时间字段；零值输出空串（线上表示的 null）
func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(WireTimeLayout)
}

// preferTime 实际时间优先于计划时间
func preferTime(actual, plan time.Time) time.Time {
	if !actual.IsZero() {
		return actual
	}
	return plan
}
