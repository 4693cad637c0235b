package scheduler

import (
	"testing"
	"time"

	"wisescheduling-timeline/internal/domain"
)

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func statusItem(id, group string, status domain.Status, start, end time.Time) domain.ScheduleItem {
	return domain.ScheduleItem{
		ID:             id,
		MachineGroupID: group,
		Kind:           domain.KindMachineStatus,
		Status:         status,
		Start:          start,
		End:            end,
		MachineStatus:  &domain.StatusPayload{},
	}
}

func orderItem(id, group string, start, end time.Time) domain.ScheduleItem {
	return domain.ScheduleItem{
		ID:             id,
		MachineGroupID: group,
		Kind:           domain.KindOrder,
		Status:         domain.StatusOrder,
		Start:          start,
		End:            end,
		Order:          &domain.OrderPayload{},
	}
}

func TestHasConflict_ScenarioA_OverlappingStatusItems(t *testing.T) {
	// A1 上已存在 Idle 08:00–10:00；新增 Setup 09:00–11:00 应冲突
	existing := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusIdle, at(8, 0), at(10, 0)),
	}
	candidate := statusItem("s2", "A1", domain.StatusSetup, at(9, 0), at(11, 0))

	if !HasConflict(candidate, existing) {
		t.Fatal("Expected 09:00-11:00 to conflict with 08:00-10:00")
	}
}

func TestHasConflict_ScenarioC_OrdersExempt(t *testing.T) {
	// 工单 08:00–12:00 与 Idle 09:00–10:00 可以共存
	existing := []domain.ScheduleItem{
		orderItem("o1", "A1", at(8, 0), at(12, 0)),
	}
	candidate := statusItem("s1", "A1", domain.StatusIdle, at(9, 0), at(10, 0))

	if HasConflict(candidate, existing) {
		t.Fatal("Order items must not trigger conflicts against status items")
	}

	// 候选为工单同样豁免
	orderCandidate := orderItem("o2", "A1", at(9, 0), at(10, 0))
	statusExisting := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusIdle, at(8, 0), at(12, 0)),
	}
	if HasConflict(orderCandidate, statusExisting) {
		t.Fatal("Order candidates are exempt from conflict detection")
	}
}

func TestHasConflict_BoundaryCoincidenceIsConflict(t *testing.T) {
	// 闭边界语义：首尾相接不是相邻，而是冲突
	existing := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusIdle, at(8, 0), at(10, 0)),
	}

	// 开始边界重合
	sameStart := statusItem("s2", "A1", domain.StatusSetup, at(8, 0), at(8, 30))
	if !HasConflict(sameStart, existing) {
		t.Error("Identical start boundary must conflict")
	}

	// 结束边界重合
	sameEnd := statusItem("s3", "A1", domain.StatusSetup, at(7, 0), at(10, 0))
	if !HasConflict(sameEnd, existing) {
		t.Error("Identical end boundary must conflict")
	}

	// 背靠背：候选从既有条目的结束时刻开始
	backToBack := statusItem("s4", "A1", domain.StatusSetup, at(10, 0), at(11, 0))
	if HasConflict(backToBack, existing) {
		// 10:00 恰为既有结束、候选开始：区间不相交且边界对不上（start!=start, end!=end）
		t.Error("candStart == exEnd alone does not coincide on the same boundary kind")
	}

	// 既有 10:00-11:00，候选 08:00-10:00：end==start 不重合，end==end 也不重合
	later := []domain.ScheduleItem{
		statusItem("s5", "A1", domain.StatusIdle, at(10, 0), at(11, 0)),
	}
	leading := statusItem("s6", "A1", domain.StatusSetup, at(8, 0), at(10, 0))
	if HasConflict(leading, later) {
		t.Error("Touching opposite boundary kinds is adjacency, not conflict")
	}
}

func TestHasConflict_DifferentMachineGroups(t *testing.T) {
	existing := []domain.ScheduleItem{
		statusItem("s1", "B2", domain.StatusIdle, at(8, 0), at(10, 0)),
	}
	candidate := statusItem("s2", "A1", domain.StatusSetup, at(8, 0), at(10, 0))

	if HasConflict(candidate, existing) {
		t.Fatal("Items on different machine groups never conflict")
	}
}

func TestHasConflict_SelfExcluded(t *testing.T) {
	// 编辑已有条目时不和自己比较
	existing := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusIdle, at(8, 0), at(10, 0)),
	}
	moved := statusItem("s1", "A1", domain.StatusIdle, at(8, 30), at(9, 30))

	if HasConflict(moved, existing) {
		t.Fatal("A candidate must not conflict with its own persisted row")
	}
}

func TestHasConflict_OpenEndUsesDefaultDuration(t *testing.T) {
	// 进行中的条目（无结束时间）按开始+2小时参与判定
	existing := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusStopped, at(8, 0), time.Time{}),
	}

	// 09:00 落在 08:00+2h 窗口内
	inside := statusItem("s2", "A1", domain.StatusSetup, at(9, 0), at(9, 30))
	if !HasConflict(inside, existing) {
		t.Error("Expected conflict inside the substituted 2h window")
	}

	// 10:30 在窗口外
	outside := statusItem("s3", "A1", domain.StatusSetup, at(10, 30), at(11, 0))
	if HasConflict(outside, existing) {
		t.Error("Expected no conflict past the substituted 2h window")
	}
}

func TestHasConflict_ReturnsOnFirstConflict(t *testing.T) {
	existing := []domain.ScheduleItem{
		statusItem("s1", "A1", domain.StatusIdle, at(8, 0), at(9, 0)),
		statusItem("s2", "A1", domain.StatusSetup, at(9, 30), at(10, 30)),
	}
	candidate := statusItem("s3", "A1", domain.StatusTesting, at(8, 30), at(10, 0))

	if !HasConflict(candidate, existing) {
		t.Fatal("Expected conflict against multiple existing items")
	}
}
