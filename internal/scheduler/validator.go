package scheduler

import (
	"wisescheduling-timeline/internal/domain"
)

// ValidateTransition 校验一次状态变更是否合法
// 纯决策函数，无副作用；拒绝时返回 *domain.StateTransitionError，
// 携带 {当前状态, 目标状态, 模式, 条目ID} 供调用方分支与诊断。
//
// 规则按顺序执行：
//  1. 工单条目的状态不可变更（无条件）
//  2. 纯字段编辑且状态不变：放行
//  3. 非新建模式下状态不变：拒绝
//  4. 非新建模式下，非 Idle 状态只能回到 Idle
//  5. 其余情况查规则表；新建模式跳过表查询（新条目可以以任何可切换状态开始）
func ValidateTransition(itemID string, current, target domain.Status, kind domain.ItemKind, mode domain.DialogMode, dataOnlyEdit bool) error {
	// 规则 1：工单状态不可切换
	if kind == domain.KindOrder && current != target {
		return domain.NewStateTransitionError(itemID, current, target, mode,
			"order items are immutable once created")
	}

	// 规则 2：纯字段编辑，状态未变
	if dataOnlyEdit && current == target {
		return nil
	}

	// 规则 3：编辑模式下不允许"切换"到同一状态
	if current == target && mode != domain.ModeCreate {
		return domain.NewStateTransitionError(itemID, current, target, mode,
			"already in this status")
	}

	// 规则 4：编辑模式下非 Idle 状态只能回到 Idle
	if mode != domain.ModeCreate && current != domain.StatusIdle && target != domain.StatusIdle {
		return domain.NewStateTransitionError(itemID, current, target, mode,
			"non-idle states may only return to idle")
	}

	// 规则 5：新建模式只要求目标状态可切换；编辑模式查转移规则表
	if mode == domain.ModeCreate {
		rule, ok := domain.RuleFor(target)
		if !ok || !rule.CanSwitch {
			return domain.NewStateTransitionError(itemID, current, target, mode,
				"new items may only start in a switchable status")
		}
		return nil
	}

	if !domain.CanTransition(current, target) {
		return domain.NewStateTransitionError(itemID, current, target, mode,
			"transition not allowed by rule table")
	}

	return nil
}

// GateSave 保存路径的完整状态门禁：转移校验 + Idle 进入前置条件
// original 为 nil 表示新建（当前状态取 item 自身的状态）。
// 从非 Idle 状态进入 Idle 时，条目必须已有具体结束时间。
func GateSave(item domain.ScheduleItem, original *domain.ScheduleItem, mode domain.DialogMode, dataOnlyEdit bool) error {
	current := item.Status
	if original != nil {
		current = original.Status
	}

	if err := ValidateTransition(item.ID, current, item.Status, item.Kind, mode, dataOnlyEdit); err != nil {
		return err
	}

	if item.Kind == domain.KindMachineStatus &&
		item.Status == domain.StatusIdle &&
		original != nil && original.Status != domain.StatusIdle &&
		item.End.IsZero() {
		return domain.NewStateTransitionError(item.ID, current, item.Status, mode,
			"entering idle requires a concrete end time")
	}

	return nil
}
