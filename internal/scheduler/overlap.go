package scheduler

import (
	"time"

	"wisescheduling-timeline/internal/domain"
)

// DefaultOpenEndDuration 开放区间参与冲突判定时的替代时长
// 进行中的机台状态没有结束时间，按"开始 + 2 小时"参与判定，绝不以开放区间比较。
const DefaultOpenEndDuration = 2 * time.Hour

// HasConflict 判断候选条目的时间窗口是否与同机台既有条目冲突
//
// 判定语义为闭边界相交：两区间相交（candStart < exEnd && candEnd > exStart），
// 或任一边界恰好重合（start==start 或 end==end），都算冲突。
// 这比半开区间判定更严格：首尾相接的背靠背排程也视为冲突，不视为相邻。
//
// 工单条目豁免：候选为工单直接放行，既有条目中的工单也不参与判定。
// 找到第一个冲突即返回；需要枚举全部冲突的调用方应自行缩减候选集合分批调用。
func HasConflict(candidate domain.ScheduleItem, existing []domain.ScheduleItem) bool {
	if candidate.Kind == domain.KindOrder {
		return false
	}

	candStart, candEnd := effectiveWindow(candidate)

	for _, ex := range existing {
		if ex.Kind == domain.KindOrder {
			continue
		}
		if ex.ID == candidate.ID {
			continue
		}
		if ex.MachineGroupID != candidate.MachineGroupID {
			continue
		}

		exStart, exEnd := effectiveWindow(ex)

		if candStart.Before(exEnd) && candEnd.After(exStart) {
			return true
		}
		// 边界重合也算冲突
		if candStart.Equal(exStart) || candEnd.Equal(exEnd) {
			return true
		}
	}

	return false
}

// effectiveWindow 返回参与冲突判定的有效时间窗口
func effectiveWindow(it domain.ScheduleItem) (time.Time, time.Time) {
	if it.End.IsZero() {
		return it.Start, it.Start.Add(DefaultOpenEndDuration)
	}
	return it.Start, it.End
}
