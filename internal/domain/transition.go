package domain

// TransitionRule 单个状态的转移规则与能力
type TransitionRule struct {
	// AllowedTargets 允许转移到的目标状态集合
	AllowedTargets map[Status]bool
	// CanSwitch 是否允许切换状态（新建条目也只能以可切换状态开始）
	CanSwitch bool
	// CanDelete 是否允许删除该状态的条目
	CanDelete bool
}

// transitionRules 静态转移规则表（进程启动时定义一次，不可变）
// - Idle 可进入 Setup/Testing/Stopped
// - Setup/Testing/Stopped 只能回到 Idle
// - Order 永远不可切换、不可删除
var transitionRules = map[Status]TransitionRule{
	StatusIdle: {
		AllowedTargets: map[Status]bool{
			StatusSetup:   true,
			StatusTesting: true,
			StatusStopped: true,
		},
		CanSwitch: true,
		CanDelete: true,
	},
	StatusSetup: {
		AllowedTargets: map[Status]bool{StatusIdle: true},
		CanSwitch:      true,
		CanDelete:      true,
	},
	StatusTesting: {
		AllowedTargets: map[Status]bool{StatusIdle: true},
		CanSwitch:      true,
		CanDelete:      true,
	},
	StatusStopped: {
		AllowedTargets: map[Status]bool{StatusIdle: true},
		CanSwitch:      true,
		CanDelete:      true,
	},
	StatusOrder: {
		AllowedTargets: map[Status]bool{},
		CanSwitch:      false,
		CanDelete:      false,
	},
}

// RuleFor 查询指定状态的转移规则
func RuleFor(s Status) (TransitionRule, bool) {
	rule, ok := transitionRules[s]
	return rule, ok
}

// CanTransition 判断规则表是否允许 current -> target
func CanTransition(current, target Status) bool {
	rule, ok := transitionRules[current]
	if !ok {
		return false
	}
	return rule.AllowedTargets[target]
}

// AllowedTargets 返回指定状态的合法目标集合（副本）
func AllowedTargets(s Status) []Status {
	rule, ok := transitionRules[s]
	if !ok {
		return nil
	}
	targets := make([]Status, 0, len(rule.AllowedTargets))
	for t := range rule.AllowedTargets {
		targets = append(targets, t)
	}
	return targets
}
