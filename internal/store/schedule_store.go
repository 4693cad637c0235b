package store

import (
	"fmt"
	"sync"

	"wisescheduling-timeline/internal/domain"
)

// ScheduleStore 当前已加载机台集合的排程条目内存存储（按条目 id 索引）
// 条目的增删改只发生在这里；保存路径先乐观更新本存储，再异步持久化。
// 读写锁只为持久化回调（补写远端 id）与主流程的并发兜底，
// 调用方不得在一次变更的回调里同步触发对本存储的再次变更。
type ScheduleStore struct {
	mu    sync.RWMutex
	items map[string]domain.ScheduleItem
}

// NewScheduleStore 创建空存储
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{
		items: make(map[string]domain.ScheduleItem),
	}
}

// Add 新增条目；id 已存在时拒绝（移除过的 id 不会复用）
func (s *ScheduleStore) Add(item domain.ScheduleItem) error {
	if item.ID == "" {
		return fmt.Errorf("schedule item requires an id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("schedule item %s already exists", item.ID)
	}
	s.items[item.ID] = item
	return nil
}

// Update 按 id 整体替换；id 必须已存在，条目类别不可改变
func (s *ScheduleStore) Update(item domain.ScheduleItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("schedule item %s not found", item.ID)
	}
	if existing.Kind != item.Kind {
		return fmt.Errorf("schedule item %s kind is immutable (%s -> %s)",
			item.ID, existing.Kind, item.Kind)
	}
	s.items[item.ID] = item
	return nil
}

// Remove 按 id 移除
// 工单条目和未知 id 静默忽略：调用方不应对工单调用本方法，
// 权威守卫在状态转移校验的规则 1。
func (s *ScheduleStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return
	}
	if item.Kind == domain.KindOrder {
		return
	}
	delete(s.items, id)
}

// Get 按 id 查询
func (s *ScheduleStore) Get(id string) (domain.ScheduleItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	return item, ok
}

// Query 按谓词查询（冲突检测用它取同机台的既有条目）
func (s *ScheduleStore) Query(pred func(domain.ScheduleItem) bool) []domain.ScheduleItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ScheduleItem
	for _, item := range s.items {
		if pred(item) {
			result = append(result, item)
		}
	}
	return result
}

// ItemsByGroup 返回指定机台组的全部条目
func (s *ScheduleStore) ItemsByGroup(machineGroupID string) []domain.ScheduleItem {
	return s.Query(func(it domain.ScheduleItem) bool {
		return it.MachineGroupID == machineGroupID
	})
}

// ReplaceGroup 整组替换指定机台组的条目（全量刷新用）
func (s *ScheduleStore) ReplaceGroup(machineGroupID string, items []domain.ScheduleItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.items {
		if item.MachineGroupID == machineGroupID {
			delete(s.items, id)
		}
	}
	for _, item := range items {
		if item.MachineGroupID != machineGroupID || item.ID == "" {
			continue
		}
		s.items[item.ID] = item
	}
}

// Len 当前条目数
func (s *ScheduleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
