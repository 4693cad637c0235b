package coordinator

import (
	"sync"

	"go.uber.org/zap"

	"wisescheduling-timeline/internal/domain"
)

// ItemDialogState 条目编辑对话框状态
type ItemDialogState struct {
	IsOpen   bool
	Mode     domain.DialogMode
	Item     *domain.ScheduleItem
	Machines []domain.Machine
}

// DeleteDialogState 删除确认对话框状态
type DeleteDialogState struct {
	IsOpen bool
	ItemID string
}

// SaveHandler 保存事件处理器（由拥有保存流程的控制器注册，每个事件恰好消费一次）
// dataOnly 表示本次提交是纯字段编辑（表单未切换状态），由对话框声明
type SaveHandler func(item domain.ScheduleItem, mode domain.DialogMode, dataOnly bool)

// DeleteHandler 删除事件处理器
type DeleteHandler func(itemID string)

// Coordinator 对话框协调器
// 让众多时间线部件共享同一个编辑器/删除对话框而互不依赖。
// 以构造注入的方式供组件使用，不做包级单例；状态变更通过订阅回调广播。
// 同类对话框重复打开是替换而不是叠加；两类对话框相互独立。
// 回调在锁外调用；回调内不得同步触发对协调器的再次变更。
type Coordinator struct {
	mu     sync.Mutex
	logger *zap.Logger

	itemState   ItemDialogState
	deleteState DeleteDialogState

	nextSubID  int
	itemSubs   map[int]func(ItemDialogState)
	deleteSubs map[int]func(DeleteDialogState)

	saveHandler   SaveHandler
	deleteHandler DeleteHandler
}

// New 创建协调器
func New(logger *zap.Logger) *Coordinator {
	return &Coordinator{
		logger:     logger,
		itemSubs:   make(map[int]func(ItemDialogState)),
		deleteSubs: make(map[int]func(DeleteDialogState)),
	}
}

// SetSaveHandler 注册保存事件处理器（重复注册替换旧处理器）
func (c *Coordinator) SetSaveHandler(h SaveHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveHandler = h
}

// SetDeleteHandler 注册删除事件处理器
func (c *Coordinator) SetDeleteHandler(h DeleteHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteHandler = h
}

// OnItemDialogChange 订阅编辑对话框状态变化，返回退订函数
func (c *Coordinator) OnItemDialogChange(cb func(ItemDialogState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.itemSubs[id] = cb

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.itemSubs, id)
	}
}

// OnDeleteDialogChange 订阅删除对话框状态变化，返回退订函数
func (c *Coordinator) OnDeleteDialogChange(cb func(DeleteDialogState)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.deleteSubs[id] = cb

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.deleteSubs, id)
	}
}

// OpenItemDialog 打开条目编辑对话框；已打开时替换状态
func (c *Coordinator) OpenItemDialog(item domain.ScheduleItem, mode domain.DialogMode, machines []domain.Machine) {
	c.mu.Lock()
	if c.itemState.IsOpen {
		c.logger.Debug("Item dialog reopened, replacing previous state",
			zap.String("previous_item", itemIDOf(c.itemState.Item)),
			zap.String("item", item.ID),
		)
	}
	c.itemState = ItemDialogState{
		IsOpen:   true,
		Mode:     mode,
		Item:     &item,
		Machines: machines,
	}
	state := c.itemState
	subs := c.itemSubscribers()
	c.mu.Unlock()

	notifyItem(subs, state)
}

// CloseItemDialog 关闭条目编辑对话框
func (c *Coordinator) CloseItemDialog() {
	c.mu.Lock()
	c.itemState = ItemDialogState{}
	state := c.itemState
	subs := c.itemSubscribers()
	c.mu.Unlock()

	notifyItem(subs, state)
}

// SaveItem 对话框表单提交：发出保存事件，交由已注册的控制器消费
// 对话框保持打开；是否关闭由控制器在保存门禁通过后决定。
// 对话框未打开时提交被忽略（没有模式可依据）。
func (c *Coordinator) SaveItem(item domain.ScheduleItem, dataOnly bool) {
	c.mu.Lock()
	handler := c.saveHandler
	mode := c.itemState.Mode
	open := c.itemState.IsOpen
	c.mu.Unlock()

	if !open {
		c.logger.Warn("Save event dropped: item dialog is not open",
			zap.String("item", item.ID),
		)
		return
	}
	if handler == nil {
		c.logger.Warn("Save event dropped: no save handler registered",
			zap.String("item", item.ID),
		)
		return
	}
	handler(item, mode, dataOnly)
}

// OpenDeleteDialog 打开删除确认对话框；已打开时替换状态
func (c *Coordinator) OpenDeleteDialog(itemID string) {
	c.mu.Lock()
	c.deleteState = DeleteDialogState{IsOpen: true, ItemID: itemID}
	state := c.deleteState
	subs := c.deleteSubscribers()
	c.mu.Unlock()

	notifyDelete(subs, state)
}

// CloseDeleteDialog 关闭删除确认对话框
func (c *Coordinator) CloseDeleteDialog() {
	c.mu.Lock()
	c.deleteState = DeleteDialogState{}
	state := c.deleteState
	subs := c.deleteSubscribers()
	c.mu.Unlock()

	notifyDelete(subs, state)
}

// ConfirmDelete 确认删除：发出删除事件后自动关闭对话框
func (c *Coordinator) ConfirmDelete() {
	c.mu.Lock()
	handler := c.deleteHandler
	itemID := c.deleteState.ItemID
	open := c.deleteState.IsOpen
	c.deleteState = DeleteDialogState{}
	state := c.deleteState
	subs := c.deleteSubscribers()
	c.mu.Unlock()

	if !open {
		return
	}
	if handler != nil {
		handler(itemID)
	} else {
		c.logger.Warn("Delete event dropped: no delete handler registered",
			zap.String("item", itemID),
		)
	}
	notifyDelete(subs, state)
}

// ItemDialogState 当前编辑对话框状态快照
func (c *Coordinator) ItemDialogState() ItemDialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.itemState
}

// DeleteDialogState 当前删除对话框状态快照
func (c *Coordinator) DeleteDialogState() DeleteDialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteState
}

func (c *Coordinator) itemSubscribers() []func(ItemDialogState) {
	subs := make([]func(ItemDialogState), 0, len(c.itemSubs))
	for _, cb := range c.itemSubs {
		subs = append(subs, cb)
	}
	return subs
}

func (c *Coordinator) deleteSubscribers() []func(DeleteDialogState) {
	subs := make([]func(DeleteDialogState), 0, len(c.deleteSubs))
	for _, cb := range c.deleteSubs {
		subs = append(subs, cb)
	}
	return subs
}

func notifyItem(subs []func(ItemDialogState), state ItemDialogState) {
	for _, cb := range subs {
		cb(state)
	}
}

func notifyDelete(subs []func(DeleteDialogState), state DeleteDialogState) {
	for _, cb := range subs {
		cb(state)
	}
}

func itemIDOf(item *domain.ScheduleItem) string {
	if item == nil {
		return ""
	}
	return item.ID
}
