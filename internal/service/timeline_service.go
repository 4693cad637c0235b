package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wisescheduling-timeline/internal/config"
	"wisescheduling-timeline/internal/coordinator"
	"wisescheduling-timeline/internal/domain"
	"wisescheduling-timeline/internal/models"
	"wisescheduling-timeline/internal/repository"
	"wisescheduling-timeline/internal/scheduler"
	"wisescheduling-timeline/internal/store"
	"wisescheduling-timeline/internal/transformer"
)

// Notifier 瞬时错误通知回调（展示侧注入，用于弹出提示）
type Notifier func(err error)

// TimelineService 机台时间线引擎
// 串起保存/删除/加载控制流：对话框事件 -> 状态门禁 -> 冲突检测 ->
// 线上转换 -> 乐观更新本地存储 -> 异步持久化。
// 持久化失败只发瞬时通知，不回滚乐观更新。
type TimelineService struct {
	logger      *zap.Logger
	repo        repository.ScheduleRepository
	store       *store.ScheduleStore
	snapshots   *store.SnapshotCache // 为 nil 时禁用快照缓存
	transformer *transformer.Transformer
	coordinator *coordinator.Coordinator
	autosave    *Debouncer

	refreshInterval time.Duration

	mu       sync.Mutex
	machines []domain.Machine
	notify   Notifier

	wg sync.WaitGroup
}

// New 按配置组装服务（resty 远端客户端 + Redis 快照缓存）
func New(cfg *config.Config, logger *zap.Logger) (*TimelineService, error) {
	repo := repository.NewRemoteScheduleRepository(
		cfg.Remote.BaseURL,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		cfg.Remote.RetryCount,
		logger,
	)

	var snapshots *store.SnapshotCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		snapshots = store.NewSnapshotCache(
			store.NewRedisKV(client),
			time.Duration(cfg.Redis.SnapshotTTLSeconds)*time.Second,
			logger,
		)
	}

	return NewWithDeps(Deps{
		Logger:          logger,
		Repo:            repo,
		Snapshots:       snapshots,
		Coordinator:     coordinator.New(logger),
		QuietWindow:     time.Duration(cfg.AutoSave.QuietMillis) * time.Millisecond,
		RefreshInterval: time.Duration(cfg.Refresh.IntervalSeconds) * time.Second,
	}), nil
}

// Deps 服务依赖（测试用内存实现替换远端与缓存）
type Deps struct {
	Logger          *zap.Logger
	Repo            repository.ScheduleRepository
	Snapshots       *store.SnapshotCache
	Coordinator     *coordinator.Coordinator
	QuietWindow     time.Duration
	RefreshInterval time.Duration
}

// NewWithDeps 按显式依赖组装服务
func NewWithDeps(deps Deps) *TimelineService {
	s := &TimelineService{
		logger:          deps.Logger,
		repo:            deps.Repo,
		store:           store.NewScheduleStore(),
		snapshots:       deps.Snapshots,
		transformer:     transformer.New(deps.Logger),
		coordinator:     deps.Coordinator,
		autosave:        NewDebouncer(deps.QuietWindow),
		refreshInterval: deps.RefreshInterval,
	}
	s.registerCoordinatorHandlers()
	return s
}

// Coordinator 返回对话框协调器（时间线部件通过它打开共享对话框）
func (s *TimelineService) Coordinator() *coordinator.Coordinator {
	return s.coordinator
}

// Store 返回条目存储（只读用途：时间线视图取数）
func (s *TimelineService) Store() *store.ScheduleStore {
	return s.store
}

// SetNotifier 注册瞬时错误通知回调
func (s *TimelineService) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = n
}

// registerCoordinatorHandlers 把对话框事件接到保存/删除流程
func (s *TimelineService) registerCoordinatorHandlers() {
	if s.coordinator == nil {
		return
	}
	s.coordinator.SetSaveHandler(func(item domain.ScheduleItem, mode domain.DialogMode, dataOnly bool) {
		if err := s.SaveItem(context.Background(), item, mode, dataOnly); err != nil {
			// 校验/转移失败：存储未动，对话框保持打开，给用户改
			s.notifyErr(domain.NewFormError("save rejected", err))
			return
		}
		s.coordinator.CloseItemDialog()
	})
	s.coordinator.SetDeleteHandler(func(itemID string) {
		s.DeleteItem(context.Background(), itemID)
	})
}

// SaveItem 经过完整门禁的保存路径
// dataOnly 由调用方（对话框）声明：true 表示本次提交未切换状态，
// 只改了数据字段；同状态的"切换"提交（dataOnly=false）会被拒绝。
// 门禁失败时返回错误且本地存储不变；通过后先乐观更新再异步持久化。
func (s *TimelineService) SaveItem(ctx context.Context, item domain.ScheduleItem, mode domain.DialogMode, dataOnly bool) error {
	var original *domain.ScheduleItem
	if mode != domain.ModeCreate {
		if orig, ok := s.store.Get(item.ID); ok {
			original = &orig
		}
	}

	if err := scheduler.GateSave(item, original, mode, dataOnly); err != nil {
		return err
	}

	peers := s.store.ItemsByGroup(item.MachineGroupID)
	if scheduler.HasConflict(item, peers) {
		return domain.NewValidationError("timeWindow", item.Status,
			"time window conflicts with an existing item on this machine")
	}

	rec, err := s.transformer.ToWire(item, original, mode, dataOnly, false)
	if err != nil {
		return err
	}

	// 乐观更新：存储先行，网络随后
	if mode == domain.ModeCreate {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if err := s.store.Add(item); err != nil {
			return err
		}
	} else {
		if err := s.store.Update(item); err != nil {
			return err
		}
	}

	// 异步持久化：关闭对话框不取消在途调用，所以不挂调用方的 ctx
	s.wg.Add(1)
	go s.persist(item, rec, mode)

	return nil
}

// persist 持久化一次保存；失败只通知不回滚
func (s *TimelineService) persist(item domain.ScheduleItem, rec models.TimelineRecord, mode domain.DialogMode) {
	defer s.wg.Done()
	ctx := context.Background()

	var err error
	switch {
	case item.Kind == domain.KindOrder:
		err = s.repo.UpdateOrderSchedule(ctx, rec)
	case mode == domain.ModeCreate:
		var remoteID string
		remoteID, err = s.repo.CreateStatus(ctx, rec)
		if err == nil {
			s.attachRemoteID(item.ID, remoteID)
		}
	default:
		err = s.repo.UpdateStatus(ctx, rec)
	}

	if err != nil {
		s.logger.Error("Persist failed after optimistic update",
			zap.String("item_id", item.ID),
			zap.String("machine_group_id", item.MachineGroupID),
			zap.Error(err),
		)
		s.notifyErr(err)
		return
	}

	s.refreshSnapshot(item.MachineGroupID)
}

// attachRemoteID 把远端分配的 machineStatusId 回写进存储
func (s *TimelineService) attachRemoteID(itemID, remoteID string) {
	stored, ok := s.store.Get(itemID)
	if !ok || stored.MachineStatus == nil {
		return
	}
	stored.MachineStatus.StatusRecordID = remoteID
	if err := s.store.Update(stored); err != nil {
		s.logger.Warn("Failed to attach remote status id",
			zap.String("item_id", itemID),
			zap.Error(err),
		)
	}
}

// DeleteItem 删除机台状态条目
// 工单条目与未知 id 静默忽略（权威守卫在转移规则 1，调用方不该走到这里）。
func (s *TimelineService) DeleteItem(ctx context.Context, itemID string) {
	item, ok := s.store.Get(itemID)
	if !ok {
		return
	}
	if item.Kind == domain.KindOrder {
		s.logger.Warn("Ignoring delete request for order item",
			zap.String("item_id", itemID),
		)
		return
	}

	s.store.Remove(itemID)

	recordID := itemID
	if item.MachineStatus != nil && item.MachineStatus.StatusRecordID != "" {
		recordID = item.MachineStatus.StatusRecordID
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.DeleteStatus(context.Background(), recordID); err != nil {
			s.logger.Error("Remote delete failed",
				zap.String("item_id", itemID),
				zap.String("status_record_id", recordID),
				zap.Error(err),
			)
			s.notifyErr(err)
			return
		}
		s.refreshSnapshot(item.MachineGroupID)
	}()
}

// AutoSaveOrderField 工单行内字段编辑的自动保存
// 本地存储立即更新；远端请求按工单标识去抖合并，静默窗口内只发最后一次。
func (s *TimelineService) AutoSaveOrderField(item domain.ScheduleItem) error {
	if item.Kind != domain.KindOrder {
		return domain.NewValidationError("kind", item.Status,
			"field auto-save only applies to order rows")
	}

	rec, err := s.transformer.ToWire(item, nil, domain.ModeEdit, true, false)
	if err != nil {
		return err
	}
	if err := s.store.Update(item); err != nil {
		return err
	}

	s.autosave.Schedule("order:"+item.ID, func() {
		if err := s.repo.UpdateOrderSchedule(context.Background(), rec); err != nil {
			s.logger.Error("Order auto-save failed",
				zap.String("item_id", item.ID),
				zap.Error(err),
			)
			s.notifyErr(err)
			return
		}
		s.refreshSnapshot(item.MachineGroupID)
	})

	return nil
}

// LoadMachines 拉取机台参考数据
func (s *TimelineService) LoadMachines(ctx context.Context) ([]domain.Machine, error) {
	records, err := s.repo.ListMachines(ctx)
	if err != nil {
		return nil, err
	}

	machines := make([]domain.Machine, 0, len(records))
	for _, rec := range records {
		machines = append(machines, domain.Machine{
			ID:       rec.MachineSN,
			AreaCode: rec.ProductionArea,
		})
	}

	s.mu.Lock()
	s.machines = machines
	s.mu.Unlock()

	return machines, nil
}

// Machines 当前已加载的机台列表
func (s *TimelineService) Machines() []domain.Machine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Machine, len(s.machines))
	copy(out, s.machines)
	return out
}

// LoadTimeline 全量拉取指定机台集合的时间线并重建存储
func (s *TimelineService) LoadTimeline(ctx context.Context, machines []domain.Machine) error {
	sns := make([]string, 0, len(machines))
	for _, m := range machines {
		sns = append(sns, m.ID)
	}

	records, err := s.repo.ListTimeline(ctx, sns)
	if err != nil {
		return err
	}

	byGroup := make(map[string][]domain.ScheduleItem, len(machines))
	for _, rec := range records {
		item := s.transformer.ToInternal(rec)
		byGroup[item.MachineGroupID] = append(byGroup[item.MachineGroupID], item)
	}

	for _, m := range machines {
		s.store.ReplaceGroup(m.ID, byGroup[m.ID])
		s.refreshSnapshot(m.ID)
	}

	s.logger.Info("Timeline loaded",
		zap.Int("machine_count", len(machines)),
		zap.Int("record_count", len(records)),
		zap.Int("item_count", s.store.Len()),
	)
	return nil
}

// refreshSnapshot 重建指定机台组的快照缓存
func (s *TimelineService) refreshSnapshot(machineGroupID string) {
	if s.snapshots == nil {
		return
	}

	items := s.store.ItemsByGroup(machineGroupID)
	records := make([]models.TimelineRecord, 0, len(items))
	for _, item := range items {
		// 纯映射：快照照原样反映存储，保存门禁不在此路径
		records = append(records, s.transformer.Serialize(item))
	}

	if err := s.snapshots.UpdateGroup(context.Background(), machineGroupID, records); err != nil {
		s.logger.Warn("Failed to refresh timeline snapshot",
			zap.String("machine_group_id", machineGroupID),
			zap.Error(err),
		)
	}
}

// notifyErr 发出瞬时错误通知；未注册回调时仅依赖日志
func (s *TimelineService) notifyErr(err error) {
	s.mu.Lock()
	n := s.notify
	s.mu.Unlock()
	if n != nil {
		n(err)
	}
}

// Run 启动服务：首次全量加载后按固定间隔刷新，直到 ctx 取消
func (s *TimelineService) Run(ctx context.Context) error {
	machines, err := s.LoadMachines(ctx)
	if err != nil {
		return fmt.Errorf("failed to load machines: %w", err)
	}
	if err := s.LoadTimeline(ctx, machines); err != nil {
		return fmt.Errorf("failed to load timeline: %w", err)
	}

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	s.logger.Info("Timeline service started",
		zap.Duration("refresh_interval", s.refreshInterval),
		zap.Int("machine_count", len(machines)),
	)

	for {
		select {
		case <-ctx.Done():
			return s.Stop()
		case <-ticker.C:
			if err := s.LoadTimeline(ctx, s.Machines()); err != nil {
				s.logger.Error("Timeline refresh failed", zap.Error(err))
			}
		}
	}
}

// Stop 停机：冲掉待发的自动保存，等在途持久化落地
func (s *TimelineService) Stop() error {
	s.logger.Info("Stopping timeline service")
	s.autosave.Flush()
	s.wg.Wait()
	s.logger.Info("Timeline service stopped")
	return nil
}
