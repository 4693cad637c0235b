package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"wisescheduling-timeline/internal/models"
)

// SnapshotCache 机台时间线快照缓存
// 保存成功后把整组线上记录写入 KV，供展示侧（时间线视图后端）读取，
// 避免每次打开视图都打远端 API。
type SnapshotCache struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewSnapshotCache 创建快照缓存；ttl 为 0 表示不过期
func NewSnapshotCache(kv KV, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{kv: kv, ttl: ttl, logger: logger}
}

func snapshotKey(machineGroupID string) string {
	return fmt.Sprintf("wisescheduling:timeline:%s:items", machineGroupID)
}

// UpdateGroup 写入指定机台组的时间线快照
func (c *SnapshotCache) UpdateGroup(ctx context.Context, machineGroupID string, records []models.TimelineRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline snapshot: %w", err)
	}

	if err := c.kv.Set(ctx, snapshotKey(machineGroupID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to write timeline snapshot: %w", err)
	}

	c.logger.Debug("Updated timeline snapshot",
		zap.String("machine_group_id", machineGroupID),
		zap.Int("record_count", len(records)),
	)
	return nil
}

// Group 读取指定机台组的时间线快照；缓存不存在返回 ErrMiss
func (c *SnapshotCache) Group(ctx context.Context, machineGroupID string) ([]models.TimelineRecord, error) {
	raw, err := c.kv.Get(ctx, snapshotKey(machineGroupID))
	if err != nil {
		if err == ErrMiss {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read timeline snapshot: %w", err)
	}

	var records []models.TimelineRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline snapshot: %w", err)
	}
	return records, nil
}

// DropGroup 删除指定机台组的快照（机台卸载时调用）
func (c *SnapshotCache) DropGroup(ctx context.Context, machineGroupID string) error {
	return c.kv.Del(ctx, snapshotKey(machineGroupID))
}
