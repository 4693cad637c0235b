package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"wisescheduling-timeline/internal/domain"
	"wisescheduling-timeline/internal/models"
)

// resultSuccess 远端 API 的成功码（与前端 Result 约定一致）
const resultSuccess = 2000

// apiResponse 远端 API 响应包络
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// RemoteScheduleRepository 基于 resty 的 MES API 客户端
type RemoteScheduleRepository struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewRemoteScheduleRepository 创建远端持久化客户端
func NewRemoteScheduleRepository(baseURL string, timeout time.Duration, retryCount int, logger *zap.Logger) *RemoteScheduleRepository {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(retryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &RemoteScheduleRepository{
		httpClient: client,
		logger:     logger,
	}
}

// CreateStatus 新建机台状态记录
func (r *RemoteScheduleRepository) CreateStatus(ctx context.Context, rec models.TimelineRecord) (string, error) {
	data, err := r.post(ctx, "create-status", "/api/v1/machine-status/create", rec)
	if err != nil {
		return "", err
	}

	var created struct {
		MachineStatusID string `json:"machineStatusId"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return "", domain.NewApiError("create-status", 0, "failed to decode create response", err)
	}
	if created.MachineStatusID == "" {
		return "", domain.NewApiError("create-status", 0, "remote did not assign a machineStatusId", nil)
	}

	r.logger.Info("Created machine status record",
		zap.String("machine_status_id", created.MachineStatusID),
		zap.String("machine_sn", rec.MachineSN),
		zap.String("time_line_status", rec.TimeLineStatus),
	)
	return created.MachineStatusID, nil
}

// UpdateStatus 更新机台状态记录
func (r *RemoteScheduleRepository) UpdateStatus(ctx context.Context, rec models.TimelineRecord) error {
	if rec.MachineStatusID == "" {
		return domain.NewApiError("update-status", 0, "machineStatusId is required for update", nil)
	}
	_, err := r.post(ctx, "update-status", "/api/v1/machine-status/update", rec)
	return err
}

// DeleteStatus 删除机台状态记录
func (r *RemoteScheduleRepository) DeleteStatus(ctx context.Context, statusRecordID string) error {
	body := map[string]string{"machineStatusId": statusRecordID}
	_, err := r.post(ctx, "delete-status", "/api/v1/machine-status/delete", body)
	return err
}

// UpdateOrderSchedule 更新工单排程字段
func (r *RemoteScheduleRepository) UpdateOrderSchedule(ctx context.Context, rec models.TimelineRecord) error {
	if rec.ProductionScheduleID == "" {
		return domain.NewApiError("update-order-schedule", 0, "productionScheduleId is required", nil)
	}
	_, err := r.post(ctx, "update-order-schedule", "/api/v1/order-schedule/update", rec)
	return err
}

// ListMachines 拉取机台参考数据
func (r *RemoteScheduleRepository) ListMachines(ctx context.Context) ([]models.MachineRecord, error) {
	var response apiResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/api/v1/machines")
	if err != nil {
		return nil, domain.NewApiError("list-machines", statusCodeOf(resp), "transport failure", err)
	}
	if err := checkEnvelope("list-machines", resp, response); err != nil {
		return nil, err
	}

	var machines []models.MachineRecord
	if err := json.Unmarshal(response.Data, &machines); err != nil {
		return nil, domain.NewApiError("list-machines", resp.StatusCode(), "failed to decode machine list", err)
	}
	return machines, nil
}

// ListTimeline 拉取指定机台集合的时间线记录
func (r *RemoteScheduleRepository) ListTimeline(ctx context.Context, machineSNs []string) ([]models.TimelineRecord, error) {
	body := map[string][]string{"machineSNs": machineSNs}
	data, err := r.post(ctx, "list-timeline", "/api/v1/timeline/list", body)
	if err != nil {
		return nil, err
	}

	var records []models.TimelineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, domain.NewApiError("list-timeline", 0, "failed to decode timeline records", err)
	}

	r.logger.Debug("Fetched timeline records",
		zap.Int("machine_count", len(machineSNs)),
		zap.Int("record_count", len(records)),
	)
	return records, nil
}

// post 发送请求并校验响应包络，返回 data 段
func (r *RemoteScheduleRepository) post(ctx context.Context, op, path string, body any) (json.RawMessage, error) {
	var response apiResponse
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&response).
		Post(path)
	if err != nil {
		r.logger.Error("Remote call transport failure",
			zap.String("op", op),
			zap.Error(err),
		)
		return nil, domain.NewApiError(op, statusCodeOf(resp), "transport failure", err)
	}

	if err := checkEnvelope(op, resp, response); err != nil {
		r.logger.Error("Remote call rejected",
			zap.String("op", op),
			zap.Int("http_status", resp.StatusCode()),
			zap.Int("code", response.Code),
			zap.String("message", response.Message),
		)
		return nil, err
	}

	return response.Data, nil
}

func checkEnvelope(op string, resp *resty.Response, response apiResponse) error {
	if resp.IsError() {
		return domain.NewApiError(op, resp.StatusCode(),
			fmt.Sprintf("server returned HTTP %d", resp.StatusCode()), nil)
	}
	if response.Code != resultSuccess {
		return domain.NewApiError(op, resp.StatusCode(),
			fmt.Sprintf("api error: %s (code %d)", response.Message, response.Code), nil)
	}
	return nil
}

func statusCodeOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}
