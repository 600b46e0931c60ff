package domain

// CollectStatus 是采集任务的结果类别。
type CollectStatus string

const (
	CollectSuccess CollectStatus = "success"
	CollectFailed  CollectStatus = "failed"
)

// CollectResult 记录一次采集任务的结果，成功时带计数，失败时带原因。
type CollectResult struct {
	Status       CollectStatus `json:"status"`
	DAOID        int64         `json:"dao_id"`
	DAOName      string        `json:"dao_name,omitempty"`
	RunID        int64         `json:"run_id,omitempty"`
	MetricsCount int           `json:"metrics_count"`
	FilePath     string        `json:"file_path,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Failed 判断结果是否为失败。
func (r CollectResult) Failed() bool {
	return r.Status != CollectSuccess
}

// FanOutResult 记录一次全量调度的结果。
type FanOutResult struct {
	Status  CollectStatus `json:"status"`
	Queued  int           `json:"queued"`
	Errored int           `json:"failed"`
	Message string        `json:"message"`
}

// Failed 判断全量调度是否失败。
func (r FanOutResult) Failed() bool {
	return r.Status != CollectSuccess
}
