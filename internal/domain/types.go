package domain

import (
	"fmt"
	"time"
)

// Payload 是单个指标类别的原始载荷。
type Payload = map[string]any

// DAO 表示被追踪的去中心化组织。
type DAO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	ChainID     string    `json:"chain_id"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayDescription 返回描述，缺省时使用模板句子。
func (d DAO) DisplayDescription() string {
	if d.Description != nil && *d.Description != "" {
		return *d.Description
	}
	return DefaultDescription(d.Name)
}

// DefaultDescription 生成 DAO 的默认描述。
func DefaultDescription(name string) string {
	return fmt.Sprintf("%s is a decentralized autonomous organization.", name)
}

// Run 是一次指标采集的执行记录。
type Run struct {
	ID           int64     `json:"id"`
	DAOID        int64     `json:"dao_id"`
	RunTimestamp time.Time `json:"run_timestamp"`
	SrcFilePath  string    `json:"src_file_path"`
	Succeeded    bool      `json:"succeeded"`
}

// Snapshot 是某次 Run 产出的单个类别载荷，创建后不可变。
type Snapshot struct {
	ID         int64   `json:"id"`
	DAOID      int64   `json:"dao_id"`
	RunID      int64   `json:"run_id"`
	MetricName string  `json:"metric_name"`
	Payload    Payload `json:"jsonb_payload"`
}

// HistoryPoint 是时间序列中的一个点。
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Data      Payload   `json:"data"`
}

// DAOFilter 描述列表查询条件。
type DAOFilter struct {
	Search  string
	ChainID string
	Limit   int
	Offset  int
}
