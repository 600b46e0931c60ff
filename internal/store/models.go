package store

import (
	"encoding/json"
	"time"

	"daoportal/internal/domain"
	"gorm.io/datatypes"
)

type daoModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;size:255;not null;uniqueIndex:uq_dao_name"`
	ChainID     string    `gorm:"column:chain_id;size:64;not null;index:idx_dao_chain_id"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (daoModel) TableName() string { return "dao" }

func (m daoModel) toDomain() domain.DAO {
	return domain.DAO{
		ID:          m.ID,
		Name:        m.Name,
		ChainID:     m.ChainID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type runModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DAOID        int64     `gorm:"column:dao_id;not null;index:idx_metric_run_dao_ts,priority:1"`
	RunTimestamp time.Time `gorm:"column:run_timestamp;not null;index:idx_metric_run_dao_ts,priority:2"`
	SrcFilePath  string    `gorm:"column:src_file_path;type:text;not null"`
	Succeeded    bool      `gorm:"column:succeeded;not null"`
}

func (runModel) TableName() string { return "metric_run" }

func (m runModel) toDomain() domain.Run {
	return domain.Run{
		ID:           m.ID,
		DAOID:        m.DAOID,
		RunTimestamp: m.RunTimestamp.UTC(),
		SrcFilePath:  m.SrcFilePath,
		Succeeded:    m.Succeeded,
	}
}

type snapshotModel struct {
	ID           int64             `gorm:"column:id;primaryKey;autoIncrement"`
	DAOID        int64             `gorm:"column:dao_id;not null;index:idx_metric_snapshot_dao"`
	RunID        int64             `gorm:"column:run_id;not null;index:idx_metric_snapshot_run"`
	MetricName   string            `gorm:"column:metric_name;size:128;not null;index:idx_metric_snapshot_name"`
	JSONBPayload datatypes.JSONMap `gorm:"column:jsonb_payload;not null"`
}

func (snapshotModel) TableName() string { return "metric_snapshot" }

func (m snapshotModel) toDomain() domain.Snapshot {
	return domain.Snapshot{
		ID:         m.ID,
		DAOID:      m.DAOID,
		RunID:      m.RunID,
		MetricName: m.MetricName,
		Payload:    toPayload(m.JSONBPayload),
	}
}

// toPayload 把 JSONMap 中的 json.Number 转成 float64，与写入时 encoding/json 的解码结果保持一致。
func toPayload(m datatypes.JSONMap) domain.Payload {
	payload := make(domain.Payload, len(m))
	for k, v := range m {
		payload[k] = normalizeNumber(v)
	}
	return payload
}

func normalizeNumber(v any) any {
	switch t := v.(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumber(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumber(item)
		}
		return t
	default:
		return v
	}
}
