package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"daoportal/internal/apperr"
	"daoportal/internal/domain"
	"go.uber.org/zap"
)

// ImportStore 是导入流程使用的存储接口。
type ImportStore interface {
	CollectStore
	GetDAOByName(ctx context.Context, name string) (domain.DAO, error)
	CreateDAO(ctx context.Context, dao domain.DAO) (domain.DAO, error)
}

// ImportReport 汇总一次导入的结果。
type ImportReport struct {
	Records   int `json:"records"`
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Snapshots int `json:"snapshots"`
}

// seedDAOs 是 seed 命令写入的示例 DAO。
var seedDAOs = []struct {
	Name        string
	Description string
}{
	{"MakerDAO", "MakerDAO is a decentralized organization dedicated to bringing stability to the cryptocurrency economy through Dai, a stablecoin pegged to the US Dollar."},
	{"Uniswap", "Uniswap is a protocol for automated token exchange on Ethereum, enabling decentralized trading."},
	{"Aave", "Aave is a decentralized lending protocol where users can lend and borrow cryptocurrency assets."},
	{"Compound", "Compound is an algorithmic money market protocol on Ethereum that lets users earn interest or borrow assets."},
	{"ENS DAO", "Ethereum Name Service DAO governs the ENS protocol which provides decentralized naming for wallets, websites, & more."},
}

// ImportFlow 负责批量导入与示例数据初始化。
type ImportFlow struct {
	Store  ImportStore
	Logger *zap.Logger
	Now    func() time.Time
}

// Run 导入 JSON 数组文件：按名称补建 DAO，每个 DAO 写一次成功的 run 与五个标准类别的快照。
func (f *ImportFlow) Run(ctx context.Context, path string) (ImportReport, error) {
	var report ImportReport
	if f == nil || f.Store == nil {
		return report, fmt.Errorf("import flow 依赖未注入完整")
	}
	logger := f.logger()

	raw, err := os.ReadFile(path)
	if err != nil {
		return report, fmt.Errorf("读取导入文件失败: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return report, fmt.Errorf("解析导入文件失败: %w", err)
	}
	report.Records = len(records)
	logger.Info("开始导入 DAO 数据", zap.String("file", path), zap.Int("records", len(records)))

	for _, record := range records {
		name, _ := record["dao_name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			report.Skipped++
			logger.Warn("跳过缺少 dao_name 的记录")
			continue
		}
		dao, created, err := f.ensureDAO(ctx, name, chainIDOf(record))
		if err != nil {
			return report, err
		}
		if created {
			report.Created++
		}

		run, err := f.Store.CreateRun(ctx, dao.ID, f.now())
		if err != nil {
			return report, err
		}
		if err := f.Store.SetRunSourcePath(ctx, run.ID, path); err != nil {
			return report, err
		}
		snapshots := make([]domain.Snapshot, 0, len(domain.CanonicalCategories))
		for _, category := range domain.CanonicalCategories {
			payload, ok := record[category].(map[string]any)
			if !ok || len(payload) == 0 {
				continue
			}
			snapshots = append(snapshots, domain.Snapshot{DAOID: dao.ID, RunID: run.ID, MetricName: category, Payload: payload})
		}
		if err := f.Store.CreateSnapshots(ctx, snapshots); err != nil {
			return report, err
		}
		if err := f.Store.MarkRunSucceeded(ctx, run.ID); err != nil {
			return report, err
		}
		report.Snapshots += len(snapshots)
		logger.Info("DAO 导入完成", zap.String("dao_name", dao.Name), zap.Int64("dao_id", dao.ID), zap.Int("snapshots", len(snapshots)))
	}
	return report, nil
}

// Seed 写入示例 DAO，已存在的跳过，返回新建数量。
func (f *ImportFlow) Seed(ctx context.Context) (int, error) {
	if f == nil || f.Store == nil {
		return 0, fmt.Errorf("import flow 依赖未注入完整")
	}
	created := 0
	for _, seed := range seedDAOs {
		desc := seed.Description
		_, err := f.Store.CreateDAO(ctx, domain.DAO{Name: seed.Name, ChainID: "ethereum", Description: &desc})
		if apperr.Is(err, apperr.CodeConflict) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	f.logger().Info("示例 DAO 初始化完成", zap.Int("created", created))
	return created, nil
}

func (f *ImportFlow) ensureDAO(ctx context.Context, name, chainID string) (domain.DAO, bool, error) {
	dao, err := f.Store.GetDAOByName(ctx, name)
	if err == nil {
		return dao, false, nil
	}
	if !apperr.Is(err, apperr.CodeNotFound) {
		return domain.DAO{}, false, err
	}
	desc := domain.DefaultDescription(name)
	dao, err = f.Store.CreateDAO(ctx, domain.DAO{Name: name, ChainID: chainID, Description: &desc})
	if err != nil {
		return domain.DAO{}, false, err
	}
	return dao, true, nil
}

func (f *ImportFlow) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *ImportFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// chainIDOf 读取 chain_id，缺省为 "1"，数字按整数格式化。
func chainIDOf(record map[string]any) string {
	switch v := record["chain_id"].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return "1"
}
