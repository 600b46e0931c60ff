// Package source 负责从数据目录中定位并解析 DAO 的指标文件。
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"daoportal/internal/domain"
)

// ErrNoFile 表示数据目录中没有匹配的文件。
var ErrNoFile = errors.New("no metric file found")

// FileSource 读取本地目录中的 JSON 指标文件。
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Locate 先按 DAO 名称匹配文件名，找不到再按 chain id 匹配。
func (s *FileSource) Locate(dao domain.DAO) (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("读取数据目录失败 %s: %w", s.dir, err)
	}
	for _, needle := range []string{dao.Name, dao.ChainID} {
		if needle == "" {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			if strings.Contains(strings.TrimSuffix(name, ".json"), needle) {
				return filepath.Join(s.dir, name), nil
			}
		}
	}
	return "", ErrNoFile
}

// Load 读取并解析文件，返回按类别拆分的载荷。
func (s *FileSource) Load(path string) (map[string]domain.Payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取指标文件失败 %s: %w", path, err)
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析指标文件失败 %s: %w", path, err)
	}
	return Extract(data), nil
}

// Extract 取出白名单中的顶层类别以及 metrics 对象下的全部子键，后者覆盖前者。
// 空值被丢弃，非对象值包装为 {"value": v}。
func Extract(data map[string]any) map[string]domain.Payload {
	res := make(map[string]domain.Payload)
	for _, key := range domain.SourceCategories {
		if v, ok := data[key]; ok {
			put(res, key, v)
		}
	}
	if nested, ok := data[domain.NestedMetricsKey].(map[string]any); ok {
		for key, v := range nested {
			put(res, key, v)
		}
	}
	return res
}

func put(res map[string]domain.Payload, key string, v any) {
	switch val := v.(type) {
	case nil:
		return
	case map[string]any:
		if len(val) == 0 {
			return
		}
		res[key] = val
	case []any:
		if len(val) == 0 {
			return
		}
		res[key] = domain.Payload{"value": val}
	case string:
		if val == "" {
			return
		}
		res[key] = domain.Payload{"value": val}
	default:
		res[key] = domain.Payload{"value": val}
	}
}
