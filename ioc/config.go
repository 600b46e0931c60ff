package ioc

import (
	"os"
	"strings"

	"daoportal/internal/app"
)

const defaultConfigPath = "configs/config.yaml"

// InitConfig 读取应用配置，DAO_CONFIG 可指定配置文件路径。
func InitConfig() (app.Config, error) {
	path := strings.TrimSpace(os.Getenv("DAO_CONFIG"))
	if path == "" {
		path = defaultConfigPath
	}
	return app.LoadConfig(path)
}
