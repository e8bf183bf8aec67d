/*
Copyright © 2020 Marvin

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package config

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/marchwind/comparedb/common"
)

// 程序配置文件
type Config struct {
	TaskMode      string        `toml:"-" json:"task_mode"`
	AppConfig     AppConfig     `toml:"app" json:"app"`
	SourceConfig  MySQLConfig   `toml:"source" json:"source"`
	TargetConfig  MySQLConfig   `toml:"target" json:"target"`
	CompareConfig CompareConfig `toml:"compare" json:"compare"`
	MetaConfig    MetaConfig    `toml:"meta" json:"meta"`
	LogConfig     LogConfig     `toml:"log" json:"log"`
}

type AppConfig struct {
	PprofPort        string `toml:"pprof-port" json:"pprof-port"`
	SlowlogThreshold int    `toml:"slowlog-threshold" json:"slowlog-threshold"`
}

type MySQLConfig struct {
	Username      string `toml:"username" json:"username"`
	Password      string `toml:"password" json:"-"`
	Host          string `toml:"host" json:"host"`
	Port          int    `toml:"port" json:"port"`
	SchemaName    string `toml:"schema-name" json:"schema-name"`
	ConnectParams string `toml:"connect-params" json:"connect-params"`
}

type CompareConfig struct {
	CompareMode     string   `toml:"compare-mode" json:"compare-mode"`
	ChunkSize       int      `toml:"chunk-size" json:"chunk-size"`
	DiffThreads     int      `toml:"diff-threads" json:"diff-threads"`
	WatermarkColumn string   `toml:"watermark-column" json:"watermark-column"`
	EnableDrillDown bool     `toml:"enable-drill-down" json:"enable-drill-down"`
	DrillDownLimit  int      `toml:"drill-down-limit" json:"drill-down-limit"`
	RowSampleLimit  int      `toml:"row-sample-limit" json:"row-sample-limit"`
	FixSqlDir       string   `toml:"fix-sql-dir" json:"fix-sql-dir"`
	IncludeTable    []string `toml:"include-table" json:"include-table"`
	ExcludeTable    []string `toml:"exclude-table" json:"exclude-table"`
}

type MetaConfig struct {
	Enable     bool   `toml:"enable" json:"enable"`
	Username   string `toml:"username" json:"username"`
	Password   string `toml:"password" json:"-"`
	Host       string `toml:"host" json:"host"`
	Port       int    `toml:"port" json:"port"`
	MetaSchema string `toml:"meta-schema" json:"meta-schema"`
}

type LogConfig struct {
	LogLevel   string `toml:"log-level" json:"log-level"`
	LogFile    string `toml:"log-file" json:"log-file"`
	MaxSize    int    `toml:"max-size" json:"max-size"`
	MaxDays    int    `toml:"max-days" json:"max-days"`
	MaxBackups int    `toml:"max-backups" json:"max-backups"`
}

// 读取配置文件
func ReadConfigFile(file string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.configFromFile(file); err != nil {
		return cfg, err
	}
	if err := cfg.AdjustConfig(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// 加载配置文件并解析
func (c *Config) configFromFile(file string) error {
	if _, err := toml.DecodeFile(file, c); err != nil {
		return fmt.Errorf("failed decode toml config file %s: %v", file, err)
	}
	return nil
}

// 配置文件默认值以及合法性校验
func (c *Config) AdjustConfig() error {
	if c.CompareConfig.CompareMode == "" {
		c.CompareConfig.CompareMode = common.CompareModeQuick
	}
	c.CompareConfig.CompareMode = common.StringUPPER(c.CompareConfig.CompareMode)
	if !common.IsContainString([]string{
		common.CompareModeQuick, common.CompareModeStandard, common.CompareModeDeep,
	}, c.CompareConfig.CompareMode) {
		return fmt.Errorf("compare config compare-mode [%s] isn't support, only support [%s %s %s]",
			c.CompareConfig.CompareMode, common.CompareModeQuick, common.CompareModeStandard, common.CompareModeDeep)
	}

	if c.CompareConfig.ChunkSize == 0 {
		c.CompareConfig.ChunkSize = common.DefaultChunkSize
	}
	if c.CompareConfig.ChunkSize < 0 {
		return fmt.Errorf("compare config chunk-size [%d] need be positive integer", c.CompareConfig.ChunkSize)
	}
	if c.CompareConfig.DiffThreads <= 0 {
		c.CompareConfig.DiffThreads = common.DefaultDiffThreads
	}
	if c.CompareConfig.DrillDownLimit <= 0 {
		c.CompareConfig.DrillDownLimit = common.DefaultDrillDownLimit
	}
	if c.CompareConfig.RowSampleLimit <= 0 {
		c.CompareConfig.RowSampleLimit = common.DefaultRowSampleLimit
	}
	return nil
}

func (c *Config) String() string {
	cfg, err := json.Marshal(c)
	if err != nil {
		return "<nil>"
	}
	return string(cfg)
}
