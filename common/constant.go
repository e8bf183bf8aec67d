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
package common

import (
	"strings"
	"time"
)

// 程序运行模式
const (
	TaskModeCompare = "COMPARE"
	TaskModeSync    = "SYNC"
)

// 数据对比模式
// DEEP = STANDARD 行对比 + 索引/约束对比
const (
	CompareModeQuick    = "QUICK"
	CompareModeStandard = "STANDARD"
	CompareModeDeep     = "DEEP"
)

// 表任务/运行状态
const (
	TaskStatusPending      = "PENDING"
	TaskStatusRunning      = "RUNNING"
	TaskStatusCompleted    = "COMPLETED"
	TaskStatusFailed       = "FAILED"
	TaskStatusCancelled    = "CANCELLED"
	TaskStatusNotEvaluated = "NOT_EVALUATED"
)

// 错误域
const (
	TaskTypeConfig       = "CONFIG"
	TaskTypeDatabase     = "DATABASE"
	TaskTypeSelection    = "TABLE_SELECTION"
	TaskTypeMetadata     = "SCHEMA_METADATA"
	TaskTypeDataCompare  = "DATA_COMPARE"
	TaskTypeTimeout      = "QUERY_TIMEOUT"
	TaskTypeSyncGenerate = "SYNC_GENERATE"
)

// 结构对比差异类别
const (
	SchemaDiffOnlySource      = "ONLY_SOURCE"
	SchemaDiffOnlyTarget      = "ONLY_TARGET"
	SchemaDiffTypeChanged     = "TYPE_CHANGED"
	SchemaDiffNullableChanged = "NULLABLE_CHANGED"
)

const (
	// 数据对比分批大小以及采样上限
	DefaultChunkSize      = 10000
	DefaultDrillDownLimit = 1000
	DefaultRowSampleLimit = 10000

	// 单表内 chunk 预取并发上限
	DefaultDiffThreads = 2

	// 生成 INSERT/DELETE 语句单批行数
	DefaultSQLBatchRows = 500

	// NULL 值统一标识，同 database 层 Query 约定
	NullSentinel = "NULLABLE"

	// 行指纹字段拼接分隔符
	ChecksumSeparator = "<#>"

	// MySQL 连接池
	MySQLMaxIdleConn     = 512
	MySQLMaxConn         = 1024
	MySQLConnMaxLifeTime = 300 * time.Second
	MySQLConnMaxIdleTime = 200 * time.Second
)

// MySQL 数字类数据类型，决定行值按数值语义对比、SQL 字面量裸写
// 两端任一侧非数字类型按字符语义处理
func IsNumericDataType(dataType string) bool {
	switch strings.ToLower(dataType) {
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint",
		"decimal", "numeric", "float", "double", "real":
		return true
	}
	return false
}

// fact/link 表属于受限类别，一次运行只允许单独选择
// 命名约定来自数仓分层（dim_* 维表可自由组合，fact_*/link_*/lnk_* 事实、链接表独占）
func IsRestrictedTable(tableName string) bool {
	name := strings.ToLower(tableName)
	return strings.Contains(name, "fact") || strings.Contains(name, "link") || strings.Contains(name, "lnk")
}
