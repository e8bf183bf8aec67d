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
package compare

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// 行差异类别，以目标端相对源端的状态命名
const (
	RowDiffAdded    = "ADDED"    // 仅目标端存在，目标端多出
	RowDiffRemoved  = "REMOVED"  // 仅源端存在，目标端缺失
	RowDiffModified = "MODIFIED" // 两端同键不同值
)

type TableInfo struct {
	SchemaName string       `json:"schema_name"`
	TableName  string       `json:"table_name"`
	Columns    []ColumnInfo `json:"columns"`
	PrimaryKey []string     `json:"primary_key"`
	Indexes    []IndexInfo  `json:"indexes"`
	RowCounts  int64        `json:"row_counts"`
}

type ColumnInfo struct {
	ColumnName      string `json:"column_name"`
	DataType        string `json:"data_type"`
	ColumnType      string `json:"column_type"`
	Nullable        string `json:"nullable"`
	DataDefault     string `json:"data_default"`
	OrdinalPosition int    `json:"ordinal_position"`
}

type IndexInfo struct {
	IndexName  string `json:"index_name"`
	Uniqueness bool   `json:"uniqueness"`
	ColumnList string `json:"column_list"`
}

// 结构差异，Category 取 common.SchemaDiff* 常量
// Detail 为列类型定义，Nullable 单独记录供修复脚本生成
type ColumnDiff struct {
	Category       string `json:"category"`
	ColumnName     string `json:"column_name"`
	SourceDetail   string `json:"source_detail"`
	TargetDetail   string `json:"target_detail"`
	SourceNullable string `json:"source_nullable,omitempty"`
	TargetNullable string `json:"target_nullable,omitempty"`
}

type IndexDiff struct {
	Category     string `json:"category"`
	IndexName    string `json:"index_name"`
	SourceDetail string `json:"source_detail"`
	TargetDetail string `json:"target_detail"`
}

// 行差异，键值与行值按对比列序排列
type RowDiff struct {
	DiffType        string   `json:"diff_type"`
	KeyValues       []string `json:"key_values"`
	SourceRow       []string `json:"source_row,omitempty"`
	TargetRow       []string `json:"target_row,omitempty"`
	ModifiedColumns []string `json:"modified_columns,omitempty"`
}

type WatermarkResult struct {
	WatermarkColumn string `json:"watermark_column"`
	SourceMax       string `json:"source_max"`
	TargetMax       string `json:"target_max"`
	InSync          bool   `json:"in_sync"`
}

// 行差异计数，样本截断后计数仍为全量
type RowDiffStat struct {
	Added     int64 `json:"added"`
	Removed   int64 `json:"removed"`
	Modified  int64 `json:"modified"`
	Truncated bool  `json:"truncated"`
}

func (s *RowDiffStat) Total() int64 {
	return s.Added + s.Removed + s.Modified
}

type DrillDownResult struct {
	OnlySource  []string `json:"only_source"`
	OnlyTarget  []string `json:"only_target"`
	Limit       int      `json:"limit"`
	IsTruncated bool     `json:"is_truncated"`
}

// 单表对比结果，一次生成后不再修改
type TableResult struct {
	TableName          string           `json:"table_name"`
	CompareMode        string           `json:"compare_mode"`
	TaskStatus         string           `json:"task_status"`
	IsMatch            bool             `json:"is_match"`
	SourceRowCount     int64            `json:"source_row_count"`
	TargetRowCount     int64            `json:"target_row_count"`
	SourceCheckSum     uint64           `json:"source_checksum"`
	TargetCheckSum     uint64           `json:"target_checksum"`
	MatchPercent       string           `json:"match_percent"`
	CompareColumns     []string         `json:"compare_columns,omitempty"`
	CompareColumnTypes []string         `json:"compare_column_types,omitempty"`
	OrderKeys          []string         `json:"order_keys,omitempty"`
	Watermark          *WatermarkResult `json:"watermark,omitempty"`
	ColumnDiffs        []ColumnDiff     `json:"column_diffs,omitempty"`
	IndexDiffs         []IndexDiff      `json:"index_diffs,omitempty"`
	ConstraintStatus   string           `json:"constraint_status,omitempty"`
	RowDiffs           []RowDiff        `json:"row_diffs,omitempty"`
	RowDiffStat        *RowDiffStat     `json:"row_diff_stat,omitempty"`
	DrillDown          *DrillDownResult `json:"drill_down,omitempty"`
	ErrorMsg           string           `json:"error_msg,omitempty"`
	Cost               string           `json:"cost"`
}

// 一次运行的整体结果
type Result struct {
	RunID        string        `json:"run_id"`
	SchemaNameS  string        `json:"schema_name_s"`
	SchemaNameT  string        `json:"schema_name_t"`
	CompareMode  string        `json:"compare_mode"`
	TaskStatus   string        `json:"task_status"`
	TableResults []TableResult `json:"table_results"`
	Cost         string        `json:"cost"`
}

func (t *TableResult) String() string {
	jsonStr, _ := json.Marshal(t)
	return string(jsonStr)
}

func (r *Result) String() string {
	jsonStr, _ := json.Marshal(r)
	return string(jsonStr)
}

// 匹配行占比，两端行数和差异行数折算，空表视为全匹配
func matchPercent(sourceRows, targetRows, diffRows int64) string {
	maxRows := sourceRows
	if targetRows > maxRows {
		maxRows = targetRows
	}
	if maxRows == 0 {
		return "100.00%"
	}
	matched := decimal.NewFromInt(maxRows - diffRows)
	if matched.IsNegative() {
		matched = decimal.Zero
	}
	return matched.
		Div(decimal.NewFromInt(maxRows)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2) + "%"
}
