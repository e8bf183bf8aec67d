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
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/marchwind/comparedb/common"
)

// 运行结果摘要表格，嵌入修复脚本注释块以及日志输出
func ReportSummary(result *Result) string {
	sw := table.NewWriter()
	sw.SetStyle(table.StyleLight)
	sw.AppendHeader(table.Row{"TABLE", "MODE", "STATUS", "MATCH", "SOURCE ROWS", "TARGET ROWS", "MATCH PERCENT", "COST"})
	for _, tr := range result.TableResults {
		sw.AppendRows([]table.Row{
			{tr.TableName, tr.CompareMode, tr.TaskStatus, isMatchFlag(tr), tr.SourceRowCount, tr.TargetRowCount, tr.MatchPercent, tr.Cost},
		})
	}
	return fmt.Sprintf("/*\n\tcompare run [%s] schema [%s] -> [%s] status [%s]\n*/\n",
		result.RunID, result.SchemaNameS, result.SchemaNameT, result.TaskStatus) + sw.Render() + "\n"
}

// 单表结构漂移表格
func ReportTableStruct(tableResult *TableResult) string {
	if len(tableResult.ColumnDiffs) == 0 && len(tableResult.IndexDiffs) == 0 {
		return ""
	}
	sw := table.NewWriter()
	sw.SetStyle(table.StyleLight)
	sw.AppendHeader(table.Row{"OBJECT", "NAME", "CATEGORY", "SOURCE", "TARGET"})
	for _, d := range tableResult.ColumnDiffs {
		sw.AppendRows([]table.Row{
			{"COLUMN", d.ColumnName, d.Category, columnDiffDetail(d.SourceDetail, d.SourceNullable), columnDiffDetail(d.TargetDetail, d.TargetNullable)},
		})
	}
	for _, d := range tableResult.IndexDiffs {
		sw.AppendRows([]table.Row{
			{"INDEX", d.IndexName, d.Category, d.SourceDetail, d.TargetDetail},
		})
	}
	return fmt.Sprintf("/*\n\ttable [%s] schema drift\n*/\n", tableResult.TableName) + sw.Render() + "\n"
}

// 单表数据差异表格，下钻样本带截断标记
func ReportTableData(tableResult *TableResult) string {
	if tableResult.IsMatch {
		return ""
	}
	sw := table.NewWriter()
	sw.SetStyle(table.StyleLight)
	sw.AppendHeader(table.Row{"TABLE", "SOURCE CHECKSUM", "TARGET CHECKSUM", "DIFF ROWS", "TRUNCATED"})

	var (
		diffRows  int64
		truncated bool
	)
	switch {
	case tableResult.DrillDown != nil:
		diffRows = int64(len(tableResult.DrillDown.OnlySource) + len(tableResult.DrillDown.OnlyTarget))
		truncated = tableResult.DrillDown.IsTruncated
	case tableResult.RowDiffStat != nil:
		diffRows = tableResult.RowDiffStat.Total()
		truncated = tableResult.RowDiffStat.Truncated
	}
	sw.AppendRows([]table.Row{
		{tableResult.TableName, tableResult.SourceCheckSum, tableResult.TargetCheckSum, diffRows, truncated},
	})
	return fmt.Sprintf("/*\n\ttable [%s] source and target data aren't consistent\n*/\n", tableResult.TableName) + sw.Render() + "\n"
}

func columnDiffDetail(columnType, nullable string) string {
	if columnType == "" && nullable == "" {
		return ""
	}
	return common.StringsBuilder(columnType, " NULLABLE(", nullable, ")")
}

func isMatchFlag(tableResult TableResult) string {
	if tableResult.TaskStatus != common.TaskStatusCompleted {
		return "-"
	}
	if tableResult.IsMatch {
		return "Y"
	}
	return "N"
}
