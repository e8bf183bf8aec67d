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
	"sort"
	"strings"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/errors"
	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
)

// 库表存在性集合，一次列举供逐表快照复用
func SchemaTableSet(engine MetaReader, schemaName string) (*strset.Set, error) {
	schemaTables, err := engine.GetMySQLSchemaTables(schemaName)
	if err != nil {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
	}
	existTables := strset.New()
	for _, t := range schemaTables {
		existTables.Add(strings.ToUpper(t))
	}
	return existTables, nil
}

// 单表快照，只取表名与行数，列/索引按需显式加载
// 元数据失败只影响本表，调用方按表记录不中断运行
func SnapshotTable(engine MetaReader, schemaName string, existTables *strset.Set, tableName string) (TableInfo, error) {
	if !existTables.Has(strings.ToUpper(tableName)) {
		return TableInfo{}, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA,
			fmt.Errorf("schema [%s] table [%s] not exists", schemaName, tableName))
	}
	rowCounts, err := engine.GetMySQLTableActualRows(schemaName, tableName)
	if err != nil {
		return TableInfo{}, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
	}
	return TableInfo{
		SchemaName: schemaName,
		TableName:  tableName,
		RowCounts:  rowCounts,
	}, nil
}

// 显式加载列与主键信息，返回副本不修改入参
func LoadColumns(engine MetaReader, info TableInfo) (TableInfo, error) {
	res, err := engine.GetMySQLTableColumn(info.SchemaName, info.TableName)
	if err != nil {
		return info, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
	}

	loaded := info
	loaded.Columns = make([]ColumnInfo, 0, len(res))
	for _, r := range res {
		ordinal, err := common.StrconvIntBitSize(r["ORDINAL_POSITION"], 32)
		if err != nil {
			return info, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA,
				fmt.Errorf("table [%s.%s] column ordinal parse failed: %v", info.SchemaName, info.TableName, err))
		}
		loaded.Columns = append(loaded.Columns, ColumnInfo{
			ColumnName:      r["COLUMN_NAME"],
			DataType:        r["DATA_TYPE"],
			ColumnType:      r["COLUMN_TYPE"],
			Nullable:        r["IS_NULLABLE"],
			DataDefault:     r["COLUMN_DEFAULT"],
			OrdinalPosition: int(ordinal),
		})
	}

	pkColumns, err := engine.GetMySQLTablePrimaryKey(info.SchemaName, info.TableName)
	if err != nil {
		return info, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
	}
	loaded.PrimaryKey = pkColumns
	return loaded, nil
}

// 显式加载二级索引信息，返回副本不修改入参
func LoadIndexes(engine MetaReader, info TableInfo) (TableInfo, error) {
	res, err := engine.GetMySQLTableIndex(info.SchemaName, info.TableName)
	if err != nil {
		return info, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
	}

	loaded := info
	loaded.Indexes = make([]IndexInfo, 0, len(res))
	for _, r := range res {
		loaded.Indexes = append(loaded.Indexes, IndexInfo{
			IndexName:  r["INDEX_NAME"],
			Uniqueness: r["NON_UNIQUE"] == "0",
			ColumnList: r["COLUMN_LIST"],
		})
	}
	return loaded, nil
}

// 结构漂移对比，输出有序：仅源端 -> 仅目标端 -> 类型变化 -> 空值约束变化
func CompareTableStruct(source, target TableInfo) []ColumnDiff {
	sourceCols := make(map[string]ColumnInfo)
	targetCols := make(map[string]ColumnInfo)
	sourceSet := set.NewStringSet()
	targetSet := set.NewStringSet()

	for _, c := range source.Columns {
		sourceCols[strings.ToUpper(c.ColumnName)] = c
		sourceSet.Add(strings.ToUpper(c.ColumnName))
	}
	for _, c := range target.Columns {
		targetCols[strings.ToUpper(c.ColumnName)] = c
		targetSet.Add(strings.ToUpper(c.ColumnName))
	}

	var diffs []ColumnDiff

	onlySource := strset.Difference(sourceSet, targetSet).List()
	sort.Strings(onlySource)
	for _, c := range onlySource {
		diffs = append(diffs, ColumnDiff{
			Category:       common.SchemaDiffOnlySource,
			ColumnName:     sourceCols[c].ColumnName,
			SourceDetail:   sourceCols[c].ColumnType,
			SourceNullable: sourceCols[c].Nullable,
		})
	}

	onlyTarget := strset.Difference(targetSet, sourceSet).List()
	sort.Strings(onlyTarget)
	for _, c := range onlyTarget {
		diffs = append(diffs, ColumnDiff{
			Category:       common.SchemaDiffOnlyTarget,
			ColumnName:     targetCols[c].ColumnName,
			TargetDetail:   targetCols[c].ColumnType,
			TargetNullable: targetCols[c].Nullable,
		})
	}

	both := strset.Intersection(sourceSet, targetSet).List()
	sort.Strings(both)
	for _, c := range both {
		if !strings.EqualFold(sourceCols[c].ColumnType, targetCols[c].ColumnType) {
			diffs = append(diffs, ColumnDiff{
				Category:       common.SchemaDiffTypeChanged,
				ColumnName:     sourceCols[c].ColumnName,
				SourceDetail:   sourceCols[c].ColumnType,
				TargetDetail:   targetCols[c].ColumnType,
				SourceNullable: sourceCols[c].Nullable,
				TargetNullable: targetCols[c].Nullable,
			})
		}
	}
	for _, c := range both {
		if !strings.EqualFold(sourceCols[c].Nullable, targetCols[c].Nullable) {
			diffs = append(diffs, ColumnDiff{
				Category:       common.SchemaDiffNullableChanged,
				ColumnName:     sourceCols[c].ColumnName,
				SourceDetail:   sourceCols[c].ColumnType,
				TargetDetail:   targetCols[c].ColumnType,
				SourceNullable: sourceCols[c].Nullable,
				TargetNullable: targetCols[c].Nullable,
			})
		}
	}
	return diffs
}

// 索引对比，同名索引列序或唯一性不同视为类型变化
func CompareTableIndex(source, target TableInfo) []IndexDiff {
	sourceIdx := make(map[string]IndexInfo)
	targetIdx := make(map[string]IndexInfo)
	sourceSet := set.NewStringSet()
	targetSet := set.NewStringSet()

	for _, i := range source.Indexes {
		sourceIdx[strings.ToUpper(i.IndexName)] = i
		sourceSet.Add(strings.ToUpper(i.IndexName))
	}
	for _, i := range target.Indexes {
		targetIdx[strings.ToUpper(i.IndexName)] = i
		targetSet.Add(strings.ToUpper(i.IndexName))
	}

	var diffs []IndexDiff

	onlySource := strset.Difference(sourceSet, targetSet).List()
	sort.Strings(onlySource)
	for _, i := range onlySource {
		diffs = append(diffs, IndexDiff{
			Category:     common.SchemaDiffOnlySource,
			IndexName:    sourceIdx[i].IndexName,
			SourceDetail: indexDetail(sourceIdx[i]),
		})
	}

	onlyTarget := strset.Difference(targetSet, sourceSet).List()
	sort.Strings(onlyTarget)
	for _, i := range onlyTarget {
		diffs = append(diffs, IndexDiff{
			Category:     common.SchemaDiffOnlyTarget,
			IndexName:    targetIdx[i].IndexName,
			TargetDetail: indexDetail(targetIdx[i]),
		})
	}

	both := strset.Intersection(sourceSet, targetSet).List()
	sort.Strings(both)
	for _, i := range both {
		if !strings.EqualFold(sourceIdx[i].ColumnList, targetIdx[i].ColumnList) ||
			sourceIdx[i].Uniqueness != targetIdx[i].Uniqueness {
			diffs = append(diffs, IndexDiff{
				Category:     common.SchemaDiffTypeChanged,
				IndexName:    sourceIdx[i].IndexName,
				SourceDetail: indexDetail(sourceIdx[i]),
				TargetDetail: indexDetail(targetIdx[i]),
			})
		}
	}
	return diffs
}

func indexDetail(i IndexInfo) string {
	if i.Uniqueness {
		return common.StringsBuilder("UNIQUE(", i.ColumnList, ")")
	}
	return common.StringsBuilder("NONUNIQUE(", i.ColumnList, ")")
}
