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
package sync

import (
	"fmt"
	"strings"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/errors"
	"github.com/marchwind/comparedb/module/compare"
)

// 单表修复脚本生成器，作用对象为目标端，同一结果输入字节级可重现
type Generator struct {
	schemaName string
	tableName  string
	batchRows  int
}

func NewTableSyncGenerator(schemaName, tableName string, batchRows int) *Generator {
	if batchRows <= 0 {
		batchRows = common.DefaultSQLBatchRows
	}
	return &Generator{
		schemaName: schemaName,
		tableName:  tableName,
		batchRows:  batchRows,
	}
}

func (g *Generator) tableRef() string {
	return common.StringsBuilder("`", g.schemaName, "`.`", g.tableName, "`")
}

// 结构修复语句，顺序固定：加列 -> 改列 -> 破坏性删列注释块
func (g *Generator) GenStructFixSQL(columnDiffs []compare.ColumnDiff) []string {
	var (
		addSQLs    []string
		modifySQLs []string
		dropSQLs   []string
	)
	modified := make(map[string]struct{})

	for _, d := range columnDiffs {
		switch d.Category {
		case common.SchemaDiffOnlySource:
			addSQLs = append(addSQLs, fmt.Sprintf("ALTER TABLE %s ADD COLUMN `%s` %s;",
				g.tableRef(), d.ColumnName, columnDefinition(d.SourceDetail, d.SourceNullable)))
		case common.SchemaDiffTypeChanged, common.SchemaDiffNullableChanged:
			// 类型与空值约束同时漂移的列只生成一条 MODIFY
			if _, ok := modified[strings.ToUpper(d.ColumnName)]; ok {
				continue
			}
			modified[strings.ToUpper(d.ColumnName)] = struct{}{}
			modifySQLs = append(modifySQLs, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN `%s` %s;",
				g.tableRef(), d.ColumnName, columnDefinition(d.SourceDetail, d.SourceNullable)))
		case common.SchemaDiffOnlyTarget:
			dropSQLs = append(dropSQLs, fmt.Sprintf("-- ALTER TABLE %s DROP COLUMN `%s`;",
				g.tableRef(), d.ColumnName))
		}
	}

	sqls := append(addSQLs, modifySQLs...)
	if len(dropSQLs) > 0 {
		sqls = append(sqls, "-- [DESTRUCTIVE] target-only columns, review before applying")
		sqls = append(sqls, dropSQLs...)
	}
	return sqls
}

// 数据修复语句，顺序固定：DELETE -> INSERT -> UPDATE，按对比分批行数切分
// ADDED 为目标端多出按键删除，REMOVED 为目标端缺失回插源端行
func (g *Generator) GenDataFixSQL(columns, columnTypes, keyColumns []string, rowDiffs []compare.RowDiff) ([]string, error) {
	if len(columnTypes) != len(columns) {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_GENERATE,
			fmt.Errorf("table [%s] compare column type list mismatched with column list", g.tableName))
	}
	// 键列必须落在对比列内，缺失直接拒绝生成
	keyIdx, err := keyColumnIndexes(columns, keyColumns)
	if err != nil {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_GENERATE, err)
	}

	numeric := numericFlags(columnTypes)
	keyNumeric := make([]bool, 0, len(keyIdx))
	for _, idx := range keyIdx {
		keyNumeric = append(keyNumeric, numeric[idx])
	}

	var (
		deleteKeys [][]string
		insertRows [][]string
		updateSQLs []string
	)
	for _, d := range rowDiffs {
		switch d.DiffType {
		case compare.RowDiffAdded:
			deleteKeys = append(deleteKeys, d.KeyValues)
		case compare.RowDiffRemoved:
			insertRows = append(insertRows, d.SourceRow)
		case compare.RowDiffModified:
			updateSQL, err := g.genUpdateSQL(columns, numeric, keyColumns, keyNumeric, d)
			if err != nil {
				return nil, err
			}
			updateSQLs = append(updateSQLs, updateSQL)
		default:
			return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_GENERATE,
				fmt.Errorf("table [%s] unknown row diff type [%s]", g.tableName, d.DiffType))
		}
	}

	var sqls []string
	sqls = append(sqls, g.genDeleteSQL(keyColumns, keyNumeric, deleteKeys)...)
	sqls = append(sqls, g.genInsertSQL(columns, numeric, insertRows)...)
	sqls = append(sqls, updateSQLs...)
	return sqls, nil
}

func (g *Generator) genDeleteSQL(keyColumns []string, keyNumeric []bool, deleteKeys [][]string) []string {
	var sqls []string
	for start := 0; start < len(deleteKeys); start += g.batchRows {
		end := start + g.batchRows
		if end > len(deleteKeys) {
			end = len(deleteKeys)
		}
		var keyTuples []string
		for _, k := range deleteKeys[start:end] {
			keyTuples = append(keyTuples, common.StringsBuilder("(", strings.Join(formatLiterals(k, keyNumeric), ","), ")"))
		}
		sqls = append(sqls, fmt.Sprintf("DELETE FROM %s WHERE (%s) IN (%s);",
			g.tableRef(),
			common.StringJOIN(keyColumns, "`", "`", ","),
			strings.Join(keyTuples, ",")))
	}
	return sqls
}

func (g *Generator) genInsertSQL(columns []string, numeric []bool, insertRows [][]string) []string {
	var sqls []string
	for start := 0; start < len(insertRows); start += g.batchRows {
		end := start + g.batchRows
		if end > len(insertRows) {
			end = len(insertRows)
		}
		var valueTuples []string
		for _, r := range insertRows[start:end] {
			valueTuples = append(valueTuples, common.StringsBuilder("(", strings.Join(formatLiterals(r, numeric), ","), ")"))
		}
		sqls = append(sqls, fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;",
			g.tableRef(),
			common.StringJOIN(columns, "`", "`", ","),
			strings.Join(valueTuples, ",")))
	}
	return sqls
}

func (g *Generator) genUpdateSQL(columns []string, numeric []bool, keyColumns []string, keyNumeric []bool, d compare.RowDiff) (string, error) {
	var setParts []string
	for _, mc := range d.ModifiedColumns {
		idx := -1
		for i, c := range columns {
			if strings.EqualFold(c, mc) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_GENERATE,
				fmt.Errorf("table [%s] modified column [%s] not found in compare column list", g.tableName, mc))
		}
		setParts = append(setParts, common.StringsBuilder("`", mc, "` = ", FormatLiteral(d.SourceRow[idx], numeric[idx])))
	}
	if len(setParts) == 0 {
		return "", errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_GENERATE,
			fmt.Errorf("table [%s] modified row has no modified columns", g.tableName))
	}

	var whereParts []string
	for i, k := range keyColumns {
		whereParts = append(whereParts, common.StringsBuilder("`", k, "` = ", FormatLiteral(d.KeyValues[i], keyNumeric[i])))
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s;",
		g.tableRef(),
		strings.Join(setParts, ", "),
		strings.Join(whereParts, " AND ")), nil
}

func columnDefinition(columnType, nullable string) string {
	if strings.EqualFold(nullable, "NO") {
		return common.StringsBuilder(columnType, " NOT NULL")
	}
	return columnType
}

func keyColumnIndexes(columns, keyColumns []string) ([]int, error) {
	var keyIdx []int
	for _, k := range keyColumns {
		found := -1
		for i, c := range columns {
			if strings.EqualFold(c, k) {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("order key column [%s] not found in compare column list", k)
		}
		keyIdx = append(keyIdx, found)
	}
	return keyIdx, nil
}
