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
	"hash/crc32"
	"sort"
	"strconv"
	"strings"

	"github.com/marchwind/comparedb/common"
	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
	"github.com/shopspring/decimal"
)

// 内存假引擎，行数据按排序键列类型语义排序，分批查询按 LIMIT 尾部解析切片返回
type fakeTable struct {
	columns    []ColumnInfo
	primaryKey []string
	indexes    []IndexInfo
	rows       [][]string
	cursor     int
	sorted     bool
}

type fakeEngine struct {
	schemaName string
	tables     map[string]*fakeTable
}

func newFakeEngine(schemaName string) *fakeEngine {
	return &fakeEngine{
		schemaName: schemaName,
		tables:     make(map[string]*fakeTable),
	}
}

// 列类型按值推断，全数字列视为数字类型，空表列按字符处理
func inferFakeDataType(rows [][]string, idx int) (string, string) {
	if len(rows) == 0 {
		return "varchar", "varchar(255)"
	}
	for _, r := range rows {
		if r[idx] == common.NullSentinel {
			continue
		}
		if _, err := decimal.NewFromString(r[idx]); err != nil {
			return "varchar", "varchar(255)"
		}
	}
	return "bigint", "bigint(20)"
}

func (e *fakeEngine) addTable(tableName string, columns []string, primaryKey []string, rows [][]string) *fakeTable {
	var cols []ColumnInfo
	for i, c := range columns {
		dataType, columnType := inferFakeDataType(rows, i)
		cols = append(cols, ColumnInfo{
			ColumnName:      c,
			DataType:        dataType,
			ColumnType:      columnType,
			Nullable:        "YES",
			OrdinalPosition: i + 1,
		})
	}
	ft := &fakeTable{
		columns:    cols,
		primaryKey: primaryKey,
		rows:       rows,
	}
	e.tables[strings.ToUpper(tableName)] = ft
	return ft
}

func (e *fakeEngine) table(tableName string) *fakeTable {
	return e.tables[strings.ToUpper(tableName)]
}

func (ft *fakeTable) setColumnType(columnName, dataType, columnType string) {
	for i := range ft.columns {
		if strings.EqualFold(ft.columns[i].ColumnName, columnName) {
			ft.columns[i].DataType = dataType
			ft.columns[i].ColumnType = columnType
		}
	}
	ft.sorted = false
}

// 排序键类型语义排序，数字列数值序、字符列字节序，同真实 ORDER BY 行为
func (ft *fakeTable) sortRows() {
	if ft.sorted || len(ft.primaryKey) == 0 {
		return
	}
	var keyIdx []int
	for _, k := range ft.primaryKey {
		for i, c := range ft.columns {
			if strings.EqualFold(c.ColumnName, k) {
				keyIdx = append(keyIdx, i)
				break
			}
		}
	}
	sort.SliceStable(ft.rows, func(i, j int) bool {
		for _, idx := range keyIdx {
			numeric := common.IsNumericDataType(ft.columns[idx].DataType)
			if r := compareRowValue(ft.rows[i][idx], ft.rows[j][idx], numeric); r != 0 {
				return r < 0
			}
		}
		return false
	})
	ft.sorted = true
}

func (e *fakeEngine) GetMySQLSchemaTables(schemaName string) ([]string, error) {
	var tables []string
	for t := range e.tables {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables, nil
}

func (e *fakeEngine) GetMySQLTableColumn(schemaName, tableName string) ([]map[string]string, error) {
	ft := e.table(tableName)
	if ft == nil {
		return nil, fmt.Errorf("fake table [%s] not found", tableName)
	}
	var res []map[string]string
	for _, c := range ft.columns {
		res = append(res, map[string]string{
			"COLUMN_NAME":      c.ColumnName,
			"DATA_TYPE":        c.DataType,
			"COLUMN_TYPE":      c.ColumnType,
			"IS_NULLABLE":      c.Nullable,
			"COLUMN_DEFAULT":   "NULLSTRING",
			"ORDINAL_POSITION": strconv.Itoa(c.OrdinalPosition),
		})
	}
	return res, nil
}

func (e *fakeEngine) GetMySQLTablePrimaryKey(schemaName, tableName string) ([]string, error) {
	ft := e.table(tableName)
	if ft == nil {
		return nil, fmt.Errorf("fake table [%s] not found", tableName)
	}
	return ft.primaryKey, nil
}

func (e *fakeEngine) GetMySQLTableIndex(schemaName, tableName string) ([]map[string]string, error) {
	ft := e.table(tableName)
	if ft == nil {
		return nil, fmt.Errorf("fake table [%s] not found", tableName)
	}
	var res []map[string]string
	for _, i := range ft.indexes {
		nonUnique := "1"
		if i.Uniqueness {
			nonUnique = "0"
		}
		res = append(res, map[string]string{
			"INDEX_NAME":  i.IndexName,
			"NON_UNIQUE":  nonUnique,
			"COLUMN_LIST": i.ColumnList,
		})
	}
	return res, nil
}

func (e *fakeEngine) GetMySQLTableActualRows(schemaName, tableName string) (int64, error) {
	ft := e.table(tableName)
	if ft == nil {
		return 0, fmt.Errorf("fake table [%s] not found", tableName)
	}
	return int64(len(ft.rows)), nil
}

// 顺序无关行指纹，空表恒 0
func (e *fakeEngine) GetMySQLTableCheckSum(schemaName, tableName string, columns []string) (uint64, error) {
	ft := e.table(tableName)
	if ft == nil {
		return 0, fmt.Errorf("fake table [%s] not found", tableName)
	}
	var checkSum uint32
	for _, r := range ft.rows {
		checkSum ^= crc32.ChecksumIEEE([]byte(strings.Join(r, common.ChecksumSeparator)))
	}
	return uint64(checkSum), nil
}

func (e *fakeEngine) GetMySQLTableMaxWatermark(schemaName, tableName, watermarkColumn string) (string, error) {
	ft := e.table(tableName)
	if ft == nil {
		return "", fmt.Errorf("fake table [%s] not found", tableName)
	}
	idx := -1
	for i, c := range ft.columns {
		if strings.EqualFold(c.ColumnName, watermarkColumn) {
			idx = i
		}
	}
	if idx < 0 {
		return "", fmt.Errorf("fake table [%s] watermark column [%s] not found", tableName, watermarkColumn)
	}
	numeric := common.IsNumericDataType(ft.columns[idx].DataType)
	watermark := common.NullSentinel
	for _, r := range ft.rows {
		if watermark == common.NullSentinel || compareRowValue(r[idx], watermark, numeric) > 0 {
			watermark = r[idx]
		}
	}
	return watermark, nil
}

func (e *fakeEngine) GetMySQLTableChunkRows(querySQL string) ([]string, [][]string, error) {
	tableName, limit, err := parseFakeChunkSQL(querySQL)
	if err != nil {
		return nil, nil, err
	}
	ft := e.table(tableName)
	if ft == nil {
		return nil, nil, fmt.Errorf("fake table [%s] not found", tableName)
	}
	ft.sortRows()

	var cols []string
	for _, c := range ft.columns {
		cols = append(cols, c.ColumnName)
	}

	start := ft.cursor
	if start >= len(ft.rows) {
		ft.cursor = 0
		return cols, nil, nil
	}
	end := start + limit
	if end > len(ft.rows) {
		end = len(ft.rows)
	}
	// 尾批后复位游标，同一假引擎可多轮运行
	if end == len(ft.rows) && end-start < limit {
		ft.cursor = 0
	} else {
		ft.cursor = end
	}
	return cols, ft.rows[start:end], nil
}

func (e *fakeEngine) GetMySQLDataRowStrings(querySQL string) ([]string, *strset.Set, error) {
	tableName := parseFakeTableName(querySQL)
	ft := e.table(tableName)
	if ft == nil {
		return nil, nil, fmt.Errorf("fake table [%s] not found", tableName)
	}
	stringSet := set.NewStringSet()
	var cols []string
	for _, c := range ft.columns {
		cols = append(cols, c.ColumnName)
	}
	for _, r := range ft.rows {
		stringSet.Add(strings.Join(r, common.ChecksumSeparator))
	}
	return cols, stringSet, nil
}

func parseFakeChunkSQL(querySQL string) (string, int, error) {
	idx := strings.LastIndex(querySQL, "LIMIT ")
	if idx < 0 {
		return "", 0, fmt.Errorf("fake chunk sql missing limit: %s", querySQL)
	}
	limit, err := strconv.Atoi(strings.TrimSpace(querySQL[idx+len("LIMIT "):]))
	if err != nil {
		return "", 0, err
	}
	return parseFakeTableName(querySQL), limit, nil
}

func parseFakeTableName(querySQL string) string {
	idx := strings.Index(querySQL, " FROM ")
	rest := querySQL[idx+len(" FROM "):]
	if end := strings.IndexAny(rest, " \n"); end >= 0 {
		rest = rest[:end]
	}
	parts := strings.Split(strings.ReplaceAll(rest, "`", ""), ".")
	return parts[len(parts)-1]
}
