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
package mysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/marchwind/comparedb/common"
	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
	"github.com/thinkeridea/go-extend/exstrings"
)

// 表级聚合指纹，BIT_XOR 顺序无关，空表恒为 0
func (m *MySQL) GetMySQLTableCheckSum(schemaName, tableName string, columns []string) (uint64, error) {
	var concatParts []string
	for _, c := range columns {
		concatParts = append(concatParts, common.StringsBuilder("COALESCE(CONVERT(`", c, "`,CHAR),'NULL')"))
	}

	querySQL := fmt.Sprintf(`SELECT IFNULL(BIT_XOR(CRC32(CONCAT_WS('%s',%s))),0) AS CHECKSUM FROM %s`,
		common.ChecksumSeparator,
		strings.Join(concatParts, ","),
		common.StringsBuilder("`", schemaName, "`.`", tableName, "`"))

	_, res, err := Query(m.Ctx, m.MySQLDB, querySQL)
	if err != nil {
		return 0, err
	}

	checkSum, err := strconv.ParseUint(res[0]["CHECKSUM"], 10, 64)
	if err != nil {
		return checkSum, fmt.Errorf("error on FUNC GetMySQLTableCheckSum failed: %v", err)
	}
	return checkSum, nil
}

// 水位列最大值，空表返回 NULLABLE 标识
func (m *MySQL) GetMySQLTableMaxWatermark(schemaName, tableName, watermarkColumn string) (string, error) {
	querySQL := fmt.Sprintf("SELECT MAX(%s) AS WATERMARK FROM %s",
		common.StringsBuilder("`", watermarkColumn, "`"),
		common.StringsBuilder("`", schemaName, "`.`", tableName, "`"))

	_, res, err := Query(m.Ctx, m.MySQLDB, querySQL)
	if err != nil {
		return "", err
	}
	return res[0]["WATERMARK"], nil
}

// 按序分批查询，返回排序键顺序的行值，NULL 统一 NULLABLE 标识
// querySQL 由调用方携带 ORDER BY 排序键 + 游标条件 + LIMIT
func (m *MySQL) GetMySQLTableChunkRows(querySQL string) ([]string, [][]string, error) {
	var (
		cols    []string
		resRows [][]string
	)

	rows, err := m.MySQLDB.QueryContext(m.Ctx, querySQL)
	if err != nil {
		return cols, resRows, fmt.Errorf("chunk sql [%v] query failed: [%v]", querySQL, err.Error())
	}
	defer rows.Close()

	cols, err = rows.Columns()
	if err != nil {
		return cols, resRows, fmt.Errorf("chunk sql [%v] query rows.Columns failed: [%v]", querySQL, err.Error())
	}

	rawResult := make([][]byte, len(cols))
	scans := make([]interface{}, len(cols))
	for i := range rawResult {
		scans[i] = &rawResult[i]
	}

	for rows.Next() {
		err = rows.Scan(scans...)
		if err != nil {
			return cols, resRows, fmt.Errorf("chunk sql [%v] query rows.Scan failed: [%v]", querySQL, err.Error())
		}

		row := make([]string, len(cols))
		for i, raw := range rawResult {
			if raw == nil {
				row[i] = common.NullSentinel
			} else {
				row[i] = string(raw)
			}
		}
		resRows = append(resRows, row)
	}

	if err = rows.Err(); err != nil {
		return cols, resRows, fmt.Errorf("chunk sql [%v] query rows.Next failed: [%v]", querySQL, err.Error())
	}
	return cols, resRows, nil
}

// 全行值规范化拼接入集合，用于下钻差集
func (m *MySQL) GetMySQLDataRowStrings(querySQL string) ([]string, *strset.Set, error) {
	var cols []string
	stringSet := set.NewStringSet()

	rows, err := m.MySQLDB.QueryContext(m.Ctx, querySQL)
	if err != nil {
		return cols, stringSet, fmt.Errorf("general sql [%v] query failed: [%v]", querySQL, err.Error())
	}
	defer rows.Close()

	cols, err = rows.Columns()
	if err != nil {
		return cols, stringSet, fmt.Errorf("general sql [%v] query rows.Columns failed: [%v]", querySQL, err.Error())
	}

	// 用于判断字段值是数字还是字符
	var columnTypes []string
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return cols, stringSet, err
	}
	for _, ct := range colTypes {
		// 数据库字段类型 DatabaseTypeName() 映射 go 类型 ScanType()
		columnTypes = append(columnTypes, ct.ScanType().String())
	}

	rawResult := make([][]byte, len(cols))
	scans := make([]interface{}, len(cols))
	for i := range rawResult {
		scans[i] = &rawResult[i]
	}

	var rowsTMP []string
	for rows.Next() {
		err = rows.Scan(scans...)
		if err != nil {
			return cols, stringSet, fmt.Errorf("general sql [%v] query rows.Scan failed: [%v]", querySQL, err.Error())
		}

		rowsTMP, err = normalizeMySQLRowValues(columnTypes, rawResult, rowsTMP)
		if err != nil {
			return cols, stringSet, err
		}

		stringSet.Add(exstrings.Join(rowsTMP, common.ChecksumSeparator))

		// 数组清空
		rowsTMP = rowsTMP[0:0]
	}

	if err = rows.Err(); err != nil {
		return cols, stringSet, fmt.Errorf("general sql [%v] query rows.Next failed: [%v]", querySQL, err.Error())
	}
	return cols, stringSet, nil
}

// 行值按 go 扫描类型规范化，数字消除前导零/精度表示差异，字符带引号并转义
// NULL 与空字符串区分处理，同分批行值路径口径一致
func normalizeMySQLRowValues(columnTypes []string, rawResult [][]byte, dest []string) ([]string, error) {
	for i, raw := range rawResult {
		if raw == nil {
			dest = append(dest, `NULL`)
			continue
		}
		switch columnTypes[i] {
		case "int8", "int16", "int32", "int64", "sql.NullInt32", "sql.NullInt64":
			r, err := common.StrconvIntBitSize(string(raw), 64)
			if err != nil {
				return dest, err
			}
			dest = append(dest, fmt.Sprintf("%v", r))
		case "uint8", "uint16", "uint32", "uint64":
			r, err := common.StrconvUintBitSize(string(raw), 64)
			if err != nil {
				return dest, err
			}
			dest = append(dest, fmt.Sprintf("%v", r))
		case "float32":
			r, err := common.StrconvFloatBitSize(string(raw), 32)
			if err != nil {
				return dest, err
			}
			dest = append(dest, fmt.Sprintf("%v", r))
		case "float64", "sql.NullFloat64":
			r, err := common.StrconvFloatBitSize(string(raw), 64)
			if err != nil {
				return dest, err
			}
			dest = append(dest, fmt.Sprintf("%v", r))
		default:
			// 特殊字符
			dest = append(dest, fmt.Sprintf("'%v'", common.SpecialLettersUsingMySQL(raw)))
		}
	}
	return dest, nil
}
