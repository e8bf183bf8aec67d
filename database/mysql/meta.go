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
)

func (m *MySQL) GetMySQLDBVersion() (string, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, `SELECT VERSION() AS VERSION`)
	if err != nil {
		return "", err
	}
	return res[0]["VERSION"], nil
}

func (m *MySQL) GetMySQLSchemaTables(schemaName string) ([]string, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, fmt.Sprintf(`SELECT
	TABLE_NAME
FROM
	INFORMATION_SCHEMA.TABLES
WHERE
	UPPER(TABLE_SCHEMA) = '%s'
	AND TABLE_TYPE = 'BASE TABLE'
ORDER BY
	TABLE_NAME`, strings.ToUpper(schemaName)))
	if err != nil {
		return nil, err
	}

	var tables []string
	for _, r := range res {
		tables = append(tables, r["TABLE_NAME"])
	}
	return tables, nil
}

func (m *MySQL) GetMySQLTableColumn(schemaName, tableName string) ([]map[string]string, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, fmt.Sprintf(`SELECT
	COLUMN_NAME,
	DATA_TYPE,
	COLUMN_TYPE,
	IS_NULLABLE,
	IFNULL(COLUMN_DEFAULT,'NULLSTRING') AS COLUMN_DEFAULT,
	IFNULL(CHARACTER_MAXIMUM_LENGTH,0) AS CHAR_LENGTH,
	IFNULL(NUMERIC_PRECISION,0) AS DATA_PRECISION,
	IFNULL(NUMERIC_SCALE,0) AS DATA_SCALE,
	ORDINAL_POSITION
FROM
	INFORMATION_SCHEMA.COLUMNS
WHERE
	UPPER(TABLE_SCHEMA) = '%s'
	AND UPPER(TABLE_NAME) = '%s'
ORDER BY
	ORDINAL_POSITION`, strings.ToUpper(schemaName), strings.ToUpper(tableName)))
	if err != nil {
		return res, err
	}
	if len(res) == 0 {
		return res, fmt.Errorf("mysql schema [%s] table [%s] column info search failed, results are null", schemaName, tableName)
	}
	return res, nil
}

// 主键列按索引序返回，作为行对比以及分批游标的排序键
func (m *MySQL) GetMySQLTablePrimaryKey(schemaName, tableName string) ([]string, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, fmt.Sprintf(`SELECT
	COLUMN_NAME
FROM
	INFORMATION_SCHEMA.STATISTICS
WHERE
	UPPER(TABLE_SCHEMA) = '%s'
	AND UPPER(TABLE_NAME) = '%s'
	AND INDEX_NAME = 'PRIMARY'
ORDER BY
	SEQ_IN_INDEX`, strings.ToUpper(schemaName), strings.ToUpper(tableName)))
	if err != nil {
		return nil, err
	}

	var pkColumns []string
	for _, r := range res {
		pkColumns = append(pkColumns, r["COLUMN_NAME"])
	}
	return pkColumns, nil
}

func (m *MySQL) GetMySQLTableIndex(schemaName, tableName string) ([]map[string]string, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, fmt.Sprintf(`SELECT
	INDEX_NAME,
	MAX(NON_UNIQUE) AS NON_UNIQUE,
	GROUP_CONCAT(COLUMN_NAME ORDER BY SEQ_IN_INDEX SEPARATOR ',') AS COLUMN_LIST
FROM
	INFORMATION_SCHEMA.STATISTICS
WHERE
	UPPER(TABLE_SCHEMA) = '%s'
	AND UPPER(TABLE_NAME) = '%s'
	AND INDEX_NAME != 'PRIMARY'
GROUP BY
	INDEX_NAME
ORDER BY
	INDEX_NAME`, strings.ToUpper(schemaName), strings.ToUpper(tableName)))
	if err != nil {
		return res, err
	}
	return res, nil
}

func (m *MySQL) GetMySQLTableActualRows(schemaName, tableName string) (int64, error) {
	_, res, err := Query(m.Ctx, m.MySQLDB, fmt.Sprintf("SELECT COUNT(1) AS ROWCOUNTS FROM %s",
		common.StringsBuilder("`", schemaName, "`.`", tableName, "`")))
	if err != nil {
		return 0, err
	}
	rowsCount, err := strconv.ParseInt(res[0]["ROWCOUNTS"], 10, 64)
	if err != nil {
		return rowsCount, fmt.Errorf("error on FUNC GetMySQLTableActualRows failed: %v", err)
	}
	return rowsCount, nil
}
