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
	"github.com/scylladb/go-set/strset"
)

// 库表元数据读取，database/mysql.MySQL 实现
type MetaReader interface {
	GetMySQLSchemaTables(schemaName string) ([]string, error)
	GetMySQLTableColumn(schemaName, tableName string) ([]map[string]string, error)
	GetMySQLTablePrimaryKey(schemaName, tableName string) ([]string, error)
	GetMySQLTableIndex(schemaName, tableName string) ([]map[string]string, error)
	GetMySQLTableActualRows(schemaName, tableName string) (int64, error)
}

// 表数据读取，database/mysql.MySQL 实现
type DataReader interface {
	GetMySQLTableCheckSum(schemaName, tableName string, columns []string) (uint64, error)
	GetMySQLTableMaxWatermark(schemaName, tableName, watermarkColumn string) (string, error)
	GetMySQLTableChunkRows(querySQL string) ([]string, [][]string, error)
	GetMySQLDataRowStrings(querySQL string) ([]string, *strset.Set, error)
}

type Engine interface {
	MetaReader
	DataReader
}
