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
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/config"
	"github.com/marchwind/comparedb/errors"
)

type MySQL struct {
	Ctx     context.Context
	MySQLDB *sql.DB
}

func NewMySQLDBEngine(ctx context.Context, mysqlCfg config.MySQLConfig) (*MySQL, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/?%s",
		mysqlCfg.Username, mysqlCfg.Password, mysqlCfg.Host, mysqlCfg.Port, mysqlCfg.ConnectParams)

	mysqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("error on open mysql database connection: %v", err)
	}

	mysqlDB.SetMaxIdleConns(common.MySQLMaxIdleConn)
	mysqlDB.SetMaxOpenConns(common.MySQLMaxConn)
	mysqlDB.SetConnMaxLifetime(common.MySQLConnMaxLifeTime)
	mysqlDB.SetConnMaxIdleTime(common.MySQLConnMaxIdleTime)

	if err = mysqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("error on ping mysql database connection: %v", err)
	}

	return &MySQL{
		Ctx:     ctx,
		MySQLDB: mysqlDB,
	}, nil
}

func (m *MySQL) Close() error {
	if m.MySQLDB != nil {
		return m.MySQLDB.Close()
	}
	return nil
}

// 数据库查询错误分类，超时错误单独归类，供上层按错误域分流
func ClassifyQueryError(err error) error {
	if err == nil {
		return nil
	}
	if IsTimeoutError(err) {
		return errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_TIMEOUT, err)
	}
	return errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_DB, err)
}

func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if err == context.DeadlineExceeded {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	// mysql 侧 Error 3024: Query execution was interrupted, maximum statement execution time exceeded
	// 驱动侧 invalid connection / i/o timeout
	return strings.Contains(errMsg, "context deadline exceeded") ||
		strings.Contains(errMsg, "maximum statement execution time exceeded") ||
		strings.Contains(errMsg, "i/o timeout")
}

func Query(ctx context.Context, db *sql.DB, querySQL string) ([]string, []map[string]string, error) {
	var (
		cols []string
		res  []map[string]string
	)
	rows, err := db.QueryContext(ctx, querySQL)
	if err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query failed: [%v]", querySQL, err.Error())
	}
	defer rows.Close()

	//不确定字段通用查询，自动获取字段名称
	cols, err = rows.Columns()
	if err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query rows.Columns failed: [%v]", querySQL, err.Error())
	}

	values := make([][]byte, len(cols))
	scans := make([]interface{}, len(cols))
	for i := range values {
		scans[i] = &values[i]
	}

	for rows.Next() {
		err = rows.Scan(scans...)
		if err != nil {
			return cols, res, fmt.Errorf("general sql [%v] query rows.Scan failed: [%v]", querySQL, err.Error())
		}

		row := make(map[string]string)
		for k, v := range values {
			// 查询字段值 NULL
			// 如果字段值 = NULLABLE 则表示值是 NULL
			// 如果字段值 = "" 则表示值是空字符串
			// 如果字段值 = 'NULL' 则表示值是 NULL 字符串
			if v == nil {
				row[cols[k]] = common.NullSentinel
			} else {
				// 处理空字符串以及其他值情况
				// 数据统一 string 格式显示
				row[cols[k]] = string(v)
			}
		}
		res = append(res, row)
	}

	if err = rows.Err(); err != nil {
		return cols, res, fmt.Errorf("general sql [%v] query rows.Next failed: [%v]", querySQL, err.Error())
	}
	return cols, res, nil
}
