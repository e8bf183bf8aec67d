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
	"fmt"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/errors"
	"github.com/stretchr/testify/require"
)

func newMockEngine(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return &MySQL{Ctx: context.Background(), MySQLDB: db}, mock
}

func TestQueryNullSentinel(t *testing.T) {
	engine, mock := newMockEngine(t)

	mock.ExpectQuery("SELECT ID,NAME FROM T").WillReturnRows(
		sqlmock.NewRows([]string{"ID", "NAME"}).
			AddRow("1", nil).
			AddRow("2", ""))

	cols, res, err := Query(engine.Ctx, engine.MySQLDB, "SELECT ID,NAME FROM T")
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "NAME"}, cols)
	require.Len(t, res, 2)
	require.Equal(t, common.NullSentinel, res[0]["NAME"])
	require.Equal(t, "", res[1]["NAME"])
}

func TestGetMySQLTableCheckSum(t *testing.T) {
	engine, mock := newMockEngine(t)

	querySQL := fmt.Sprintf("SELECT IFNULL(BIT_XOR(CRC32(CONCAT_WS('%s',COALESCE(CONVERT(`ID`,CHAR),'NULL'),COALESCE(CONVERT(`NAME`,CHAR),'NULL')))),0) AS CHECKSUM FROM `MARVIN`.`DIM_USERS`", common.ChecksumSeparator)
	mock.ExpectQuery(querySQL).WillReturnRows(
		sqlmock.NewRows([]string{"CHECKSUM"}).AddRow("3405691582"))

	checkSum, err := engine.GetMySQLTableCheckSum("MARVIN", "DIM_USERS", []string{"ID", "NAME"})
	require.NoError(t, err)
	require.Equal(t, uint64(3405691582), checkSum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMySQLTableMaxWatermarkEmptyTable(t *testing.T) {
	engine, mock := newMockEngine(t)

	mock.ExpectQuery("SELECT MAX(`UPDATED_AT`) AS WATERMARK FROM `MARVIN`.`FACT_SALES`").WillReturnRows(
		sqlmock.NewRows([]string{"WATERMARK"}).AddRow(nil))

	watermark, err := engine.GetMySQLTableMaxWatermark("MARVIN", "FACT_SALES", "UPDATED_AT")
	require.NoError(t, err)
	require.Equal(t, common.NullSentinel, watermark)
}

func TestGetMySQLTableChunkRows(t *testing.T) {
	engine, mock := newMockEngine(t)

	querySQL := "SELECT `ID`,`NAME` FROM `MARVIN`.`DIM_USERS` ORDER BY `ID` LIMIT 2"
	mock.ExpectQuery(querySQL).WillReturnRows(
		sqlmock.NewRows([]string{"ID", "NAME"}).
			AddRow("1", "alice").
			AddRow("2", nil))

	cols, rows, err := engine.GetMySQLTableChunkRows(querySQL)
	require.NoError(t, err)
	require.Equal(t, []string{"ID", "NAME"}, cols)
	require.Equal(t, [][]string{{"1", "alice"}, {"2", common.NullSentinel}}, rows)
}

// 空字符串与 NULL 两条归一化路径口径一致，差集不误报
func TestGetMySQLDataRowStringsEmptyVsNull(t *testing.T) {
	engine, mock := newMockEngine(t)

	querySQL := "SELECT `ID`,`NAME` FROM `MARVIN`.`DIM_USERS`"
	rows := sqlmock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("ID").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("NAME").OfType("VARCHAR", "").Nullable(true),
	).AddRow(int64(1), nil).AddRow(int64(2), "")
	mock.ExpectQuery(querySQL).WillReturnRows(rows)

	_, rowSet, err := engine.GetMySQLDataRowStrings(querySQL)
	require.NoError(t, err)
	require.True(t, rowSet.Has(fmt.Sprintf("1%sNULL", common.ChecksumSeparator)))
	require.True(t, rowSet.Has(fmt.Sprintf("2%s''", common.ChecksumSeparator)))
}

func TestClassifyQueryError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDomain errors.MSErrorDomain
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantDomain: errors.DOMAIN_TIMEOUT},
		{name: "statement time exceeded", err: fmt.Errorf("Error 3024: Query execution was interrupted, maximum statement execution time exceeded"), wantDomain: errors.DOMAIN_TIMEOUT},
		{name: "io timeout", err: fmt.Errorf("read tcp 10.0.0.1:3306: i/o timeout"), wantDomain: errors.DOMAIN_TIMEOUT},
		{name: "syntax error", err: fmt.Errorf("Error 1064: You have an error in your SQL syntax"), wantDomain: errors.DOMAIN_DB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyQueryError(tt.err)
			require.Error(t, err)
			require.True(t, errors.IsDomainErr(err, tt.wantDomain))
		})
	}
	require.NoError(t, ClassifyQueryError(nil))
}
