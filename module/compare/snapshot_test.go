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
	"testing"

	"github.com/marchwind/comparedb/common"
	"github.com/stretchr/testify/require"
)

func TestCompareTableStructCategories(t *testing.T) {
	source := TableInfo{
		TableName: "dim_users",
		Columns: []ColumnInfo{
			{ColumnName: "id", ColumnType: "bigint(20)", Nullable: "NO", OrdinalPosition: 1},
			{ColumnName: "name", ColumnType: "varchar(128)", Nullable: "NO", OrdinalPosition: 2},
			{ColumnName: "email", ColumnType: "varchar(255)", Nullable: "YES", OrdinalPosition: 3},
			{ColumnName: "age", ColumnType: "int(11)", Nullable: "YES", OrdinalPosition: 4},
		},
	}
	target := TableInfo{
		TableName: "dim_users",
		Columns: []ColumnInfo{
			{ColumnName: "id", ColumnType: "bigint(20)", Nullable: "NO", OrdinalPosition: 1},
			{ColumnName: "name", ColumnType: "varchar(64)", Nullable: "YES", OrdinalPosition: 2},
			{ColumnName: "age", ColumnType: "int(11)", Nullable: "YES", OrdinalPosition: 3},
			{ColumnName: "legacy_flag", ColumnType: "tinyint(1)", Nullable: "YES", OrdinalPosition: 4},
		},
	}

	diffs := CompareTableStruct(source, target)

	var categories []string
	for _, d := range diffs {
		categories = append(categories, d.Category)
	}
	// 输出顺序固定：仅源端 -> 仅目标端 -> 类型变化 -> 空值约束变化
	require.Equal(t, []string{
		common.SchemaDiffOnlySource,
		common.SchemaDiffOnlyTarget,
		common.SchemaDiffTypeChanged,
		common.SchemaDiffNullableChanged,
	}, categories)

	require.Equal(t, "email", diffs[0].ColumnName)
	require.Equal(t, "legacy_flag", diffs[1].ColumnName)
	require.Equal(t, "name", diffs[2].ColumnName)
	require.Equal(t, "varchar(128)", diffs[2].SourceDetail)
	require.Equal(t, "varchar(64)", diffs[2].TargetDetail)
	require.Equal(t, "name", diffs[3].ColumnName)
}

func TestCompareTableStructIdentical(t *testing.T) {
	info := TableInfo{
		TableName: "dim_same",
		Columns: []ColumnInfo{
			{ColumnName: "id", ColumnType: "bigint(20)", Nullable: "NO", OrdinalPosition: 1},
		},
	}
	require.Empty(t, CompareTableStruct(info, info))
}

func TestCompareTableIndexUniquenessDrift(t *testing.T) {
	source := TableInfo{Indexes: []IndexInfo{
		{IndexName: "idx_code", Uniqueness: true, ColumnList: "code"},
		{IndexName: "idx_extra", Uniqueness: false, ColumnList: "a,b"},
	}}
	target := TableInfo{Indexes: []IndexInfo{
		{IndexName: "idx_code", Uniqueness: false, ColumnList: "code"},
	}}

	diffs := CompareTableIndex(source, target)
	require.Len(t, diffs, 2)
	require.Equal(t, common.SchemaDiffOnlySource, diffs[0].Category)
	require.Equal(t, "idx_extra", diffs[0].IndexName)
	require.Equal(t, common.SchemaDiffTypeChanged, diffs[1].Category)
	require.Equal(t, "idx_code", diffs[1].IndexName)
}

func TestCompareRowValueSemantics(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		numeric bool
		want    int
	}{
		{name: "numeric equality across precision", a: "10", b: "10.00", numeric: true, want: 0},
		{name: "numeric order", a: "2", b: "10", numeric: true, want: -1},
		{name: "varchar digits stay lexicographic", a: "2", b: "10", numeric: false, want: 1},
		{name: "varchar precision not folded", a: "10", b: "10.00", numeric: false, want: -1},
		{name: "null equals null", a: common.NullSentinel, b: common.NullSentinel, numeric: false, want: 0},
		{name: "null sorts first", a: common.NullSentinel, b: "0", numeric: true, want: -1},
		{name: "string order", a: "abc", b: "abd", numeric: false, want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, compareRowValue(tt.a, tt.b, tt.numeric))
		})
	}
}

// 公共列按源端列序，两端任一侧非数字类型按字符语义
func TestCompareColumnsTypeAlignment(t *testing.T) {
	source := TableInfo{Columns: []ColumnInfo{
		{ColumnName: "id", DataType: "bigint", OrdinalPosition: 1},
		{ColumnName: "name", DataType: "varchar", OrdinalPosition: 2},
		{ColumnName: "email", DataType: "varchar", OrdinalPosition: 3},
	}}
	target := TableInfo{Columns: []ColumnInfo{
		{ColumnName: "ID", DataType: "varchar", OrdinalPosition: 1},
		{ColumnName: "NAME", DataType: "varchar", OrdinalPosition: 2},
		{ColumnName: "legacy_flag", DataType: "tinyint", OrdinalPosition: 3},
	}}

	columns := compareColumns(source, target)
	require.Equal(t, []string{"id", "name"}, columnNameList(columns))
	require.Equal(t, []string{"varchar", "varchar"}, columnDataTypeList(columns))
	require.Equal(t, []bool{false, false}, numericColumnFlags(columns))
}

func TestMatchPercent(t *testing.T) {
	require.Equal(t, "100.00%", matchPercent(0, 0, 0))
	require.Equal(t, "100.00%", matchPercent(10, 10, 0))
	require.Equal(t, "50.00%", matchPercent(10, 10, 5))
	require.Equal(t, "0.00%", matchPercent(10, 10, 20))
}
