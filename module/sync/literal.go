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
	"github.com/marchwind/comparedb/common"
	"github.com/shopspring/decimal"
)

// 对比结果行值转 SQL 字面量，裸写与否由列类型决定
// NULL 标识转 NULL 关键字，数字列裸写，其余单引号转义
// 字符列即使值是数字形也带引号，'007' 不丢前导零
func FormatLiteral(value string, numeric bool) string {
	if value == common.NullSentinel {
		return "NULL"
	}
	if numeric {
		if _, err := decimal.NewFromString(value); err == nil {
			return value
		}
	}
	return common.StringsBuilder("'", common.SpecialLettersUsingMySQL([]byte(value)), "'")
}

func formatLiterals(values []string, numeric []bool) []string {
	lits := make([]string, 0, len(values))
	for i, v := range values {
		lits = append(lits, FormatLiteral(v, numeric[i]))
	}
	return lits
}

func numericFlags(columnTypes []string) []bool {
	flags := make([]bool, 0, len(columnTypes))
	for _, t := range columnTypes {
		flags = append(flags, common.IsNumericDataType(t))
	}
	return flags
}
