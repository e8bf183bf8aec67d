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
	"strings"
	"time"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/database/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 排序键游标分批流，单批载入内存，游标条件跳过已读键
type chunkStream struct {
	engine      DataReader
	schemaName  string
	tableName   string
	columns     []string
	numericCols []bool
	keyColumns  []string
	keyIdx      []int
	chunkSize   int
	lastKey     []string
	buf         [][]string
	pos         int
	noMore      bool
}

func newChunkStream(engine DataReader, schemaName, tableName string, columns []string, numericCols []bool, keyColumns []string, chunkSize int) (*chunkStream, error) {
	keyIdx, err := keyColumnIndexes(columns, keyColumns)
	if err != nil {
		return nil, err
	}
	return &chunkStream{
		engine:      engine,
		schemaName:  schemaName,
		tableName:   tableName,
		columns:     columns,
		numericCols: numericCols,
		keyColumns:  keyColumns,
		keyIdx:      keyIdx,
		chunkSize:   chunkSize,
	}, nil
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

func columnNameList(columns []ColumnInfo) []string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.ColumnName)
	}
	return names
}

func columnDataTypeList(columns []ColumnInfo) []string {
	dataTypes := make([]string, 0, len(columns))
	for _, c := range columns {
		dataTypes = append(dataTypes, c.DataType)
	}
	return dataTypes
}

// 数值语义标记来自列类型元数据，不从值猜测
func numericColumnFlags(columns []ColumnInfo) []bool {
	flags := make([]bool, 0, len(columns))
	for _, c := range columns {
		flags = append(flags, common.IsNumericDataType(c.DataType))
	}
	return flags
}

func (s *chunkStream) buildChunkSQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(common.StringJOIN(s.columns, "`", "`", ","))
	b.WriteString(" FROM ")
	b.WriteString(common.StringsBuilder("`", s.schemaName, "`.`", s.tableName, "`"))
	if s.lastKey != nil {
		var keyLits []string
		for i, v := range s.lastKey {
			keyLits = append(keyLits, keyLiteral(v, s.numericCols[s.keyIdx[i]]))
		}
		b.WriteString(" WHERE (")
		b.WriteString(common.StringJOIN(s.keyColumns, "`", "`", ","))
		b.WriteString(") > (")
		b.WriteString(strings.Join(keyLits, ","))
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(common.StringJOIN(s.keyColumns, "`", "`", ","))
	b.WriteString(fmt.Sprintf(" LIMIT %d", s.chunkSize))
	return b.String()
}

func (s *chunkStream) fetch() error {
	_, rows, err := s.engine.GetMySQLTableChunkRows(s.buildChunkSQL())
	if err != nil {
		return mysql.ClassifyQueryError(err)
	}
	s.buf = rows
	s.pos = 0
	if len(rows) < s.chunkSize {
		s.noMore = true
	}
	if len(rows) > 0 {
		last := rows[len(rows)-1]
		s.lastKey = make([]string, 0, len(s.keyIdx))
		for _, idx := range s.keyIdx {
			s.lastKey = append(s.lastKey, last[idx])
		}
	}
	return nil
}

// next 返回下一行，流结束返回 nil
func (s *chunkStream) next() ([]string, error) {
	if s.pos < len(s.buf) {
		row := s.buf[s.pos]
		s.pos++
		return row, nil
	}
	if s.noMore {
		return nil, nil
	}
	if err := s.fetch(); err != nil {
		return nil, err
	}
	return s.next()
}

// 主键非空，游标字面量无需处理 NULL
// 数字列裸写，字符列带引号，'007' 之类数字形字符值不丢失
func keyLiteral(v string, numeric bool) string {
	if numeric {
		if _, err := decimal.NewFromString(v); err == nil {
			return v
		}
	}
	return common.StringsBuilder("'", common.SpecialLettersUsingMySQL([]byte(v)), "'")
}

// 值比较，NULL 最小
// 数字列按数值语义，字符列按字节序，与 MySQL ORDER BY 排序一致
func compareRowValue(a, b string, numeric bool) int {
	if a == b {
		return 0
	}
	if a == common.NullSentinel {
		return -1
	}
	if b == common.NullSentinel {
		return 1
	}
	if numeric {
		decA, errA := decimal.NewFromString(a)
		decB, errB := decimal.NewFromString(b)
		if errA == nil && errB == nil {
			return decA.Cmp(decB)
		}
	}
	return strings.Compare(a, b)
}

func equalRowValue(a, b string, numeric bool) bool {
	return compareRowValue(a, b, numeric) == 0
}

func compareKeyTuple(a, b []string, keyIdx []int, numericCols []bool) int {
	for _, idx := range keyIdx {
		if r := compareRowValue(a[idx], b[idx], numericCols[idx]); r != 0 {
			return r
		}
	}
	return 0
}

func keyValues(row []string, keyIdx []int) []string {
	vals := make([]string, 0, len(keyIdx))
	for _, idx := range keyIdx {
		vals = append(vals, row[idx])
	}
	return vals
}

// 两端排序键有序流归并对比，单表内存占用与分批大小同阶
// 差异计数全量，差异样本按 row-sample-limit 封顶
func (t *Task) CompareRows(columns []ColumnInfo, keyColumns []string) ([]RowDiff, *RowDiffStat, error) {
	startTime := time.Now()

	names := columnNameList(columns)
	numericCols := numericColumnFlags(columns)
	sampleLimit := t.cfg.CompareConfig.RowSampleLimit
	if sampleLimit <= 0 {
		sampleLimit = common.DefaultRowSampleLimit
	}

	sourceStream, err := newChunkStream(t.source, t.sourceInfo.SchemaName, t.tableName, names, numericCols, keyColumns, t.cfg.CompareConfig.ChunkSize)
	if err != nil {
		return nil, nil, err
	}
	targetStream, err := newChunkStream(t.target, t.targetInfo.SchemaName, t.tableName, names, numericCols, keyColumns, t.cfg.CompareConfig.ChunkSize)
	if err != nil {
		return nil, nil, err
	}

	// 两端首批并行预取
	g := &errgroup.Group{}
	g.Go(sourceStream.fetch)
	g.Go(targetStream.fetch)
	if err = g.Wait(); err != nil {
		return nil, nil, err
	}

	keyIdx := sourceStream.keyIdx

	var diffs []RowDiff
	stat := &RowDiffStat{}
	appendDiff := func(d RowDiff) {
		switch d.DiffType {
		case RowDiffAdded:
			stat.Added++
		case RowDiffRemoved:
			stat.Removed++
		case RowDiffModified:
			stat.Modified++
		}
		if len(diffs) < sampleLimit {
			diffs = append(diffs, d)
		} else {
			stat.Truncated = true
		}
	}

	sourceRow, err := sourceStream.next()
	if err != nil {
		return diffs, stat, err
	}
	targetRow, err := targetStream.next()
	if err != nil {
		return diffs, stat, err
	}

	for sourceRow != nil || targetRow != nil {
		switch {
		case targetRow == nil:
			// 仅源端存在，目标端缺失
			appendDiff(RowDiff{
				DiffType:  RowDiffRemoved,
				KeyValues: keyValues(sourceRow, keyIdx),
				SourceRow: sourceRow,
			})
			if sourceRow, err = sourceStream.next(); err != nil {
				return diffs, stat, err
			}
		case sourceRow == nil:
			// 仅目标端存在，目标端多出
			appendDiff(RowDiff{
				DiffType:  RowDiffAdded,
				KeyValues: keyValues(targetRow, keyIdx),
				TargetRow: targetRow,
			})
			if targetRow, err = targetStream.next(); err != nil {
				return diffs, stat, err
			}
		default:
			cmp := compareKeyTuple(sourceRow, targetRow, keyIdx, numericCols)
			switch {
			case cmp < 0:
				appendDiff(RowDiff{
					DiffType:  RowDiffRemoved,
					KeyValues: keyValues(sourceRow, keyIdx),
					SourceRow: sourceRow,
				})
				if sourceRow, err = sourceStream.next(); err != nil {
					return diffs, stat, err
				}
			case cmp > 0:
				appendDiff(RowDiff{
					DiffType:  RowDiffAdded,
					KeyValues: keyValues(targetRow, keyIdx),
					TargetRow: targetRow,
				})
				if targetRow, err = targetStream.next(); err != nil {
					return diffs, stat, err
				}
			default:
				var modifiedColumns []string
				for i := range names {
					if !equalRowValue(sourceRow[i], targetRow[i], numericCols[i]) {
						modifiedColumns = append(modifiedColumns, names[i])
					}
				}
				if len(modifiedColumns) > 0 {
					appendDiff(RowDiff{
						DiffType:        RowDiffModified,
						KeyValues:       keyValues(sourceRow, keyIdx),
						SourceRow:       sourceRow,
						TargetRow:       targetRow,
						ModifiedColumns: modifiedColumns,
					})
				}
				if sourceRow, err = sourceStream.next(); err != nil {
					return diffs, stat, err
				}
				if targetRow, err = targetStream.next(); err != nil {
					return diffs, stat, err
				}
			}
		}
	}

	zap.L().Info("compare table rows finished",
		zap.String("table", t.tableName),
		zap.Int64("diff rows", stat.Total()),
		zap.Bool("sample truncated", stat.Truncated),
		zap.String("cost", time.Now().Sub(startTime).String()))

	return diffs, stat, nil
}
