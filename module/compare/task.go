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
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/config"
	"github.com/marchwind/comparedb/errors"
	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
	"go.uber.org/zap"
)

type Task struct {
	ctx        context.Context
	cfg        *config.Config
	tableName  string
	sourceInfo TableInfo
	targetInfo TableInfo
	source     Engine
	target     Engine
}

func NewCompareTableTask(ctx context.Context, cfg *config.Config, sourceInfo, targetInfo TableInfo, source, target Engine) *Task {
	return &Task{
		ctx:        ctx,
		cfg:        cfg,
		tableName:  sourceInfo.TableName,
		sourceInfo: sourceInfo,
		targetInfo: targetInfo,
		source:     source,
		target:     target,
	}
}

// 待对比表清单，include 优先，exclude 过滤，为空报错
func ResolveCompareTables(cfg *config.Config, source MetaReader) ([]string, error) {
	var tables []string
	if len(cfg.CompareConfig.IncludeTable) > 0 {
		tables = cfg.CompareConfig.IncludeTable
	} else {
		schemaTables, err := source.GetMySQLSchemaTables(cfg.SourceConfig.SchemaName)
		if err != nil {
			return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA, err)
		}
		tables = schemaTables
	}

	if len(cfg.CompareConfig.ExcludeTable) > 0 {
		excludes := set.NewStringSet()
		for _, t := range cfg.CompareConfig.ExcludeTable {
			excludes.Add(strings.ToUpper(t))
		}
		var kept []string
		for _, t := range tables {
			if !excludes.Has(strings.ToUpper(t)) {
				kept = append(kept, t)
			}
		}
		tables = kept
	}

	if len(tables) == 0 {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_SELECTION,
			fmt.Errorf("schema [%s] compare table selection is empty", cfg.SourceConfig.SchemaName))
	}
	return tables, nil
}

// 受限类别表只允许单独选择，混选直接拒绝整个运行
func ValidateSelection(tables []string) error {
	if len(tables) <= 1 {
		return nil
	}
	for _, t := range tables {
		if common.IsRestrictedTable(t) {
			return errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_SELECTION,
				fmt.Errorf("restricted table [%s] must be selected alone, current selection has [%d] tables", t, len(tables)))
		}
	}
	return nil
}

// 待对比表占位结果，运行前全部 PENDING
func pendingTableResults(tables []string, compareMode string) []TableResult {
	results := make([]TableResult, 0, len(tables))
	for _, t := range tables {
		results = append(results, TableResult{
			TableName:   t,
			CompareMode: compareMode,
			TaskStatus:  common.TaskStatusPending,
		})
	}
	return results
}

// 单引擎对顺序逐表对比，表间协作式取消，单表失败不中断运行
func Run(ctx context.Context, cfg *config.Config, source, target Engine) (*Result, error) {
	startTime := time.Now()

	tables, err := ResolveCompareTables(cfg, source)
	if err != nil {
		return nil, err
	}
	if err = ValidateSelection(tables); err != nil {
		return nil, err
	}

	sourceTables, err := SchemaTableSet(source, cfg.SourceConfig.SchemaName)
	if err != nil {
		return nil, err
	}
	targetTables, err := SchemaTableSet(target, cfg.TargetConfig.SchemaName)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:        uuid.New().String(),
		SchemaNameS:  cfg.SourceConfig.SchemaName,
		SchemaNameT:  cfg.TargetConfig.SchemaName,
		CompareMode:  cfg.CompareConfig.CompareMode,
		TaskStatus:   common.TaskStatusPending,
		TableResults: pendingTableResults(tables, cfg.CompareConfig.CompareMode),
	}

	zap.L().Info("compare run start",
		zap.String("run id", result.RunID),
		zap.String("compare mode", result.CompareMode),
		zap.Int("tables", len(tables)))
	result.TaskStatus = common.TaskStatusRunning

	var (
		completed int
		cancelled bool
	)
	for i := range tables {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			result.TableResults[i].TaskStatus = common.TaskStatusCancelled
			continue
		}

		// 快照失败只标记本表 FAILED，不中断其余表
		sourceInfo, err := SnapshotTable(source, cfg.SourceConfig.SchemaName, sourceTables, tables[i])
		var targetInfo TableInfo
		if err == nil {
			targetInfo, err = SnapshotTable(target, cfg.TargetConfig.SchemaName, targetTables, tables[i])
		}
		if err != nil {
			result.TableResults[i].TaskStatus = common.TaskStatusFailed
			result.TableResults[i].ErrorMsg = err.Error()
			zap.L().Error("compare table snapshot failed",
				zap.String("table", tables[i]),
				zap.Error(err))
			continue
		}

		task := NewCompareTableTask(ctx, cfg, sourceInfo, targetInfo, source, target)
		tableResult := task.compareTable()
		if tableResult.TaskStatus == common.TaskStatusCompleted {
			completed++
		}
		result.TableResults[i] = tableResult
	}

	switch {
	case cancelled:
		result.TaskStatus = common.TaskStatusCancelled
	case completed == 0:
		result.TaskStatus = common.TaskStatusFailed
	default:
		result.TaskStatus = common.TaskStatusCompleted
	}
	result.Cost = time.Now().Sub(startTime).String()

	zap.L().Info("compare run finished",
		zap.String("run id", result.RunID),
		zap.String("task status", result.TaskStatus),
		zap.Int("completed", completed),
		zap.String("cost", result.Cost))

	return result, nil
}

func (t *Task) compareTable() TableResult {
	startTime := time.Now()

	tableResult := TableResult{
		TableName:      t.tableName,
		CompareMode:    t.cfg.CompareConfig.CompareMode,
		TaskStatus:     common.TaskStatusRunning,
		SourceRowCount: t.sourceInfo.RowCounts,
		TargetRowCount: t.targetInfo.RowCounts,
	}

	if err := t.run(&tableResult); err != nil {
		tableResult.TaskStatus = common.TaskStatusFailed
		tableResult.ErrorMsg = err.Error()
		zap.L().Error("compare table failed",
			zap.String("table", t.tableName),
			zap.Error(err))
	} else {
		tableResult.TaskStatus = common.TaskStatusCompleted
	}
	tableResult.Cost = time.Now().Sub(startTime).String()
	return tableResult
}

func (t *Task) run(tableResult *TableResult) error {
	sourceInfo, err := LoadColumns(t.source, t.sourceInfo)
	if err != nil {
		return err
	}
	targetInfo, err := LoadColumns(t.target, t.targetInfo)
	if err != nil {
		return err
	}
	t.sourceInfo = sourceInfo
	t.targetInfo = targetInfo

	tableResult.ColumnDiffs = CompareTableStruct(t.sourceInfo, t.targetInfo)

	if t.cfg.CompareConfig.CompareMode == common.CompareModeDeep {
		if t.sourceInfo, err = LoadIndexes(t.source, t.sourceInfo); err != nil {
			return err
		}
		if t.targetInfo, err = LoadIndexes(t.target, t.targetInfo); err != nil {
			return err
		}
		tableResult.IndexDiffs = CompareTableIndex(t.sourceInfo, t.targetInfo)
		// 约束对比暂不支持，显式标记避免误读为一致
		tableResult.ConstraintStatus = common.TaskStatusNotEvaluated
	}

	columns := compareColumns(t.sourceInfo, t.targetInfo)
	if len(columns) == 0 {
		return errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_METADATA,
			fmt.Errorf("table [%s] has no common columns between source and target", t.tableName))
	}
	names := columnNameList(columns)
	tableResult.CompareColumns = names
	tableResult.CompareColumnTypes = columnDataTypeList(columns)

	// 事实表水位前置校验，结果只记录不截断流程
	if t.cfg.CompareConfig.WatermarkColumn != "" && common.IsRestrictedTable(t.tableName) {
		watermark, err := t.CompareWatermark(t.cfg.CompareConfig.WatermarkColumn)
		if err != nil {
			return err
		}
		tableResult.Watermark = watermark
	}

	switch t.cfg.CompareConfig.CompareMode {
	case common.CompareModeQuick:
		sourceCheckSum, targetCheckSum, err := t.CompareCheckSum(names)
		if err != nil {
			return err
		}
		tableResult.SourceCheckSum = sourceCheckSum
		tableResult.TargetCheckSum = targetCheckSum
		tableResult.IsMatch = sourceCheckSum == targetCheckSum

		switch {
		case tableResult.IsMatch:
			tableResult.MatchPercent = matchPercent(tableResult.SourceRowCount, tableResult.TargetRowCount, 0)
		case t.cfg.CompareConfig.EnableDrillDown:
			drillDown, err := t.DrillDown(names, t.cfg.CompareConfig.DrillDownLimit)
			if err != nil {
				return err
			}
			tableResult.DrillDown = drillDown
			tableResult.MatchPercent = matchPercent(tableResult.SourceRowCount, tableResult.TargetRowCount,
				int64(len(drillDown.OnlySource)+len(drillDown.OnlyTarget)))
		default:
			// 未开启下钻只给二元结论，占比不估算
			tableResult.MatchPercent = common.TaskStatusNotEvaluated
		}

	case common.CompareModeStandard, common.CompareModeDeep:
		keyColumns, err := t.orderKeyColumns()
		if err != nil {
			return err
		}
		tableResult.OrderKeys = keyColumns

		sourceCheckSum, targetCheckSum, err := t.CompareCheckSum(names)
		if err != nil {
			return err
		}
		tableResult.SourceCheckSum = sourceCheckSum
		tableResult.TargetCheckSum = targetCheckSum

		// 指纹一致直接判定匹配，行级归并仅在不一致时运行
		if sourceCheckSum == targetCheckSum {
			tableResult.IsMatch = true
			tableResult.MatchPercent = matchPercent(tableResult.SourceRowCount, tableResult.TargetRowCount, 0)
			return nil
		}

		rowDiffs, stat, err := t.CompareRows(columns, keyColumns)
		if err != nil {
			return err
		}
		tableResult.RowDiffs = rowDiffs
		tableResult.RowDiffStat = stat
		tableResult.IsMatch = stat.Total() == 0
		tableResult.MatchPercent = matchPercent(tableResult.SourceRowCount, tableResult.TargetRowCount, stat.Total())
	}
	return nil
}

// 两端公共列，按源端列序
// 任一端非数字类型按字符语义对比，与目标端 ORDER BY 行为一致
func compareColumns(source, target TableInfo) []ColumnInfo {
	var sourceNames, targetNames []string
	targetCols := make(map[string]ColumnInfo)
	for _, c := range source.Columns {
		sourceNames = append(sourceNames, c.ColumnName)
	}
	for _, c := range target.Columns {
		targetNames = append(targetNames, c.ColumnName)
		targetCols[common.StringUPPER(c.ColumnName)] = c
	}

	inter := strset.New(common.FilterIntersectionStringItems(sourceNames, targetNames)...)

	var columns []ColumnInfo
	for _, c := range source.Columns {
		if !inter.Has(common.StringUPPER(c.ColumnName)) {
			continue
		}
		col := c
		tc := targetCols[common.StringUPPER(c.ColumnName)]
		if common.IsNumericDataType(col.DataType) && !common.IsNumericDataType(tc.DataType) {
			col.DataType = tc.DataType
		}
		columns = append(columns, col)
	}
	return columns
}

// 行级归并要求两端主键一致且非空
func (t *Task) orderKeyColumns() ([]string, error) {
	if len(t.sourceInfo.PrimaryKey) == 0 || len(t.targetInfo.PrimaryKey) == 0 {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_COMPARE,
			fmt.Errorf("table [%s] missing primary key, mode [%s] requires an order key on both sides",
				t.tableName, t.cfg.CompareConfig.CompareMode))
	}
	if len(t.sourceInfo.PrimaryKey) != len(t.targetInfo.PrimaryKey) {
		return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_COMPARE,
			fmt.Errorf("table [%s] primary key mismatched between source and target", t.tableName))
	}
	for i := range t.sourceInfo.PrimaryKey {
		if !strings.EqualFold(t.sourceInfo.PrimaryKey[i], t.targetInfo.PrimaryKey[i]) {
			return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_COMPARE,
				fmt.Errorf("table [%s] primary key mismatched between source and target", t.tableName))
		}
	}
	return t.sourceInfo.PrimaryKey, nil
}
