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
package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/config"
	"github.com/marchwind/comparedb/module/compare"
	"github.com/marchwind/comparedb/module/sync"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 数据校验 + 修复脚本生成流程，脚本以源端为准修目标端
func ISync(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()

	source, target, err := newEnginePair(ctx, cfg)
	if err != nil {
		return err
	}
	defer source.Close()
	defer target.Close()

	result, err := compare.Run(ctx, cfg, source, target)
	if err != nil {
		return err
	}

	if err = writeSyncFixSQL(cfg, result); err != nil {
		return err
	}
	if err = writeCompareHistory(ctx, cfg, result); err != nil {
		return err
	}

	zap.L().Info("sync mode finished",
		zap.String("run id", result.RunID),
		zap.String("task status", result.TaskStatus),
		zap.String("cost", time.Now().Sub(startTime).String()))
	return nil
}

func writeSyncFixSQL(cfg *config.Config, result *compare.Result) error {
	if err := common.PathExist(cfg.CompareConfig.FixSqlDir); err != nil {
		return err
	}

	fixFile := filepath.Join(cfg.CompareConfig.FixSqlDir,
		fmt.Sprintf("sync_%s.sql", cfg.TargetConfig.SchemaName))
	fw, err := compare.NewWriter(fixFile)
	if err != nil {
		return errors.Wrapf(err, "create sync fix sql file [%s] failed", fixFile)
	}
	defer fw.Close()

	if _, err = fw.CWriteFile(compare.ReportSummary(result)); err != nil {
		return err
	}

	for i := range result.TableResults {
		tableResult := &result.TableResults[i]
		if tableResult.TaskStatus != common.TaskStatusCompleted {
			continue
		}

		generator := sync.NewTableSyncGenerator(cfg.TargetConfig.SchemaName, tableResult.TableName, common.DefaultSQLBatchRows)

		if len(tableResult.ColumnDiffs) > 0 {
			if _, err = fw.CWriteFile(compare.ReportTableStruct(tableResult)); err != nil {
				return err
			}
			for _, s := range generator.GenStructFixSQL(tableResult.ColumnDiffs) {
				if _, err = fw.CWriteFile(s + "\n"); err != nil {
					return err
				}
			}
		}

		if len(tableResult.RowDiffs) > 0 {
			if _, err = fw.CWriteFile(compare.ReportTableData(tableResult)); err != nil {
				return err
			}
			dataSQLs, err := generator.GenDataFixSQL(tableResult.CompareColumns, tableResult.CompareColumnTypes, tableResult.OrderKeys, tableResult.RowDiffs)
			if err != nil {
				return err
			}
			for _, s := range dataSQLs {
				if _, err = fw.CWriteFile(s + "\n"); err != nil {
					return err
				}
			}
		}
	}

	zap.L().Info("sync fix sql generated", zap.String("fix sql file", fixFile))
	return nil
}
