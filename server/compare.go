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
	"github.com/marchwind/comparedb/database/meta"
	"github.com/marchwind/comparedb/database/mysql"
	msError "github.com/marchwind/comparedb/errors"
	"github.com/marchwind/comparedb/module/compare"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 数据校验流程，两端引擎对比并输出报告文件，可选写入运行历史
func ICompare(ctx context.Context, cfg *config.Config) error {
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

	if err = writeCompareReport(cfg, result); err != nil {
		return err
	}
	if err = writeCompareHistory(ctx, cfg, result); err != nil {
		return err
	}

	zap.L().Info("compare mode finished",
		zap.String("run id", result.RunID),
		zap.String("task status", result.TaskStatus),
		zap.String("cost", time.Now().Sub(startTime).String()))
	return nil
}

func newEnginePair(ctx context.Context, cfg *config.Config) (*mysql.MySQL, *mysql.MySQL, error) {
	source, err := mysql.NewMySQLDBEngine(ctx, cfg.SourceConfig)
	if err != nil {
		return nil, nil, msError.NewMSError(msError.COMPAREDB, msError.DOMAIN_DB,
			errors.Wrap(err, "source mysql engine init failed"))
	}
	target, err := mysql.NewMySQLDBEngine(ctx, cfg.TargetConfig)
	if err != nil {
		source.Close()
		return nil, nil, msError.NewMSError(msError.COMPAREDB, msError.DOMAIN_DB,
			errors.Wrap(err, "target mysql engine init failed"))
	}
	return source, target, nil
}

func writeCompareReport(cfg *config.Config, result *compare.Result) error {
	if err := common.PathExist(cfg.CompareConfig.FixSqlDir); err != nil {
		return err
	}

	reportFile := filepath.Join(cfg.CompareConfig.FixSqlDir,
		fmt.Sprintf("compare_%s.sql", cfg.SourceConfig.SchemaName))
	fw, err := compare.NewWriter(reportFile)
	if err != nil {
		return errors.Wrapf(err, "create compare report file [%s] failed", reportFile)
	}
	defer fw.Close()

	if _, err = fw.CWriteFile(compare.ReportSummary(result)); err != nil {
		return err
	}
	for i := range result.TableResults {
		if s := compare.ReportTableStruct(&result.TableResults[i]); s != "" {
			if _, err = fw.CWriteFile(s); err != nil {
				return err
			}
		}
		if s := compare.ReportTableData(&result.TableResults[i]); s != "" {
			if _, err = fw.CWriteFile(s); err != nil {
				return err
			}
		}
	}

	zap.L().Info("compare report generated", zap.String("report file", reportFile))
	return nil
}

// 运行历史落库，结果一次写入，运行过程不回读
func writeCompareHistory(ctx context.Context, cfg *config.Config, result *compare.Result) error {
	if !cfg.MetaConfig.Enable {
		return nil
	}

	metaDB, err := meta.NewMetaDBEngine(ctx, cfg.MetaConfig, cfg.AppConfig.SlowlogThreshold)
	if err != nil {
		return err
	}
	if err = metaDB.MigrateTables(); err != nil {
		return err
	}

	var histories []meta.CompareHistory
	for _, tr := range result.TableResults {
		isMatch := "N"
		if tr.IsMatch {
			isMatch = "Y"
		}
		histories = append(histories, meta.CompareHistory{
			RunID:       result.RunID,
			SchemaNameS: result.SchemaNameS,
			SchemaNameT: result.SchemaNameT,
			TableName:   tr.TableName,
			CompareMode: tr.CompareMode,
			TaskStatus:  tr.TaskStatus,
			IsMatch:     isMatch,
			Detail:      tr.String(),
		})
	}
	histModel := meta.NewCompareHistoryModel(metaDB)
	if err = histModel.BatchCreateCompareHistory(ctx, histories, common.DefaultSQLBatchRows); err != nil {
		return err
	}

	// 落库后按明细 JSON 回读概要，日志输出运行回顾
	summaries, err := histModel.ListCompareHistorySummary(ctx, result.RunID)
	if err != nil {
		return err
	}
	for _, s := range summaries {
		zap.L().Info("compare history summary",
			zap.String("run id", s.RunID),
			zap.String("table", s.TableName),
			zap.String("task status", s.TaskStatus),
			zap.String("is match", s.IsMatch),
			zap.Int64("source rows", s.SourceRowCount),
			zap.Int64("target rows", s.TargetRowCount),
			zap.String("match percent", s.MatchPercent))
	}

	zap.L().Info("compare history recorded",
		zap.String("run id", result.RunID),
		zap.Int("tables", len(histories)))
	return nil
}
