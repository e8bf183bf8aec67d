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
package meta

import (
	"context"
	"fmt"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/errors"
	"github.com/valyala/fastjson"
	"gorm.io/gorm"
)

// 数据对比运行历史表，结果一次写入不回读不修改
type CompareHistory struct {
	ID          uint   `gorm:"primary_key;autoIncrement;comment:'自增编号'" json:"id"`
	RunID       string `gorm:"type:varchar(64);not null;index:idx_run_table,unique;comment:'运行标识'" json:"run_id"`
	SchemaNameS string `gorm:"not null;comment:'源端 schema'" json:"schema_name_s"`
	SchemaNameT string `gorm:"not null;comment:'目标端 schema'" json:"schema_name_t"`
	TableName   string `gorm:"not null;index:idx_run_table,unique;comment:'表名'" json:"table_name"`
	CompareMode string `gorm:"type:varchar(15);not null;comment:'对比模式'" json:"compare_mode"`
	TaskStatus  string `gorm:"type:varchar(20);not null;comment:'表任务状态'" json:"task_status"`
	IsMatch     string `gorm:"type:char(1);comment:'数据是否一致 Y/N'" json:"is_match"`
	Detail      string `gorm:"type:longtext;comment:'对比结果明细 JSON'" json:"detail"`
	*BaseModel
}

func NewCompareHistoryModel(m *Meta) *CompareHistory {
	return &CompareHistory{
		BaseModel: &BaseModel{
			Meta: m,
		},
	}
}

func (rw *CompareHistory) ParseSchemaTable() (string, error) {
	stmt := &gorm.Statement{DB: rw.GormDB}
	err := stmt.Parse(rw)
	if err != nil {
		return "", fmt.Errorf("parse struct [CompareHistory] get table_name failed: %v", err)
	}
	return stmt.Schema.Table, nil
}

func (rw *CompareHistory) BatchCreateCompareHistory(ctx context.Context, createS []CompareHistory, batchSize int) error {
	table, err := rw.ParseSchemaTable()
	if err != nil {
		return err
	}
	if err = rw.DB(ctx).CreateInBatches(createS, batchSize).Error; err != nil {
		return errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_DB, fmt.Errorf("batch create table [%s] record failed: %v", table, err))
	}
	return nil
}

func (rw *CompareHistory) DetailCompareHistory(ctx context.Context, detailS *CompareHistory) ([]CompareHistory, error) {
	var dsHists []CompareHistory
	table, err := rw.ParseSchemaTable()
	if err != nil {
		return dsHists, err
	}
	if err = rw.DB(ctx).Where("run_id = ?", detailS.RunID).Find(&dsHists).Error; err != nil {
		return dsHists, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_DB, fmt.Errorf("detail table [%s] record failed: %v", table, err))
	}
	return dsHists, nil
}

// 历史汇总行，从明细 JSON 提取概要字段
type CompareHistorySummary struct {
	RunID          string `json:"run_id"`
	TableName      string `json:"table_name"`
	TaskStatus     string `json:"task_status"`
	IsMatch        string `json:"is_match"`
	SourceRowCount int64  `json:"source_row_count"`
	TargetRowCount int64  `json:"target_row_count"`
	MatchPercent   string `json:"match_percent"`
}

func (rw *CompareHistory) ListCompareHistorySummary(ctx context.Context, runID string) ([]CompareHistorySummary, error) {
	dsHists, err := rw.DetailCompareHistory(ctx, &CompareHistory{RunID: runID})
	if err != nil {
		return nil, err
	}

	var (
		p         fastjson.Parser
		summaries []CompareHistorySummary
	)
	for _, h := range dsHists {
		summary := CompareHistorySummary{
			RunID:      h.RunID,
			TableName:  h.TableName,
			TaskStatus: h.TaskStatus,
			IsMatch:    h.IsMatch,
		}
		if err = parseCompareHistoryDetail(&p, h.Detail, &summary); err != nil {
			return nil, errors.NewMSError(errors.COMPAREDB, errors.DOMAIN_DB, fmt.Errorf("parse compare history [%s.%s] detail failed: %v", h.RunID, h.TableName, err))
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// 明细 JSON 只取概要字段，避免整体反序列化
func parseCompareHistoryDetail(p *fastjson.Parser, detail string, summary *CompareHistorySummary) error {
	if detail == "" {
		return nil
	}
	v, err := p.Parse(detail)
	if err != nil {
		return err
	}
	summary.SourceRowCount = v.GetInt64("source_row_count")
	summary.TargetRowCount = v.GetInt64("target_row_count")
	summary.MatchPercent = common.BytesToString(v.GetStringBytes("match_percent"))
	return nil
}
