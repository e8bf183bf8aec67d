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
	"sort"
	"time"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/database/mysql"
	"github.com/scylladb/go-set/strset"
	"github.com/xxjwxc/gowp/workpool"
	"go.uber.org/zap"
)

// 两端全行值集合差集下钻，差异行样本按上限截断
// 源/目标分属两个实例，差集在内存完成
func (t *Task) DrillDown(columns []string, limit int) (*DrillDownResult, error) {
	startTime := time.Now()

	querySQL := common.StringsBuilder("SELECT ",
		common.StringJOIN(columns, "`", "`", ","),
		" FROM `", t.sourceInfo.SchemaName, "`.`", t.tableName, "`")
	targetSQL := common.StringsBuilder("SELECT ",
		common.StringJOIN(columns, "`", "`", ","),
		" FROM `", t.targetInfo.SchemaName, "`.`", t.tableName, "`")

	var (
		sourceSet *strset.Set
		targetSet *strset.Set
	)

	wp := workpool.New(t.cfg.CompareConfig.DiffThreads)
	wp.Do(func() error {
		_, rowSet, err := t.source.GetMySQLDataRowStrings(querySQL)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		sourceSet = rowSet
		return nil
	})
	wp.Do(func() error {
		_, rowSet, err := t.target.GetMySQLDataRowStrings(targetSQL)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		targetSet = rowSet
		return nil
	})
	if err := wp.Wait(); err != nil {
		return nil, err
	}

	// strset List 无序，排序保证结果以及生成脚本字节级可重现
	onlySource := strset.Difference(sourceSet, targetSet).List()
	onlyTarget := strset.Difference(targetSet, sourceSet).List()
	sort.Strings(onlySource)
	sort.Strings(onlyTarget)

	dr := &DrillDownResult{
		Limit: limit,
	}
	if len(onlySource) > limit || len(onlyTarget) > limit {
		dr.IsTruncated = true
	}
	if len(onlySource) > limit {
		onlySource = onlySource[:limit]
	}
	if len(onlyTarget) > limit {
		onlyTarget = onlyTarget[:limit]
	}
	dr.OnlySource = onlySource
	dr.OnlyTarget = onlyTarget

	zap.L().Info("compare table drill down finished",
		zap.String("table", t.tableName),
		zap.Int("only source", len(dr.OnlySource)),
		zap.Int("only target", len(dr.OnlyTarget)),
		zap.Bool("is truncated", dr.IsTruncated),
		zap.String("cost", time.Now().Sub(startTime).String()))

	return dr, nil
}
