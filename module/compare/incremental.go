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
	"time"

	"github.com/marchwind/comparedb/database/mysql"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 两端水位列最大值前置校验，仅比较不截断后续对比流程
// 两端均空表视为同步
func (t *Task) CompareWatermark(watermarkColumn string) (*WatermarkResult, error) {
	startTime := time.Now()

	var (
		sourceMax string
		targetMax string
	)

	g := &errgroup.Group{}
	g.Go(func() error {
		watermark, err := t.source.GetMySQLTableMaxWatermark(t.sourceInfo.SchemaName, t.tableName, watermarkColumn)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		sourceMax = watermark
		return nil
	})
	g.Go(func() error {
		watermark, err := t.target.GetMySQLTableMaxWatermark(t.targetInfo.SchemaName, t.tableName, watermarkColumn)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		targetMax = watermark
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	wr := &WatermarkResult{
		WatermarkColumn: watermarkColumn,
		SourceMax:       sourceMax,
		TargetMax:       targetMax,
		InSync:          sourceMax == targetMax,
	}

	zap.L().Info("compare table watermark finished",
		zap.String("table", t.tableName),
		zap.String("watermark column", watermarkColumn),
		zap.String("source max", sourceMax),
		zap.String("target max", targetMax),
		zap.Bool("in sync", wr.InSync),
		zap.String("cost", time.Now().Sub(startTime).String()))

	return wr, nil
}
