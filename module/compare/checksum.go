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

// 两端并行表级聚合指纹，顺序无关，空表恒 0
func (t *Task) CompareCheckSum(columns []string) (uint64, uint64, error) {
	startTime := time.Now()

	var (
		sourceCheckSum uint64
		targetCheckSum uint64
	)

	g := &errgroup.Group{}
	g.Go(func() error {
		checkSum, err := t.source.GetMySQLTableCheckSum(t.sourceInfo.SchemaName, t.tableName, columns)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		sourceCheckSum = checkSum
		return nil
	})
	g.Go(func() error {
		checkSum, err := t.target.GetMySQLTableCheckSum(t.targetInfo.SchemaName, t.tableName, columns)
		if err != nil {
			return mysql.ClassifyQueryError(err)
		}
		targetCheckSum = checkSum
		return nil
	})
	if err := g.Wait(); err != nil {
		return sourceCheckSum, targetCheckSum, err
	}

	zap.L().Info("compare table checksum finished",
		zap.String("table", t.tableName),
		zap.Uint64("source checksum", sourceCheckSum),
		zap.Uint64("target checksum", targetCheckSum),
		zap.String("cost", time.Now().Sub(startTime).String()))

	return sourceCheckSum, targetCheckSum, nil
}
