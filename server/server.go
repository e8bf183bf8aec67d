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
	"strings"

	"github.com/marchwind/comparedb/common"
	"github.com/marchwind/comparedb/config"
)

// 程序运行
func Run(ctx context.Context, cfg *config.Config) error {
	switch strings.ToUpper(strings.TrimSpace(cfg.TaskMode)) {
	case common.TaskModeCompare:
		// 数据校验 - 以源端为准
		err := ICompare(ctx, cfg)
		if err != nil {
			return err
		}
	case common.TaskModeSync:
		// 数据校验 + 目标端修复脚本生成
		err := ISync(ctx, cfg)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("flag [mode] can not null or value configure error")
	}
	return nil
}
