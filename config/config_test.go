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
package config

import (
	"testing"

	"github.com/marchwind/comparedb/common"
	"github.com/stretchr/testify/require"
)

func TestAdjustConfigDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.AdjustConfig())
	require.Equal(t, common.CompareModeQuick, cfg.CompareConfig.CompareMode)
	require.Equal(t, common.DefaultChunkSize, cfg.CompareConfig.ChunkSize)
	require.Equal(t, common.DefaultDiffThreads, cfg.CompareConfig.DiffThreads)
	require.Equal(t, common.DefaultDrillDownLimit, cfg.CompareConfig.DrillDownLimit)
	require.Equal(t, common.DefaultRowSampleLimit, cfg.CompareConfig.RowSampleLimit)
	require.False(t, cfg.CompareConfig.EnableDrillDown)
}

func TestAdjustConfigModeNormalized(t *testing.T) {
	cfg := &Config{}
	cfg.CompareConfig.CompareMode = "standard"
	require.NoError(t, cfg.AdjustConfig())
	require.Equal(t, common.CompareModeStandard, cfg.CompareConfig.CompareMode)
}

func TestAdjustConfigInvalidMode(t *testing.T) {
	cfg := &Config{}
	cfg.CompareConfig.CompareMode = "FULLSCAN"
	err := cfg.AdjustConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "isn't support")
}

func TestAdjustConfigNegativeChunkSize(t *testing.T) {
	cfg := &Config{}
	cfg.CompareConfig.ChunkSize = -5
	err := cfg.AdjustConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "chunk-size")
}

// 口令字段不落入配置日志输出
func TestConfigStringMasksPassword(t *testing.T) {
	cfg := &Config{}
	cfg.SourceConfig.Password = "super-secret"
	cfg.MetaConfig.Password = "meta-secret"
	require.NotContains(t, cfg.String(), "super-secret")
	require.NotContains(t, cfg.String(), "meta-secret")
}
