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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func TestParseCompareHistoryDetail(t *testing.T) {
	detail := `{"table_name":"dim_users","compare_mode":"STANDARD","task_status":"COMPLETED","is_match":false,` +
		`"source_row_count":8,"target_row_count":7,"source_checksum":1,"target_checksum":2,"match_percent":"62.50%","cost":"1s"}`

	var p fastjson.Parser
	summary := CompareHistorySummary{RunID: "run-1", TableName: "dim_users"}
	require.NoError(t, parseCompareHistoryDetail(&p, detail, &summary))
	require.Equal(t, int64(8), summary.SourceRowCount)
	require.Equal(t, int64(7), summary.TargetRowCount)
	require.Equal(t, "62.50%", summary.MatchPercent)
}

func TestParseCompareHistoryDetailEmpty(t *testing.T) {
	var p fastjson.Parser
	summary := CompareHistorySummary{RunID: "run-1"}
	require.NoError(t, parseCompareHistoryDetail(&p, "", &summary))
	require.Equal(t, int64(0), summary.SourceRowCount)
	require.Equal(t, "", summary.MatchPercent)
}

func TestParseCompareHistoryDetailInvalid(t *testing.T) {
	var p fastjson.Parser
	summary := CompareHistorySummary{}
	require.Error(t, parseCompareHistoryDetail(&p, "{not json", &summary))
}
