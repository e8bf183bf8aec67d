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
package errors

import "github.com/marchwind/comparedb/common"

type (
	MSErrorType   string
	MSErrorDomain string
)

// program error type
const (
	COMPAREDB MSErrorType = "COMPAREDB"
)

// program error domain
const (
	DOMAIN_CONFIG MSErrorDomain = common.TaskTypeConfig
	DOMAIN_DB     MSErrorDomain = common.TaskTypeDatabase

	DOMAIN_SELECTION MSErrorDomain = common.TaskTypeSelection
	DOMAIN_METADATA  MSErrorDomain = common.TaskTypeMetadata
	DOMAIN_COMPARE   MSErrorDomain = common.TaskTypeDataCompare
	DOMAIN_TIMEOUT   MSErrorDomain = common.TaskTypeTimeout
	DOMAIN_GENERATE  MSErrorDomain = common.TaskTypeSyncGenerate
)

func (t MSErrorType) Explain() string {
	return explainMSErrorType[t]
}

func (d MSErrorDomain) Explain() string {
	return explainMSErrorDomain[d]
}

var explainMSErrorType = map[MSErrorType]string{
	COMPAREDB: "COMPAREDB",
}

var explainMSErrorDomain = map[MSErrorDomain]string{
	DOMAIN_CONFIG:    common.TaskTypeConfig,
	DOMAIN_DB:        common.TaskTypeDatabase,
	DOMAIN_SELECTION: common.TaskTypeSelection,
	DOMAIN_METADATA:  common.TaskTypeMetadata,
	DOMAIN_COMPARE:   common.TaskTypeDataCompare,
	DOMAIN_TIMEOUT:   common.TaskTypeTimeout,
	DOMAIN_GENERATE:  common.TaskTypeSyncGenerate,
}
