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
package common

import (
	"sort"
	"testing"
)

func TestFilterIntersectionStringItems(t *testing.T) {
	type args struct {
		originItems []string
		newItems    []string
	}
	tests := []struct {
		name string
		args args
		want []string
	}{
		{
			name: "common columns",
			args: args{originItems: []string{"id", "name", "email"}, newItems: []string{"ID", "NAME", "legacy_flag"}},
			want: []string{"ID", "NAME"},
		},
		{
			name: "no common",
			args: args{originItems: []string{"a"}, newItems: []string{"b"}},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterIntersectionStringItems(tt.args.originItems, tt.args.newItems)
			sort.Strings(got)
			sort.Strings(tt.want)
			if len(got) != len(tt.want) {
				t.Fatalf("FilterIntersectionStringItems() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("FilterIntersectionStringItems() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestIsContainString(t *testing.T) {
	if !IsContainString([]string{"QUICK", "STANDARD", "DEEP"}, "STANDARD") {
		t.Error("IsContainString() = false, want true")
	}
	if IsContainString([]string{"QUICK", "STANDARD", "DEEP"}, "FULLSCAN") {
		t.Error("IsContainString() = true, want false")
	}
}

func TestIsNumericDataType(t *testing.T) {
	tests := []struct {
		dataType string
		want     bool
	}{
		{dataType: "bigint", want: true},
		{dataType: "DECIMAL", want: true},
		{dataType: "double", want: true},
		{dataType: "varchar", want: false},
		{dataType: "datetime", want: false},
		{dataType: "char", want: false},
	}
	for _, tt := range tests {
		if got := IsNumericDataType(tt.dataType); got != tt.want {
			t.Errorf("IsNumericDataType(%s) = %v, want %v", tt.dataType, got, tt.want)
		}
	}
}

func TestIsRestrictedTable(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  bool
	}{
		{name: "fact table", table: "fact_sales", want: true},
		{name: "link table", table: "link_customer_order", want: true},
		{name: "lnk table", table: "LNK_ORDER_ITEM", want: true},
		{name: "dim table", table: "dim_customer", want: false},
		{name: "staging table", table: "stg_orders", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRestrictedTable(tt.table); got != tt.want {
				t.Errorf("IsRestrictedTable(%s) = %v, want %v", tt.table, got, tt.want)
			}
		})
	}
}

func BenchmarkSpecialLettersUsingMySQL(b *testing.B) {
	bs1 := make([]byte, 256)
	for i := 0; i < 256; i++ {
		bs1[i] = byte(i)
	}
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		SpecialLettersUsingMySQL(bs1)
	}
}
