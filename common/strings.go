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
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unsafe"

	"github.com/scylladb/go-set"
	"github.com/scylladb/go-set/strset"
)

// 数组中是否包含某元素
func IsContainString(items []string, item string) bool {
	for _, eachItem := range items {
		if eachItem == item {
			return true
		}
	}
	return false
}

// 过滤两个数组相同元素（交集），返回新数组
func FilterIntersectionStringItems(originItems, newItems []string) []string {
	s1 := set.NewStringSet()
	for _, t := range originItems {
		s1.Add(strings.ToUpper(t))
	}
	s2 := set.NewStringSet()
	for _, t := range newItems {
		s2.Add(strings.ToUpper(t))
	}
	return strset.Intersection(s1, s2).List()
}

func StrconvIntBitSize(s string, bitSize int) (int64, error) {
	i, err := strconv.ParseInt(s, 10, bitSize)
	if err != nil {
		return i, err
	}
	return i, nil
}

func StrconvUintBitSize(s string, bitSize int) (uint64, error) {
	i, err := strconv.ParseUint(s, 10, bitSize)
	if err != nil {
		return i, err
	}
	return i, nil
}

func StrconvFloatBitSize(s string, bitSize int) (float64, error) {
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return f, err
	}
	return f, nil
}

// 高效字符串拼接
func StringsBuilder(str ...string) string {
	var b strings.Builder
	for _, p := range str {
		b.WriteString(p)
	}
	return b.String()
}

func StringUPPER(str string) string {
	return strings.ToUpper(str)
}

// 数组拼接转字符串，带前后缀
func StringJOIN(strs []string, strPrefix, strSuffix, joinS string) string {
	var sb strings.Builder
	for i, s := range strs {
		if i > 0 {
			sb.WriteString(joinS)
		}
		sb.WriteString(strPrefix)
		sb.WriteString(s)
		sb.WriteString(strSuffix)
	}
	return sb.String()
}

// 如果存在特殊字符，直接在特殊字符前添加\
func SpecialLettersUsingMySQL(bs []byte) string {
	var b strings.Builder

	for _, r := range bytes.Runes(bs) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			// mysql/tidb % 字符, /% 代表 /%，% 代表 % ,无需转义
			// mysql/tidb _ 字符, /_ 代表 /_，_ 代表 _ ,无需转义
			if r == '%' || r == '_' {
				b.WriteRune(r)
			} else {
				b.WriteRune('\\')
				b.WriteRune(r)
			}
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func BytesToString(b []byte) string {
	return *(*string)(unsafe.Pointer(&b))
}

// 判断文件夹是否存在，不存在则创建
func PathExist(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if os.IsNotExist(err) {
		err = os.MkdirAll(path, os.ModePerm)
		if err != nil {
			return fmt.Errorf("file dir MkdirAll failed: %v", err)
		}
	}
	return err
}
