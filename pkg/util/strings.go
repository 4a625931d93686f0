package util

import (
	"math/rand"
	"unicode/utf8"
)

const upperLowerNumChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandStringWithUpperLowerNum 生成指定长度的大小写字母加数字随机串
func GenerateRandStringWithUpperLowerNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = upperLowerNumChars[rand.Intn(len(upperLowerNumChars))]
	}
	return string(b)
}

// TruncateUTF8 按字节预算截断，不在多字节字符中间下刀。
// 结果不超过 n 字节，必要时回退到最近的字符边界。
func TruncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
