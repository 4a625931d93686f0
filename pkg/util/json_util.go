package util

import (
	"regexp"
	"strings"
)

var jsonCodeBlock = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText 从 LLM 回复中抠出 JSON：优先取 markdown 代码块，
// 否则取首个 '{' 或 '[' 到最后一个 '}' 或 ']' 的最大跨度。
// 找不到就原样返回，让上层的 Unmarshal 去报错。
func ExtractJsonFromText(text string) string {
	if matches := jsonCodeBlock.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := strings.IndexAny(text, "{[")
	if start == -1 {
		return text
	}

	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")
	end := endObj
	if endArr > end {
		end = endArr
	}
	if end > start {
		return text[start : end+1]
	}
	return text
}
