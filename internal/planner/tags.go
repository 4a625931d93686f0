// Package planner implements the scenario segmentation and timeline planning
// engine: inline tag extraction, tag-to-settings mapping, per-scene segment
// planning, prompt compilation and plan assembly.
package planner

import (
	"regexp"
	"strings"

	"storyboard-ai/internal/types"
)

// 非贪婪方括号匹配，嵌套或未闭合的括号不产生标签，原样留在文本里。
// 剧本可能出自人手或上游 LLM，任何杂散括号都不允许让解析失败。
var inlineTagPattern = regexp.MustCompile(`\[(\w+):\s*([^\]]+)\]`)

// ExtractTags 从左到右扫描剧本文本，产出互不重叠的内联标签。
// 每次调用构造独立的匹配过程，无跨调用状态。
func ExtractTags(text string) []types.InlineTag {
	matches := inlineTagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]types.InlineTag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, types.InlineTag{
			Type:   strings.ToLower(text[m[2]:m[3]]),
			Value:  strings.TrimSpace(text[m[4]:m[5]]),
			Offset: m[0],
		})
	}
	return tags
}

// StripTags 去掉文本中的内联标签并压缩多余空白，
// 供场景解析与提示词推断使用纯叙事文本。
func StripTags(text string) string {
	stripped := inlineTagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(stripped), " ")
}

var lineSpaceRuns = regexp.MustCompile(`[ \t]{2,}`)

// StripTagsKeepLayout 去标签但保留换行结构，供按段落分场景的解析器使用
func StripTagsKeepLayout(text string) string {
	stripped := inlineTagPattern.ReplaceAllString(text, "")
	lines := strings.Split(stripped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(lineSpaceRuns.ReplaceAllString(line, " "), " \t")
	}
	return strings.Join(lines, "\n")
}
