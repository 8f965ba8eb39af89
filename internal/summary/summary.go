// Package summary renders the initial summary document of a topic.
package summary

import (
	"bytes"
	"text/template"

	"github.com/rpggio/topics/internal/domain/topic"
)

var initial = template.Must(template.New("summary").Parse(`# {{.Title}}

## 基本信息
- 类型: {{.Type}}
- 状态: 进行中
- 当前轮次: 0/{{.MaxRounds}}

## 当前结论
（尚未开始讨论）

## 未决分歧
（无）

## 关键证据与上下文
（待收集）

## 已确认的决策
（无）
`))

type fields struct {
	Title     string
	Type      topic.Type
	MaxRounds int
}

// Render returns the summary.md content written when a topic is created.
func Render(title string, topicType topic.Type, maxRounds int) string {
	var buf bytes.Buffer
	// Executing a parsed template into a buffer only fails on template bugs.
	_ = initial.Execute(&buf, fields{Title: title, Type: topicType, MaxRounds: maxRounds})
	return buf.String()
}
