package dashboard

import (
	"html/template"
	"io"
	"time"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
{{- if .Refresh}}
<meta http-equiv="refresh" content="{{.Refresh}}">
{{- end}}
<title>alertR Mobile Manager</title>
<style>
body { font-family: sans-serif; }
td { padding: 2px 6px; }
.normalTd { background-color: #9ae69a; }
.failTd { background-color: #f07575; }
.triggeredTd { background-color: #ffd966; }
.errorTd { background-color: #d99ad9; }
.neutralTd { background-color: #e6e6e6; }
.boxEntryTd { background-color: #c9d8ea; font-weight: bold; }
.banner { color: #b00; font-weight: bold; }
</style>
</head>
<body>
<div>
{{- range .Views}} <a href="?view={{.}}">{{.}}</a>{{end}}
</div>
<table><tr>
{{- range .Page.Status}}<td class="{{.Class}}">{{.Text}}</td>{{end -}}
</tr></table>
{{- if .Page.Banner}}
<p class="banner">{{.Page.Banner}}</p>
{{- end}}
{{- if .Actions}}
<div>
{{- if .Page.AlertSystemActive}}
<a href="?view={{.Page.View}}&amp;activate=0">deactivate alert system</a>
{{- else}}
<a href="?view={{.Page.View}}&amp;activate=1">activate alert system</a>
{{- end}}
{{- range .Page.Profiles}}
{{- if ne .ProfileID $.Page.ActiveProfile}} <a href="?view={{$.Page.View}}&amp;profilechange={{.ProfileID}}">{{.Name}}</a>{{end}}
{{- end}}
</div>
{{- end}}
{{- range .Page.Tables}}
<h3>{{.Title}}</h3>
<table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr>{{range .}}<td class="{{.Class}}">{{.Text}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
</body>
</html>
`

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// HTMLEncoder 服务端渲染的网页版
type HTMLEncoder struct {
	// Refresh 页面自动刷新间隔, 0 不刷新
	Refresh time.Duration
	// Actions 显示激活/切换 profile 链接
	Actions bool
}

// Encode 写出完整的 HTML 页面
func (e HTMLEncoder) Encode(w io.Writer, p Page) error {
	refresh := 0
	if e.Refresh > 0 {
		refresh = int(e.Refresh / time.Second)
	}
	return pageTmpl.Execute(w, struct {
		Page    Page
		Views   []View
		Refresh int
		Actions bool
	}{Page: p, Views: Views, Refresh: refresh, Actions: e.Actions})
}
