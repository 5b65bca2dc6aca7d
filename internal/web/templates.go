package web

const layoutHTML = `{{define "head"}}<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.}} · timebox</title>
  <link rel="stylesheet" href="/static/app.css">
</head>
<body>
<nav>
  <a href="/">Today</a>
  <a href="/history">History</a>
</nav>
<main>
{{end}}
{{define "foot"}}</main>
</body>
</html>
{{end}}`

const indexHTML = `{{template "head" .Date}}
<h1>Timeboxing · {{.Date}}</h1>
{{if .Message}}<p class="flash">{{.Message}}</p>{{end}}
<p class="pager">
  <a href="/?date={{.Prev}}">&larr; {{.Prev}}</a>
  {{if ne .Date .Today}}<a href="/?date={{.Today}}">today</a>{{end}}
  <a href="/?date={{.Next}}">{{.Next}} &rarr;</a>
</p>
<form method="post" action="/">
  <label>Date <input type="date" name="date" value="{{.Date}}" required></label>
  <div class="notes">
    <label>Top priorities
      <textarea name="top_priorities" rows="6">{{.TopPriorities}}</textarea>
    </label>
    <label>Brain dump
      <textarea name="brain_dump" rows="6">{{.BrainDump}}</textarea>
    </label>
  </div>
  <datalist id="task-options">
  {{range .Options}}  <option value="{{.}}">
  {{end}}</datalist>
  <table class="schedule">
    <thead><tr><th>Time</th><th>Done</th><th>Task</th><th>Color</th></tr></thead>
    <tbody>
    {{range .Rows}}<tr>
      <td class="time">{{.Key}}&ndash;{{.End}}</td>
      <td><input type="checkbox" name="{{.Key}}_checked" aria-label="{{.Key}} done"{{if .Checked}} checked{{end}}></td>
      <td><input type="text" name="{{.Key}}" value="{{.Task}}" list="task-options" aria-label="{{.Key}} task"></td>
      <td><input type="color" name="{{.Key}}_color" value="{{.Color}}" aria-label="{{.Key}} color"></td>
    </tr>
    {{end}}</tbody>
  </table>
  <button type="submit">Save</button>
</form>
{{template "foot"}}`

const historyHTML = `{{template "head" "History"}}
<h1>History</h1>
{{if .Entries}}
<table class="history">
  <thead><tr><th>Date</th><th>Top priority</th><th>Slots</th><th>Done</th></tr></thead>
  <tbody>
  {{range .Entries}}<tr>
    <td><a href="/?date={{.Date}}">{{.Date}}</a></td>
    <td>{{.Summary}}</td>
    <td>{{.Filled}}</td>
    <td>{{.Done}}</td>
  </tr>
  {{end}}</tbody>
</table>
{{else}}
<p>No entries yet. <a href="/?date={{.Today}}">Start today</a>.</p>
{{end}}
{{template "foot"}}`

const appCSS = `body { font-family: system-ui, sans-serif; margin: 0 auto; max-width: 56rem; padding: 1rem; }
nav a { margin-right: 1rem; }
.flash { background: #e6f4ea; border: 1px solid #8bc59b; padding: .5rem; }
.pager a { margin-right: 1rem; }
.notes { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; margin: 1rem 0; }
textarea { width: 100%; box-sizing: border-box; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .25rem .5rem; text-align: left; }
td.time { font-variant-numeric: tabular-nums; white-space: nowrap; }
.schedule input[type=text] { width: 100%; box-sizing: border-box; }
button { margin-top: 1rem; padding: .5rem 1.5rem; }
`
