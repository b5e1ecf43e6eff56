package notes

const defaultTemplate = `{{ if .IsPatch }}##{{ else }}#{{ end }} {{ if .CompareURL }}[{{ .Version }}]({{ .CompareURL }}){{ else }}{{ .Version }}{{ end }} ({{ .Date }})
{{- range .Sections }}

### {{ .Title }}
{{ range .Entries }}
* {{ if .Scope }}**{{ .Scope }}:** {{ end }}{{ .Text }}{{ if .Hash }} ({{ if .URL }}[{{ .Hash }}]({{ .URL }}){{ else }}{{ .Hash }}{{ end }}){{ end }}
{{- end }}
{{- end }}
`
