// Package transcript exports a conversation as a standalone HTML page using
// the same markup the browser widget produces.
package transcript

import (
	"html/template"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/zhouzirui/canyon-webchat/internal/model/chat"
	"github.com/zhouzirui/canyon-webchat/internal/render"
)

var page = template.Must(template.New("transcript").Funcs(template.FuncMap{
	"body": func(text string) template.HTML {
		return template.HTML(render.HTML(text))
	},
	"stamp": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="chat-messages">
{{- range .Messages}}
<div class="message {{.Sender}}" data-id="{{.ID}}" data-time="{{stamp .CreatedAt}}">{{body .Text}}</div>
{{- end}}
</div>
</body>
</html>
`))

// Title is the page title of every exported transcript.
const Title = "Canyon Concierge transcript"

// Write renders messages in order as one div.message.<sender> each.
func Write(w io.Writer, messages []chat.Message) error {
	err := page.Execute(w, struct {
		Title    string
		Messages []chat.Message
	}{Title: Title, Messages: messages})
	return errors.Wrap(err, "write transcript")
}
