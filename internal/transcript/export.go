// ABOUTME: Renders the session message log as a standalone HTML transcript.
// ABOUTME: Agent replies are markdown-converted; user text is escaped verbatim.

package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"

	"github.com/sunspira/spira/internal/session"
)

var pageTmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.entry { margin: 1rem 0; padding: 0.5rem 1rem; border-radius: 0.5rem; }
.USER { background: #e8f0fe; }
.AGENT { background: #f1f3f4; }
.meta { font-size: 0.75rem; color: #666; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Entries}}
<div class="entry {{.Origin}}">
<div class="meta">{{.Origin}} &middot; {{.CreatedAt}}</div>
<div>{{.Body}}</div>
</div>
{{end}}
</body>
</html>
`))

type entry struct {
	Origin    session.Origin
	Body      template.HTML
	CreatedAt string
}

type page struct {
	Title   string
	Entries []entry
}

// Export writes messages to w as a self-contained HTML page. Agent
// content is treated as markdown; user content is escaped as-is.
func Export(w io.Writer, title string, messages []session.Message) error {
	entries := make([]entry, 0, len(messages))
	for _, msg := range messages {
		var body template.HTML
		if msg.Origin == session.OriginAgent {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(msg.Content), &buf); err != nil {
				return fmt.Errorf("rendering message %s: %w", msg.ID, err)
			}
			body = template.HTML(buf.String())
		} else {
			body = template.HTML(template.HTMLEscapeString(msg.Content))
		}
		entries = append(entries, entry{
			Origin:    msg.Origin,
			Body:      body,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		})
	}

	if err := pageTmpl.Execute(w, page{Title: title, Entries: entries}); err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}
	return nil
}
