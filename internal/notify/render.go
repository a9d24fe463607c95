package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"

	"approvalflow/internal/model"
)

const documentTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.ID}}</title></head>
<body>
<h1>{{.FormType}} {{.ID}}</h1>
<table>
<tr><th>Requester</th><td>{{.RequesterName}} &lt;{{.RequesterEmail}}&gt;</td></tr>
<tr><th>Department</th><td>{{.Department}}{{if .SubDepartment}} / {{.SubDepartment}}{{end}}</td></tr>
<tr><th>Submitted</th><td>{{.SubmittedAt.Format "2006-01-02 15:04:05"}}</td></tr>
<tr><th>Status</th><td>{{.Status}}</td></tr>
</table>
<h2>Details</h2>
<pre>{{.Details}}</pre>
{{if .ITReviewDetails}}<h2>IT review</h2>
<pre>{{.ITReviewDetails}}</pre>
{{end}}<h2>History</h2>
<ol>
{{range .History}}<li>{{.Timestamp.Format "2006-01-02 15:04:05"}} {{.Action}} by {{.ApproverEmail}}{{if .Notes}}: {{.Notes}}{{end}}</li>
{{end}}</ol>
</body>
</html>
`

var htmlDocument = template.Must(template.New("document").Parse(documentTemplate))

// HTMLRenderer renders an approved request as a standalone HTML page.
type HTMLRenderer struct{}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

type documentView struct {
	*model.Request
	Details         string
	ITReviewDetails string
}

func (HTMLRenderer) Render(_ context.Context, req *model.Request) (Document, error) {
	view := documentView{
		Request:         req,
		Details:         indentJSON(req.Details),
		ITReviewDetails: indentJSON(req.ITReviewDetails),
	}
	if view.ITReviewDetails == model.EmptyDocument {
		view.ITReviewDetails = ""
	}

	var buf bytes.Buffer
	if err := htmlDocument.Execute(&buf, view); err != nil {
		return Document{}, err
	}
	return Document{Name: req.ID + ".html", ContentType: "text/html; charset=utf-8", Body: buf.Bytes()}, nil
}

// indentJSON pretty-prints doc; documents that are not valid JSON are shown as is.
func indentJSON(doc string) string {
	if doc == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(doc), "", "  "); err != nil {
		return doc
	}
	return buf.String()
}
