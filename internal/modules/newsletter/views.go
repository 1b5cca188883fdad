package newsletter

import "html/template"

const layoutTpl = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}} | {{.SiteName}}</title>
</head>
<body style="font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;max-width:560px;margin:40px auto;padding:0 16px">
  <h1>{{.Title}}</h1>
  {{range .Messages}}<p class="message" style="background:#eef6ff;padding:8px 12px;border-radius:4px">{{.}}</p>{{end}}
{{end}}
{{define "foot"}}
</body>
</html>{{end}}`

const formTpl = `{{template "head" .}}
  <form method="post" action="{{.ActionURL}}">
    <p>
      <label for="email">Email</label><br />
      <input type="email" id="email" name="email" value="{{.Email}}" maxlength="254" required />
      {{with index .Errors "email"}}<br /><span class="error" style="color:#b91c1c">{{.}}</span>{{end}}
    </p>
    <p>
      <label><input type="radio" name="action" value="subscribe" {{if ne .Action "unsubscribe"}}checked{{end}} /> Subscribe</label>
      <label><input type="radio" name="action" value="unsubscribe" {{if eq .Action "unsubscribe"}}checked{{end}} /> Unsubscribe</label>
      {{with index .Errors "action"}}<br /><span class="error" style="color:#b91c1c">{{.}}</span>{{end}}
    </p>
    <button type="submit">Submit</button>
  </form>
{{template "foot" .}}`

const subscribeTpl = `{{template "head" .}}
  <p>Subscribed as <strong>{{.Email}}</strong>.</p>
  <form method="post" action="{{.ActionURL}}">
    {{range .Fields}}
    <p>
      <label for="{{.Name}}">{{.Label}}</label><br />
      <input type="text" id="{{.Name}}" name="{{.Name}}" value="{{.Value}}" />
      {{with .Error}}<br /><span class="error" style="color:#b91c1c">{{.}}</span>{{end}}
    </p>
    {{end}}
    <button type="submit">Save</button>
  </form>
  <p><a href="{{.FormURL}}">Manage your subscription</a></p>
{{template "foot" .}}`

const errorTpl = `{{template "head" .}}
  <p class="error">{{.Error}}</p>
  <p><a href="{{.FormURL}}">Back to the newsletter</a></p>
{{template "foot" .}}`

// Page is the data shared by every template.
type Page struct {
	Title    string
	SiteName string
	Messages []string
	FormURL  string
}

type FormPage struct {
	Page
	ActionURL string
	Email     string
	Action    string
	Errors    map[string]string
}

type ProfileFieldView struct {
	Name  string
	Label string
	Value string
	Error string
}

type SubscribePage struct {
	Page
	ActionURL string
	Email     string
	Fields    []ProfileFieldView
}

type ErrorPage struct {
	Page
	Error string
}

// Templates parses the HTML pages for gin's SetHTMLTemplate. Names are
// form.html, subscribe.html and error.html.
func Templates() *template.Template {
	t := template.Must(template.New("layout").Parse(layoutTpl))
	template.Must(t.New("form.html").Parse(formTpl))
	template.Must(t.New("subscribe.html").Parse(subscribeTpl))
	template.Must(t.New("error.html").Parse(errorTpl))
	return t
}
