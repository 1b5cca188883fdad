package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

const subscriptionHTMLTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">Confirm your subscription</h2>
  <p>Someone, hopefully you, asked to subscribe {{.Email}} to the {{.SiteName}} newsletter.</p>
  <p style="margin-top:24px">
    <a href="{{.Link}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Confirm subscription</a>
  </p>
  <p style="color:#999;font-size:12px">If you did not ask for this, ignore this email and nothing will happen.</p>
  <p style="color:#999;font-size:10px;text-align:center">&copy;{{year}} {{.SiteName}}</p>
</div>
</body>
</html>`

const subscriptionTextTpl = `Someone, hopefully you, asked to subscribe {{.Email}} to the {{.SiteName}} newsletter.

Confirm your subscription by following this link:
{{.Link}}

If you did not ask for this, ignore this email and nothing will happen.
`

const unsubscriptionHTMLTpl = `<!DOCTYPE html>
<html lang="en">
<head><meta http-equiv="Content-Type" content="text/html; charset=UTF-8" /></head>
<body style="font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica Neue,Arial,sans-serif;background:#f5f5f5;padding:20px">
<div style="max-width:600px;margin:0 auto;background:#fff;border-radius:8px;padding:24px">
  <h2 style="color:#333">You have been unsubscribed</h2>
  <p>{{.Email}} will no longer receive the {{.SiteName}} newsletter.</p>
  <p>Changed your mind? You can subscribe again with one click:</p>
  <p style="margin-top:24px">
    <a href="{{.Link}}" style="background:#4f46e5;color:#fff;padding:8px 16px;text-decoration:none;border-radius:4px">Resubscribe</a>
  </p>
  <p style="color:#999;font-size:10px;text-align:center">&copy;{{year}} {{.SiteName}}</p>
</div>
</body>
</html>`

const unsubscriptionTextTpl = `{{.Email}} will no longer receive the {{.SiteName}} newsletter.

Changed your mind? Subscribe again here:
{{.Link}}
`

// LinkData is the data for both newsletter emails.
type LinkData struct {
	Email    string
	SiteName string
	Link     string
}

var funcs = map[string]interface{}{
	"year": func() int { return time.Now().Year() },
}

func renderHTML(tpl string, data interface{}) (string, error) {
	t, err := htmltemplate.New("").Funcs(funcs).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tpl string, data interface{}) (string, error) {
	t, err := texttemplate.New("").Funcs(funcs).Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func render(subject, htmlTpl, textTpl, to string, data LinkData) (Message, error) {
	html, err := renderHTML(htmlTpl, data)
	if err != nil {
		return Message{}, err
	}
	text, err := renderText(textTpl, data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: subject, HTML: html, Text: text}, nil
}

// SubscriptionMessage renders the confirmation email carrying the opt-in link.
func SubscriptionMessage(to string, data LinkData) (Message, error) {
	return render(fmt.Sprintf("[%s] Confirm your subscription", data.SiteName), subscriptionHTMLTpl, subscriptionTextTpl, to, data)
}

// UnsubscriptionMessage renders the goodbye notice carrying the resubscribe link.
func UnsubscriptionMessage(to string, data LinkData) (Message, error) {
	return render(fmt.Sprintf("[%s] You have been unsubscribed", data.SiteName), unsubscriptionHTMLTpl, unsubscriptionTextTpl, to, data)
}
