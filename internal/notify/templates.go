package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

const verificationHTML = `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Welcome to {{.App}}! Please confirm your email address to activate your account.</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>The link expires in 24 hours. If you did not sign up, ignore this email.</p>`

const verificationText = `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Welcome to {{.App}}! Confirm your email address by opening the link below:

{{.Link}}

The link expires in 24 hours. If you did not sign up, ignore this email.
`

const welcomeHTML = `<p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Your email is verified and your {{.App}} account is ready.</p>
<p><a href="{{.Link}}">Open {{.App}}</a></p>`

const welcomeText = `Hi {{if .Name}}{{.Name}}{{else}}there{{end}},

Your email is verified and your {{.App}} account is ready:

{{.Link}}
`

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.New(KindVerification).Parse(verificationHTML))
	textTemplates = texttemplate.Must(texttemplate.New(KindVerification).Parse(verificationText))
)

func init() {
	htmltemplate.Must(htmlTemplates.New(KindWelcome).Parse(welcomeHTML))
	texttemplate.Must(textTemplates.New(KindWelcome).Parse(welcomeText))
}

type mailData struct {
	App  string
	Name string
	Link string
}

// Renderer builds account mail. Links point at the frontend, which forwards
// verification tokens to POST /auth/verify-email.
type Renderer struct {
	AppName     string
	FrontendURL string
}

func NewRenderer(appName, frontendURL string) *Renderer {
	if appName == "" {
		appName = "DropIt"
	}
	return &Renderer{AppName: appName, FrontendURL: strings.TrimSuffix(frontendURL, "/")}
}

// VerificationLink returns ${FrontendURL}/verify-email?token=<token>.
func (r *Renderer) VerificationLink(token string) string {
	return r.FrontendURL + "/verify-email?token=" + url.QueryEscape(token)
}

// Verification renders the mail carrying the verification link.
func (r *Renderer) Verification(to, name, token string) (Message, error) {
	return r.render(KindVerification, to, "Verify your "+r.AppName+" email",
		mailData{App: r.AppName, Name: name, Link: r.VerificationLink(token)})
}

// Welcome renders the mail sent after a successful verification.
func (r *Renderer) Welcome(to, name string) (Message, error) {
	return r.render(KindWelcome, to, "Welcome to "+r.AppName,
		mailData{App: r.AppName, Name: name, Link: r.FrontendURL + "/"})
}

func (r *Renderer) render(kind, to, subject string, data mailData) (Message, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, kind, data); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, kind, data); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return Message{Kind: kind, To: to, Subject: subject, HTML: html.String(), Text: text.String()}, nil
}
