package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmpl "html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Template names understood by Render.
const (
	OTP = "otp"
)

// OTPData builds the data map for the OTP email template.
func OTPData(appName, name, email, code, purpose string, expiresMinutes int) map[string]any {
	return map[string]any{
		"AppName":        appName,
		"Name":           name,
		"Email":          email,
		"Code":           code,
		"Purpose":        purpose,
		"ExpiresMinutes": expiresMinutes,
	}
}

// Render produces subject, plain-text, and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case OTP:
		return renderOTP(data)
	default:
		return "", "", "", errors.New("unknown email template: " + name)
	}
}

func renderOTP(data map[string]any) (subject, text, html string, err error) {
	purpose := fmt.Sprintf("%v", data["Purpose"])
	code := fmt.Sprintf("%v", data["Code"])

	if purpose == "password_reset" {
		subject = "Your password reset code"
		text = fmt.Sprintf("Your password reset OTP is: %s", code)
	} else {
		subject = "Your OTP Code"
		text = fmt.Sprintf("Your signup verification OTP is: %s", code)
	}

	t, err := htmpl.ParseFS(FS, "otp.tmpl")
	if err != nil {
		return "", "", "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	return subject, text, buf.String(), nil
}
