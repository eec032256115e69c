package actions

import "github.com/diewo77/acme-dashboard/validation"

// Outcome is what a submission hands back to the page: either a redirect
// or a message with optional field errors.
type Outcome struct {
	Redirect string                `json:"redirect,omitempty"`
	Message  string                `json:"message,omitempty"`
	Errors   validation.Violations `json:"errors,omitempty"`
	// Failed marks a soft failure; the page stays on the form.
	Failed bool `json:"failed"`
	// Subject is the authenticated user id after a successful login.
	Subject string `json:"-"`
}

// Redirected reports whether the page should navigate away.
func (o Outcome) Redirected() bool { return o.Redirect != "" }

func redirect(path string) Outcome {
	return Outcome{Redirect: path}
}

func reported(msg string, errs validation.Violations) Outcome {
	return Outcome{Message: msg, Errors: errs, Failed: true}
}

func acknowledged(msg string) Outcome {
	return Outcome{Message: msg}
}
