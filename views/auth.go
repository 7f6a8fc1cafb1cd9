package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// LoginIndex renders the login form body.
func LoginIndex(csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="auth-form"><h1>Login</h1><form method="post" action="/login">`)
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
		fmt.Fprint(w, `<label>Email<input type="email" name="email" required></label>`)
		fmt.Fprint(w, `<label>Password<input type="password" name="password" required></label>`)
		fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Login</button></form>`)
		fmt.Fprint(w, `<div class="oauth-buttons"><a class="btn" href="/auth/google">Continue with Google</a><a class="btn" href="/auth/facebook">Continue with Facebook</a><a class="btn" href="/auth/discord">Continue with Discord</a></div>`)
		_, err := fmt.Fprint(w, `<p><a href="/register">No account yet? Register</a></p></section>`)
		return err
	})
}

// RegisterIndex renders the registration form body.
func RegisterIndex(csrfToken, hcaptchaSitekey string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="auth-form"><h1>Register</h1><form method="post" action="/register">`)
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
		fmt.Fprint(w, `<label>Username<input type="text" name="username" minlength="3" required></label>`)
		fmt.Fprint(w, `<label>Email<input type="email" name="email" required></label>`)
		fmt.Fprint(w, `<label>Password<input type="password" name="password" minlength="6" required></label>`)
		if hcaptchaSitekey != "" {
			fmt.Fprintf(w, `<div class="h-captcha" data-sitekey="%s"></div><script src="https://js.hcaptcha.com/1/api.js" async defer></script>`, esc(hcaptchaSitekey))
		}
		fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Create account</button></form>`)
		_, err := fmt.Fprint(w, `<p><a href="/login">Already registered? Login</a></p></section>`)
		return err
	})
}

// ActivationNotice tells a fresh registrant to check their inbox.
func ActivationNotice(email string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="auth-form"><h1>Almost there</h1><p>We sent an activation link to <strong>%s</strong>. Click it to activate your account.</p></section>`, esc(email))
		return err
	})
}
