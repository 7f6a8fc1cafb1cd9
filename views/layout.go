package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/viewmodel"
)

// esc escapes user-controlled text for HTML output.
func esc(s string) string {
	return templ.EscapeString(s)
}

// Layout wraps page content with the shared chrome: head, navigation,
// flash messages and footer.
func Layout(title string, vm viewmodel.Layout, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
			return err
		}
		pageTitle := "MindMentor"
		if title != "" {
			pageTitle += title
		}
		fmt.Fprintf(w, `<title>%s</title>`, esc(pageTitle))
		if og := vm.OGViewModel; og != nil {
			fmt.Fprintf(w, `<meta property="og:title" content="%s"><meta property="og:description" content="%s">`, esc(og.Title), esc(og.Description))
			if og.Image != "" {
				fmt.Fprintf(w, `<meta property="og:image" content="%s">`, esc(og.Image))
			}
			if og.URL != "" {
				fmt.Fprintf(w, `<meta property="og:url" content="%s">`, esc(og.URL))
			}
		}
		fmt.Fprint(w, `<link rel="stylesheet" href="/css/app.css"></head><body>`)

		fmt.Fprint(w, `<nav class="navbar"><a class="brand" href="/">MindMentor</a><div class="nav-links">`)
		fmt.Fprint(w, `<a href="/tools">Tools</a>`)
		if vm.FromProtected {
			fmt.Fprint(w, `<a href="/user/dashboard">Dashboard</a>`)
			if vm.IsAdmin {
				fmt.Fprint(w, `<a href="/admin">Admin</a>`)
			}
			fmt.Fprintf(w, `<span class="nav-user">%s</span><form class="nav-logout" method="post" action="/logout"><button type="submit" class="btn">Logout</button></form>`, esc(vm.Username))
		} else {
			fmt.Fprint(w, `<a href="/upgrade">Pricing</a><a href="/login">Login</a><a href="/register">Register</a>`)
		}
		fmt.Fprint(w, `</div></nav>`)

		if vm.Msg != nil {
			msgType, _ := vm.Msg["type"].(string)
			msgText, _ := vm.Msg["message"].(string)
			if msgText != "" {
				fmt.Fprintf(w, `<div class="flash flash-%s">%s</div>`, esc(msgType), esc(msgText))
			}
		}

		fmt.Fprint(w, `<main class="container">`)
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		fmt.Fprint(w, `</main>`)

		_, err := fmt.Fprint(w, `<footer class="footer"><a href="/page/about">About</a> &middot; <a href="/page/privacy">Privacy</a> &middot; <a href="/page/terms">Terms</a></footer></body></html>`)
		return err
	})
}

// NotFound is the 404 page body.
func NotFound() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprint(w, `<section class="error-page"><h1>404</h1><p>This page does not exist.</p><a href="/">Back to the start</a></section>`)
		return err
	})
}
