package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/statistics"
)

// HomeIndex renders the landing page body.
func HomeIndex(loggedIn bool, stats statistics.StatisticsData, toolsEnabled bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="hero"><h1>Learn to work with AI</h1><p>Guided tool sessions for writing, images, data, business, websites and more. 30 free minutes per category, every day.</p>`)
		if !loggedIn {
			fmt.Fprint(w, `<div class="hero-actions"><a class="btn btn-primary" href="/register">Start for free</a><a class="btn" href="/tools">Browse tools</a></div>`)
		} else {
			fmt.Fprint(w, `<div class="hero-actions"><a class="btn btn-primary" href="/tools">Open tools</a></div>`)
		}
		fmt.Fprint(w, `</section>`)

		fmt.Fprintf(w, `<section class="stats"><div class="stat"><strong>%d</strong><span>learners</span></div><div class="stat"><strong>%d</strong><span>minutes practiced today</span></div></section>`,
			stats.TotalUsers, stats.TodayMinutes)

		if !toolsEnabled {
			fmt.Fprint(w, `<section class="notice">Tool sessions are temporarily disabled for maintenance.</section>`)
		}

		_, err := fmt.Fprint(w, `<section class="categories"><h2>Tool categories</h2><ul class="category-grid"><li><a href="/tools/writing">Writing</a></li><li><a href="/tools/images">Images</a></li><li><a href="/tools/data">Data</a></li><li><a href="/tools/business">Business</a></li><li><a href="/tools/website">Website</a></li><li><a href="/tools/general">General</a></li></ul></section>`)
		return err
	})
}

// ContentPage renders an admin-managed static page.
func ContentPage(page *models.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<article class="content-page"><h1>%s</h1>`, esc(page.Title))
		// Page content is authored by admins and stored as HTML.
		if _, err := io.WriteString(w, page.Content); err != nil {
			return err
		}
		_, err := fmt.Fprint(w, `</article>`)
		return err
	})
}
