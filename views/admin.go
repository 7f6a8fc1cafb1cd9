package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/statistics"
)

// AdminDashboard renders the admin landing page.
func AdminDashboard(stats statistics.StatisticsData, totals []repository.CategoryUsage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="admin"><h1>Admin</h1>`)
		fmt.Fprintf(w, `<div class="admin-stats"><div class="stat"><strong>%d</strong><span>users</span></div><div class="stat"><strong>%d</strong><span>paid</span></div><div class="stat"><strong>%d</strong><span>minutes today</span></div></div>`,
			stats.TotalUsers, stats.PaidUsers, stats.TodayMinutes)

		fmt.Fprint(w, `<h2>Today by category</h2><table class="admin-table"><thead><tr><th>Category</th><th>Minutes</th></tr></thead><tbody>`)
		for _, total := range totals {
			fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td></tr>`, esc(total.Category), total.Minutes)
		}
		fmt.Fprint(w, `</tbody></table>`)

		_, err := fmt.Fprint(w, `<nav class="admin-links"><a href="/admin/users">Users</a><a href="/admin/usage">Usage</a><a href="/admin/webhooks">Webhook log</a><a href="/admin/pages">Pages</a><a href="/admin/settings">Settings</a></nav></section>`)
		return err
	})
}

// AdminUsers renders the user list with search.
func AdminUsers(users []models.User, query, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="admin"><h1>Users</h1>`)
		fmt.Fprintf(w, `<form method="get" action="/admin/users"><input type="search" name="q" value="%s" placeholder="Name or email"><button type="submit" class="btn">Search</button></form>`, esc(query))

		fmt.Fprint(w, `<table class="admin-table"><thead><tr><th>ID</th><th>Name</th><th>Email</th><th>Tier</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, user := range users {
			fmt.Fprintf(w, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td><a href="/admin/users/%d">Edit</a></td></tr>`,
				user.ID, esc(user.Name), esc(user.Email), esc(user.Tier), esc(user.Status), user.ID)
		}
		_, err := fmt.Fprint(w, `</tbody></table></section>`)
		return err
	})
}

// AdminUserEdit renders the tier/status form for one user.
func AdminUserEdit(user *models.User, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<section class="admin"><h1>Edit %s</h1>`, esc(user.Name))
		fmt.Fprintf(w, `<form method="post" action="/admin/users/%d">`, user.ID)
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))

		fmt.Fprint(w, `<label>Tier<select name="tier">`)
		for _, tier := range []string{models.TIER_UNPAID, models.TIER_PAID, models.TIER_ADMIN} {
			selected := ""
			if user.Tier == tier {
				selected = " selected"
			}
			fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(tier), selected, esc(tier))
		}
		fmt.Fprint(w, `</select></label>`)

		fmt.Fprint(w, `<label>Status<select name="status">`)
		for _, status := range []string{models.STATUS_ACTIVE, models.STATUS_INACTIVE, models.STATUS_DISABLED} {
			selected := ""
			if user.Status == status {
				selected = " selected"
			}
			fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(status), selected, esc(status))
		}
		fmt.Fprint(w, `</select></label>`)

		_, err := fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Save</button></form></section>`)
		return err
	})
}

// AdminUsage renders ledger aggregates for one day.
func AdminUsage(day string, totals []repository.CategoryUsage, topActors []repository.ActorUsage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<section class="admin"><h1>Usage for %s</h1>`, esc(day))
		fmt.Fprintf(w, `<form method="get" action="/admin/usage"><input type="date" name="day" value="%s"><button type="submit" class="btn">Show</button></form>`, esc(day))

		fmt.Fprint(w, `<h2>By category</h2><table class="admin-table"><thead><tr><th>Category</th><th>Minutes</th></tr></thead><tbody>`)
		for _, total := range totals {
			fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td></tr>`, esc(total.Category), total.Minutes)
		}
		fmt.Fprint(w, `</tbody></table>`)

		fmt.Fprint(w, `<h2>Top actors</h2><table class="admin-table"><thead><tr><th>Actor</th><th>Minutes</th></tr></thead><tbody>`)
		for _, actor := range topActors {
			fmt.Fprintf(w, `<tr><td>%s</td><td>%d</td></tr>`, esc(actor.ActorKey), actor.Minutes)
		}
		_, err := fmt.Fprint(w, `</tbody></table></section>`)
		return err
	})
}

// AdminWebhookEvents renders the billing webhook delivery log.
func AdminWebhookEvents(events []models.BillingWebhookEvent) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="admin"><h1>Webhook log</h1><table class="admin-table"><thead><tr><th>ID</th><th>Provider</th><th>Type</th><th>Signature</th><th>Processed</th><th>Error</th></tr></thead><tbody>`)
		for _, event := range events {
			sig := "invalid"
			if event.SignatureValid {
				sig = "valid"
			}
			processed := "-"
			if event.ProcessedAt != nil {
				processed = event.ProcessedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, `<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				event.ID, esc(event.Provider), esc(event.EventType), sig, processed, esc(event.ProcessingError))
		}
		_, err := fmt.Fprint(w, `</tbody></table></section>`)
		return err
	})
}

// AdminSettings renders the application settings form.
func AdminSettings(settings *models.AppSettings, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="admin"><h1>Settings</h1><form method="post" action="/admin/settings">`)
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
		fmt.Fprintf(w, `<label>Site title<input type="text" name="site_title" value="%s" required></label>`, esc(settings.GetSiteTitle()))
		fmt.Fprintf(w, `<label>Site description<input type="text" name="site_description" value="%s"></label>`, esc(settings.GetSiteDescription()))

		regChecked := ""
		if settings.IsRegistrationEnabled() {
			regChecked = " checked"
		}
		fmt.Fprintf(w, `<label class="checkbox"><input type="checkbox" name="registration_enabled"%s> Registration enabled</label>`, regChecked)

		toolsChecked := ""
		if settings.AreToolsEnabled() {
			toolsChecked = " checked"
		}
		fmt.Fprintf(w, `<label class="checkbox"><input type="checkbox" name="tools_enabled"%s> Tools enabled</label>`, toolsChecked)

		fmt.Fprintf(w, `<label>Free daily minutes<input type="number" name="free_daily_minutes" value="%d" min="1" max="1440"></label>`, settings.GetFreeDailyMinutes())
		_, err := fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Save</button></form></section>`)
		return err
	})
}

// AdminPages renders the static page list.
func AdminPages(pages []models.Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="admin"><h1>Pages</h1><a class="btn" href="/admin/pages/new">New page</a><table class="admin-table"><thead><tr><th>Title</th><th>Slug</th><th>Active</th><th></th></tr></thead><tbody>`)
		for _, page := range pages {
			active := "no"
			if page.IsActive {
				active = "yes"
			}
			fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td><a href="/admin/pages/%d">Edit</a></td></tr>`,
				esc(page.Title), esc(page.Slug), active, page.ID)
		}
		_, err := fmt.Fprint(w, `</tbody></table></section>`)
		return err
	})
}

// AdminPageForm renders the create/edit form for a static page.
func AdminPageForm(page *models.Page, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		action := "/admin/pages/new"
		title := "New page"
		if page != nil && page.ID != 0 {
			action = fmt.Sprintf("/admin/pages/%d", page.ID)
			title = "Edit page"
		}
		if page == nil {
			page = &models.Page{IsActive: true}
		}
		fmt.Fprintf(w, `<section class="admin"><h1>%s</h1><form method="post" action="%s">`, esc(title), esc(action))
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
		fmt.Fprintf(w, `<label>Title<input type="text" name="title" value="%s" required></label>`, esc(page.Title))
		fmt.Fprintf(w, `<label>Slug<input type="text" name="slug" value="%s" required></label>`, esc(page.Slug))
		fmt.Fprintf(w, `<label>Content<textarea name="content" rows="16">%s</textarea></label>`, esc(page.Content))
		activeChecked := ""
		if page.IsActive {
			activeChecked = " checked"
		}
		fmt.Fprintf(w, `<label class="checkbox"><input type="checkbox" name="is_active"%s> Active</label>`, activeChecked)
		_, err := fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Save</button></form></section>`)
		return err
	})
}
