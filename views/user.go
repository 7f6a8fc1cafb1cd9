package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
)

// Dashboard renders the logged-in user's overview.
func Dashboard(user *models.User, overview map[metering.Category]metering.Usage, unlimited bool, gravatarURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<section class="dashboard"><header class="dashboard-head"><img class="avatar" src="%s" alt=""><div><h1>Hi %s</h1>`, esc(gravatarURL), esc(user.Name))
		switch user.Tier {
		case models.TIER_ADMIN:
			fmt.Fprint(w, `<span class="tier-badge tier-admin">Admin</span>`)
		case models.TIER_PAID:
			fmt.Fprint(w, `<span class="tier-badge tier-paid">Member</span>`)
		default:
			fmt.Fprint(w, `<span class="tier-badge tier-free">Free</span> <a href="/upgrade">Upgrade</a>`)
		}
		fmt.Fprint(w, `</div></header>`)

		fmt.Fprint(w, `<h2>Today&#39;s usage</h2><table class="usage-table"><thead><tr><th>Category</th><th>Used</th></tr></thead><tbody>`)
		for _, category := range metering.Categories() {
			usage := overview[category]
			fmt.Fprintf(w, `<tr><td><a href="/tools/%s">%s</a></td><td>`, esc(string(category)), esc(CategoryLabel(category)))
			writeUsageBadge(w, usage, unlimited)
			fmt.Fprint(w, `</td></tr>`)
		}
		fmt.Fprint(w, `</tbody></table>`)

		_, err := fmt.Fprint(w, `<nav class="dashboard-links"><a href="/user/settings">Settings</a><a href="/user/settings/membership">Membership</a></nav></section>`)
		return err
	})
}

// SettingsPage renders profile preferences and API key management.
// freshAPIKey is only non-empty right after issuing a key; it is shown once.
func SettingsPage(settings *models.UserSettings, csrfToken, freshAPIKey string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="settings"><h1>Settings</h1>`)

		fmt.Fprint(w, `<form method="post" action="/user/settings">`)
		fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
		fmt.Fprintf(w, `<label>Preferred model<input type="text" name="preferred_model" value="%s"></label>`, esc(settings.PreferredModel))
		checked := ""
		if settings.EmailOnQuotaLimit {
			checked = " checked"
		}
		fmt.Fprintf(w, `<label class="checkbox"><input type="checkbox" name="email_on_quota_limit"%s> Email me when I hit my daily limit</label>`, checked)
		fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Save</button></form>`)

		fmt.Fprint(w, `<h2>API key</h2>`)
		if freshAPIKey != "" {
			fmt.Fprintf(w, `<div class="api-key-reveal"><p>Your new API key. Copy it now, it will not be shown again.</p><code>%s</code></div>`, esc(freshAPIKey))
		}
		if settings.HasActiveAPIKey() {
			fmt.Fprintf(w, `<p>Active key: <code>%s&hellip;</code></p>`, esc(settings.APIKeyPrefix))
			fmt.Fprintf(w, `<form method="post" action="/user/settings/api-key/revoke"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="btn btn-danger">Revoke key</button></form>`, esc(csrfToken))
		} else {
			fmt.Fprintf(w, `<form method="post" action="/user/settings/api-key"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="btn">Generate API key</button></form>`, esc(csrfToken))
		}

		_, err := fmt.Fprint(w, `</section>`)
		return err
	})
}

// MembershipPage shows the user's tier and subscription mirror.
func MembershipPage(user *models.User, subs []models.Subscription, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="membership"><h1>Membership</h1>`)
		switch user.Tier {
		case models.TIER_ADMIN:
			fmt.Fprint(w, `<p>You are an administrator. Billing does not apply to this account.</p>`)
		case models.TIER_PAID:
			fmt.Fprint(w, `<p>You have unlimited access. Thank you for supporting MindMentor.</p>`)
		default:
			fmt.Fprint(w, `<p>You are on the free tier.</p><a class="btn btn-primary" href="/upgrade">Upgrade</a>`)
		}

		if len(subs) > 0 {
			fmt.Fprint(w, `<h2>Subscriptions</h2><table class="subs-table"><thead><tr><th>Provider</th><th>Status</th><th>Last event</th></tr></thead><tbody>`)
			for _, sub := range subs {
				lastEvent := ""
				if sub.LastEventAt != nil {
					lastEvent = sub.LastEventAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td></tr>`, esc(sub.Provider), esc(sub.Status), esc(lastEvent))
			}
			fmt.Fprint(w, `</tbody></table>`)
		}

		fmt.Fprintf(w, `<form method="post" action="/user/settings/membership/resync"><input type="hidden" name="_csrf" value="%s"><button type="submit" class="btn">Re-sync membership</button></form>`, esc(csrfToken))
		_, err := fmt.Fprint(w, `</section>`)
		return err
	})
}

// UpgradePage renders pricing and the PayPal subscribe entry point.
func UpgradePage(loggedIn bool, paypalPlanID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="upgrade"><h1>Go unlimited</h1><p>Unlimited minutes across all tool categories.</p>`)
		if !loggedIn {
			fmt.Fprint(w, `<p><a class="btn btn-primary" href="/register">Create an account first</a></p>`)
		} else if paypalPlanID != "" {
			fmt.Fprintf(w, `<div id="paypal-button-container" data-plan-id="%s"></div><script src="https://www.paypal.com/sdk/js?intent=subscription&amp;vault=true" data-namespace="paypalSDK"></script><script src="/js/upgrade.js"></script>`, esc(paypalPlanID))
			fmt.Fprint(w, `<p class="upgrade-hint">Use the email address of your MindMentor account when paying, so we can match your subscription.</p>`)
		} else {
			fmt.Fprint(w, `<p>Payments are not configured yet. Please try again later.</p>`)
		}
		_, err := fmt.Fprint(w, `</section>`)
		return err
	})
}
