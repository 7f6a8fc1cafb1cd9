package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
)

var categoryLabels = map[metering.Category]string{
	metering.CategoryWriting:  "Writing",
	metering.CategoryImages:   "Images",
	metering.CategoryData:     "Data",
	metering.CategoryBusiness: "Business",
	metering.CategoryWebsite:  "Website",
	metering.CategoryGeneral:  "General",
}

// CategoryLabel returns the display name for a tool category.
func CategoryLabel(c metering.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func writeUsageBadge(w io.Writer, usage metering.Usage, unlimited bool) {
	if unlimited {
		fmt.Fprint(w, `<span class="usage-badge usage-unlimited">Unlimited</span>`)
		return
	}
	cls := "usage-ok"
	if usage.LimitReached {
		cls = "usage-exhausted"
	}
	fmt.Fprintf(w, `<span class="usage-badge %s">%d / %d min today, %d left</span>`, cls, usage.MinutesUsed, usage.MinutesLimit, usage.Remaining())
}

// ToolsIndex renders the tool category overview with per-category quota.
func ToolsIndex(overview map[metering.Category]metering.Usage, unlimited bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprint(w, `<section class="tools-index"><h1>Tools</h1><ul class="tool-list">`)
		for _, category := range metering.Categories() {
			usage := overview[category]
			fmt.Fprintf(w, `<li class="tool-card"><a href="/tools/%s"><h2>%s</h2>`, esc(string(category)), esc(CategoryLabel(category)))
			writeUsageBadge(w, usage, unlimited)
			fmt.Fprint(w, `</a></li>`)
		}
		_, err := fmt.Fprint(w, `</ul></section>`)
		return err
	})
}

// ToolSession renders one category's workspace: prompt form, quota state
// and the latest result.
func ToolSession(category metering.Category, usage metering.Usage, unlimited bool, csrfToken, result string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<section class="tool-session"><h1>%s tools</h1>`, esc(CategoryLabel(category)))
		writeUsageBadge(w, usage, unlimited)

		if !unlimited && usage.LimitReached {
			fmt.Fprint(w, `<div class="quota-wall"><p>Your free minutes for this category are used up for today.</p><a class="btn btn-primary" href="/upgrade">Upgrade for unlimited access</a><p class="quota-hint">Your quota resets at midnight UTC.</p></div>`)
		} else {
			fmt.Fprintf(w, `<form method="post" action="/tools/%s" enctype="multipart/form-data">`, esc(string(category)))
			fmt.Fprintf(w, `<input type="hidden" name="_csrf" value="%s">`, esc(csrfToken))
			fmt.Fprint(w, `<label>Your prompt<textarea name="prompt" rows="6" required></textarea></label>`)
			if category == metering.CategoryImages {
				fmt.Fprint(w, `<label>Reference photo (optional)<input type="file" name="photo" accept="image/jpeg,image/png"></label>`)
			}
			fmt.Fprint(w, `<button type="submit" class="btn btn-primary">Run</button></form>`)
		}

		if result != "" {
			fmt.Fprintf(w, `<div class="tool-result"><h2>Result</h2><pre>%s</pre></div>`, esc(result))
		}
		_, err := fmt.Fprint(w, `</section>`)
		return err
	})
}
