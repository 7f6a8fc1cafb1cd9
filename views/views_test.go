package views

import (
	"context"
	"strings"
	"testing"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/viewmodel"
)

func TestLayoutEscapesUsername(t *testing.T) {
	vm := viewmodel.Layout{
		FromProtected: true,
		Username:      `<script>alert("x")</script>`,
	}
	var sb strings.Builder
	if err := Layout("", vm, nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := sb.String()
	if strings.Contains(html, "<script>alert") {
		t.Fatal("username rendered unescaped")
	}
	if !strings.Contains(html, "/user/dashboard") {
		t.Fatal("logged-in nav missing dashboard link")
	}
}

func TestLayoutAnonymousNav(t *testing.T) {
	var sb strings.Builder
	if err := Layout("", viewmodel.Layout{}, nil).Render(context.Background(), &sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := sb.String()
	for _, link := range []string{"/login", "/register", "/upgrade"} {
		if !strings.Contains(html, link) {
			t.Fatalf("anonymous nav missing %s link", link)
		}
	}
	if strings.Contains(html, "/admin") {
		t.Fatal("anonymous nav must not show admin link")
	}
}

func TestToolSessionQuotaWall(t *testing.T) {
	usage := metering.Usage{MinutesUsed: 30, MinutesLimit: 30, LimitReached: true}
	var sb strings.Builder
	if err := ToolSession(metering.CategoryWriting, usage, false, "tok", "").Render(context.Background(), &sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, "/upgrade") {
		t.Fatal("quota wall missing upgrade link")
	}
	if strings.Contains(html, "<textarea") {
		t.Fatal("prompt form rendered despite exhausted quota")
	}
}

func TestToolSessionPromptForm(t *testing.T) {
	usage := metering.Usage{MinutesUsed: 5, MinutesLimit: 30}
	var sb strings.Builder
	if err := ToolSession(metering.CategoryImages, usage, false, "tok", "").Render(context.Background(), &sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, "<textarea") {
		t.Fatal("prompt form missing")
	}
	if !strings.Contains(html, `name="photo"`) {
		t.Fatal("images category should offer a reference photo upload")
	}
	if !strings.Contains(html, `value="tok"`) {
		t.Fatal("csrf token missing from form")
	}
}

func TestToolSessionResultEscaped(t *testing.T) {
	usage := metering.Usage{MinutesUsed: 5, MinutesLimit: 30}
	var sb strings.Builder
	err := ToolSession(metering.CategoryGeneral, usage, false, "tok", `<img src=x onerror=alert(1)>`).Render(context.Background(), &sb)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(sb.String(), "<img src=x") {
		t.Fatal("tool result rendered unescaped")
	}
}

func TestUsageBadgeShowsRemainingMinutes(t *testing.T) {
	usage := metering.Usage{MinutesUsed: 12, MinutesLimit: 30}
	var sb strings.Builder
	if err := ToolSession(metering.CategoryWriting, usage, false, "tok", "").Render(context.Background(), &sb); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	html := sb.String()
	if !strings.Contains(html, "12 / 30 min today, 18 left") {
		t.Fatalf("usage badge missing remaining minutes: %s", html)
	}
}
