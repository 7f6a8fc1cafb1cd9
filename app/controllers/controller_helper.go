package controllers

import (
	"strings"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/internal/pkg/entitlements"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/metering"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/viewmodel"
	"github.com/MindMentorHQ/MindMentor/views"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(usercontext.KeyFromProtected); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(usercontext.KeyUsername); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// csrfToken returns the token set by the CSRF middleware, empty when the
// route is exempt (webhooks, API).
func csrfToken(c *fiber.Ctx) string {
	if v := c.Locals("csrf"); v != nil {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}

// render wraps a page body in the shared layout and serves it through the
// templ HTTP handler.
func render(c *fiber.Ctx, title string, content templ.Component) error {
	userCtx := usercontext.GetUserContext(c)
	vm := viewmodel.Layout{
		Page:          title,
		FromProtected: userCtx.IsLoggedIn,
		Msg:           flash.Get(c),
		Username:      userCtx.Username,
		IsAdmin:       userCtx.IsAdmin,
	}

	handler := adaptor.HTTPHandler(templ.Handler(views.Layout(title, vm, content)))
	return handler(c)
}

// actorFromContext builds the metering actor for the current request.
// Logged-in users meter against their account, anonymous visitors against
// their client IP.
func actorFromContext(c *fiber.Ctx) metering.Actor {
	userCtx := usercontext.GetUserContext(c)
	actor := metering.Actor{Tier: entitlements.NormalizeTier(userCtx.Tier)}
	if userCtx.IsLoggedIn {
		actor.UserID = userCtx.UserID
	} else {
		actor.Tier = entitlements.TierUnpaid
	}
	actor.IP = clientIP(c)
	return actor
}

// clientIP returns a single best-effort client address, preferring IPv4.
func clientIP(c *fiber.Ctx) string {
	ipv4, ipv6 := GetClientIP(c)
	if ipv4 != "" {
		return ipv4
	}
	return ipv6
}

// GetClientIP determines the actual client IP address considering proxies and dual stack
// Returns both IPv4 and IPv6 addresses if available
func GetClientIP(c *fiber.Ctx) (string, string) {
	ipv4 := ""
	ipv6 := ""

	// 1. Check for Cloudflare header
	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		if strings.Contains(cfIP, ":") {
			ipv6 = cfIP
			for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
				ip = strings.TrimSpace(ip)
				if ip != "" && !strings.Contains(ip, ":") {
					ipv4 = ip
					break
				}
			}
		} else {
			ipv4 = cfIP
			for _, ip := range strings.Split(c.Get("X-Forwarded-For"), ",") {
				ip = strings.TrimSpace(ip)
				if strings.Contains(ip, ":") {
					ipv6 = ip
					break
				}
			}
		}
		return ipv4, ipv6
	}

	// 2. Check for X-Forwarded-For header (standard proxy header)
	xff := c.Get("X-Forwarded-For")
	if xff != "" {
		xffList := strings.Split(xff, ",")
		clientAddr := strings.TrimSpace(xffList[0])
		if strings.Contains(clientAddr, ":") {
			ipv6 = clientAddr
			for i := 1; i < len(xffList); i++ {
				ip := strings.TrimSpace(xffList[i])
				if !strings.Contains(ip, ":") {
					ipv4 = ip
					break
				}
			}
		} else {
			ipv4 = clientAddr
			for i := 1; i < len(xffList); i++ {
				ip := strings.TrimSpace(xffList[i])
				if strings.Contains(ip, ":") {
					ipv6 = ip
					break
				}
			}
		}
		if ipv4 != "" || ipv6 != "" {
			return ipv4, ipv6
		}
	}

	// 3. If no proxy headers were found, use the normal IP address
	ipAddr := c.IP()
	if strings.Contains(ipAddr, ":") {
		// IPv4-mapped-IPv6 addresses (::ffff:192.168.1.1)
		if strings.Contains(ipAddr, ".") && strings.HasPrefix(ipAddr, "::ffff:") {
			ipv4 = strings.TrimPrefix(ipAddr, "::ffff:")
		} else {
			ipv6 = ipAddr
			realIPv4 := c.Get("X-Real-IP")
			if realIPv4 != "" && !strings.Contains(realIPv4, ":") {
				ipv4 = realIPv4
			}
		}
	} else {
		ipv4 = ipAddr
		realIPv6 := c.Get("X-Real-IP")
		if realIPv6 != "" && strings.Contains(realIPv6, ":") {
			ipv6 = realIPv6
		}
	}

	return ipv4, ipv6
}
