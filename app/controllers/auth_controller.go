package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/constants"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/env"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/hcaptcha"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/jobqueue"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/session"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/statistics"
	"github.com/MindMentorHQ/MindMentor/internal/pkg/usercontext"
	"github.com/MindMentorHQ/MindMentor/views"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		// notice: in production you should not inform the user
		// with detailed messages about login failures
		user, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(c.FormValue("email"))
		if err != nil {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.CheckPassword(c.FormValue("password")) {
			fm["message"] = "There is a problem with the login process"

			return flash.WithError(c, fm).Redirect("/login")
		}

		if !user.IsActive() {
			fm["message"] = "Please activate your account first. Check your inbox."

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(usercontext.AuthKey, true)
		sess.Set(usercontext.KeyUserID, user.ID)
		sess.Set(usercontext.KeyUsername, user.Name)
		sess.Set(usercontext.KeyUserEmail, user.Email)
		sess.Set(usercontext.KeyIsAdmin, user.IsAdmin())
		sess.Set(usercontext.KeyUserTier, user.Tier)

		if err := sess.Save(); err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		now := time.Now()
		user.LastLoginAt = &now
		_ = repository.GetGlobalFactory().GetUserRepository().Update(user)

		fm = fiber.Map{
			"type":    "success",
			"message": "Welcome back! Happy learning!",
		}

		return flash.WithSuccess(c, fm).Redirect(constants.ToolsRoute)
	}

	return render(c, " | Login", views.LoginIndex(csrfToken(c)))
}

func HandleAuthLogout(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type": "error",
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm["message"] = "logged out (no sess)"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := sess.Destroy(); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Bye bye! See you soon.",
	}

	c.Locals(usercontext.KeyFromProtected, false)

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if !models.GetAppSettings().IsRegistrationEnabled() {
		fm := fiber.Map{
			"type":    "error",
			"message": "Registration is currently disabled",
		}
		return flash.WithError(c, fm).Redirect("/login")
	}

	if c.Method() == fiber.MethodPost {
		// Verify hCaptcha token
		hcaptchaToken := c.FormValue("h-captcha-response")
		valid, err := hcaptcha.Verify(hcaptchaToken)
		if err != nil || !valid {
			errorMsg := "Captcha validation failed. Please try again."
			if err != nil && env.IsDev() {
				errorMsg = fmt.Sprintf("Captcha validation failed: %v", err)
			}

			fm := fiber.Map{
				"type":    "error",
				"message": errorMsg,
			}
			return flash.WithError(c, fm).Redirect("/register")
		}

		user, err := models.CreateUser(c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
		if err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		if err := user.GenerateActivationToken(); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		if err := repository.GetGlobalFactory().GetUserRepository().Create(user); err != nil {
			fm := fiber.Map{
				"type":    "error",
				"message": fmt.Sprintf("something went wrong: %s", err),
			}

			return flash.WithError(c, fm).Redirect("/register")
		}

		sendActivationMail(user)

		// Update statistics after registration
		go statistics.UpdateStatisticsCache()

		return render(c, " | Almost there", views.ActivationNotice(user.Email))
	}

	hcaptchaSitekey := env.GetEnv("HCAPTCHA_SITEKEY", "")

	return render(c, " | Register", views.RegisterIndex(csrfToken(c), hcaptchaSitekey))
}

// HandleAuthActivate activates an account via the emailed token.
func HandleAuthActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	fm := fiber.Map{
		"type": "error",
	}

	if token == "" {
		fm["message"] = "Activation token is missing"

		return flash.WithError(c, fm).Redirect("/login")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	user, err := userRepo.GetByActivationToken(token)
	if err != nil {
		fm["message"] = "Invalid or expired activation token"

		return flash.WithError(c, fm).Redirect("/login")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := userRepo.Update(user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	fm = fiber.Map{
		"type":    "success",
		"message": "Your account is active. You can log in now!",
	}

	return flash.WithSuccess(c, fm).Redirect("/login")
}

func sendActivationMail(user *models.User) {
	baseURL := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000")
	link := fmt.Sprintf("%s/activate?token=%s", baseURL, user.ActivationToken)
	body := fmt.Sprintf("Hi %s,\n\nplease confirm your MindMentor account:\n%s\n\nIf you did not sign up, ignore this mail.", user.Name, link)

	if err := jobqueue.EnqueueEmail(user.Email, "Activate your MindMentor account", body); err != nil {
		fmt.Printf("failed to enqueue activation mail: %v\n", err)
	}
}
