package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/MindMentorHQ/MindMentor/app/models"
	"github.com/MindMentorHQ/MindMentor/app/repository"
	"github.com/MindMentorHQ/MindMentor/views"
)

// HandleAdminPages lists the static pages.
func HandleAdminPages(c *fiber.Ctx) error {
	pages, err := repository.GetGlobalFactory().GetPageRepository().GetAll()
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Pages could not be loaded"}).Redirect("/admin")
	}

	return render(c, " | Pages", views.AdminPages(pages))
}

// HandleAdminPageCreate renders and processes the new-page form.
func HandleAdminPageCreate(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		pageRepo := repository.GetGlobalFactory().GetPageRepository()

		page := pageFromForm(c)
		if err := page.Validate(); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("invalid page: %s", err)}).Redirect("/admin/pages/new")
		}

		exists, err := pageRepo.SlugExists(page.Slug)
		if err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect("/admin/pages/new")
		}
		if exists {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "A page with this slug already exists"}).Redirect("/admin/pages/new")
		}

		if err := pageRepo.Create(page); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect("/admin/pages/new")
		}

		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Page created"}).Redirect("/admin/pages")
	}

	return render(c, " | New Page", views.AdminPageForm(nil, csrfToken(c)))
}

// HandleAdminPageEdit renders and processes the edit form for one page.
func HandleAdminPageEdit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return HandleNotFound(c)
	}

	pageRepo := repository.GetGlobalFactory().GetPageRepository()
	page, err := pageRepo.GetByID(uint(id))
	if err != nil {
		return HandleNotFound(c)
	}

	if c.Method() == fiber.MethodPost {
		redirectTo := fmt.Sprintf("/admin/pages/%d", page.ID)

		form := pageFromForm(c)
		page.Title = form.Title
		page.Slug = form.Slug
		page.Content = form.Content
		page.IsActive = form.IsActive
		if err := page.Validate(); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("invalid page: %s", err)}).Redirect(redirectTo)
		}

		exists, err := pageRepo.SlugExistsExceptID(page.Slug, page.ID)
		if err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(redirectTo)
		}
		if exists {
			return flash.WithError(c, fiber.Map{"type": "error", "message": "A page with this slug already exists"}).Redirect(redirectTo)
		}

		if err := pageRepo.Update(page); err != nil {
			return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect(redirectTo)
		}

		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Page saved"}).Redirect("/admin/pages")
	}

	return render(c, " | Edit Page", views.AdminPageForm(page, csrfToken(c)))
}

// HandleAdminPageDelete removes a page.
func HandleAdminPageDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return HandleNotFound(c)
	}

	if err := repository.GetGlobalFactory().GetPageRepository().Delete(uint(id)); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}).Redirect("/admin/pages")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Page deleted"}).Redirect("/admin/pages")
}

func pageFromForm(c *fiber.Ctx) *models.Page {
	return &models.Page{
		Title:    strings.TrimSpace(c.FormValue("title")),
		Slug:     strings.ToLower(strings.TrimSpace(c.FormValue("slug"))),
		Content:  c.FormValue("content"),
		IsActive: c.FormValue("is_active") != "",
	}
}
