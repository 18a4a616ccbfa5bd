package handlers

import (
	"errors"

	"github.com/carelinkhq/carelink-backend/internal/dto"
	"github.com/carelinkhq/carelink-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AdminHandler struct {
	verificationService *services.VerificationService
}

func NewAdminHandler(verificationService *services.VerificationService) *AdminHandler {
	return &AdminHandler{verificationService: verificationService}
}

func (h *AdminHandler) ListVerifications(c *fiber.Ctx) error {
	users, err := h.verificationService.Pending()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list pending verifications",
		})
	}
	return c.JSON(fiber.Map{"error": false, "pending": users})
}

func (h *AdminHandler) ActionVerification(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	var req dto.VerificationActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.verificationService.Action(userID, req.Approve, req.Note)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to action verification",
		})
	}
	return c.JSON(fiber.Map{"error": false, "user": services.UserResponse(user)})
}

func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.verificationService.SetActive(userID, req.Active)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update account status",
		})
	}
	return c.JSON(fiber.Map{"error": false, "user": services.UserResponse(user)})
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.verificationService.ListUsers(c.Query("role"))
	if err != nil {
		if errors.Is(err, services.ErrUnknownRole) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Unknown role filter",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list users",
		})
	}
	return c.JSON(fiber.Map{"error": false, "users": users})
}
