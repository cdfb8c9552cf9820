package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gymcore/gym-gateway/internal/api/dto"
	"github.com/gymcore/gym-gateway/internal/service"
)

// TrainersHandler serves the trainer directory and trainer management.
type TrainersHandler struct {
	members *service.MemberService
}

// NewTrainersHandler constructs handler.
func NewTrainersHandler(memberService *service.MemberService) *TrainersHandler {
	return &TrainersHandler{members: memberService}
}

// List handles GET /trainers.
func (h *TrainersHandler) List(c *fiber.Ctx) error {
	limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}
	trainers, err := h.members.ListTrainers(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(err, "trainer")
	}
	resp := make([]dto.TrainerResponse, 0, len(trainers))
	for i := range trainers {
		resp = append(resp, dto.NewTrainerResponse(&trainers[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /trainers/:id.
func (h *TrainersHandler) Get(c *fiber.Ctx) error {
	trainer, err := h.members.GetTrainer(c.UserContext(), c.Params("id"))
	if err != nil {
		return serviceError(err, "trainer")
	}
	return c.JSON(fiber.Map{"data": dto.NewTrainerResponse(trainer)})
}

// Create handles POST /trainers.
func (h *TrainersHandler) Create(c *fiber.Ctx) error {
	account, err := parseAccount(c)
	if err != nil {
		return err
	}
	trainer, err := h.members.CreateTrainer(c.UserContext(), account)
	if err != nil {
		return serviceError(err, "trainer")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTrainerResponse(trainer)})
}

// Delete handles DELETE /trainers/:id.
func (h *TrainersHandler) Delete(c *fiber.Ctx) error {
	if err := h.members.DeleteTrainer(c.UserContext(), c.Params("id")); err != nil {
		return serviceError(err, "trainer")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
