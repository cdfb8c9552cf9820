package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/gymcore/gym-gateway/internal/api/dto"
	"github.com/gymcore/gym-gateway/internal/auth"
	"github.com/gymcore/gym-gateway/internal/domain"
	"github.com/gymcore/gym-gateway/internal/service"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

// MembersHandler serves member self-service and roster endpoints.
type MembersHandler struct {
	members *service.MemberService
}

// NewMembersHandler constructs handler.
func NewMembersHandler(memberService *service.MemberService) *MembersHandler {
	return &MembersHandler{members: memberService}
}

// Me handles GET /members/me.
func (h *MembersHandler) Me(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	member, err := h.members.Me(c.UserContext(), principal.Username)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}

// UpdateMe handles PUT /members/me.
func (h *MembersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	update, err := parseProfile(c)
	if err != nil {
		return err
	}
	member, err := h.members.UpdateProfile(c.UserContext(), principal.Username, update)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}

// CompleteProfile handles POST /members/complete-profile.
func (h *MembersHandler) CompleteProfile(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	update, err := parseProfile(c)
	if err != nil {
		return err
	}
	if update.PhoneNumber == nil || strings.TrimSpace(*update.PhoneNumber) == "" {
		return apperrors.NewValidationError("phone_number required", nil)
	}
	member, err := h.members.CompleteProfile(c.UserContext(), principal.Username, update)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}

// List handles GET /members.
func (h *MembersHandler) List(c *fiber.Ctx) error {
	limit, offset, err := parsePage(c)
	if err != nil {
		return err
	}
	members, err := h.members.ListMembers(c.UserContext(), limit, offset)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.JSON(fiber.Map{"data": memberResponses(members)})
}

// ListByTrainer handles GET /members/by-trainer/:trainerId.
func (h *MembersHandler) ListByTrainer(c *fiber.Ctx) error {
	members, err := h.members.ListByTrainer(c.UserContext(), c.Params("trainerId"))
	if err != nil {
		return serviceError(err, "trainer")
	}
	return c.JSON(fiber.Map{"data": memberResponses(members)})
}

// Create handles POST /members.
func (h *MembersHandler) Create(c *fiber.Ctx) error {
	account, err := parseAccount(c)
	if err != nil {
		return err
	}
	member, err := h.members.CreateMember(c.UserContext(), account)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}

// Update handles PUT /members/:id.
func (h *MembersHandler) Update(c *fiber.Ctx) error {
	update, err := parseProfile(c)
	if err != nil {
		return err
	}
	member, err := h.members.UpdateMember(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return serviceError(err, "member")
	}
	return c.JSON(fiber.Map{"data": dto.NewMemberResponse(member)})
}

// Delete handles DELETE /members/:id.
func (h *MembersHandler) Delete(c *fiber.Ctx) error {
	if err := h.members.DeleteMember(c.UserContext(), c.Params("id")); err != nil {
		return serviceError(err, "member")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}

func parseProfile(c *fiber.Ctx) (service.ProfileUpdate, error) {
	var req dto.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return service.ProfileUpdate{}, apperrors.NewValidationError("invalid payload", nil)
	}
	return service.ProfileUpdate{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		TrainerID:   req.TrainerID,
	}, nil
}

func parseAccount(c *fiber.Ctx) (service.NewAccount, error) {
	var req dto.AccountRequest
	if err := c.BodyParser(&req); err != nil {
		return service.NewAccount{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return service.NewAccount{}, apperrors.NewValidationError("username and password required", nil)
	}
	return service.NewAccount{
		Username:       req.Username,
		Password:       req.Password,
		Name:           req.Name,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Gender:         req.Gender,
		Specialization: req.Specialization,
		TrainerID:      req.TrainerID,
	}, nil
}

func memberResponses(members []domain.Member) []dto.MemberResponse {
	resp := make([]dto.MemberResponse, 0, len(members))
	for i := range members {
		resp = append(resp, dto.NewMemberResponse(&members[i]))
	}
	return resp
}

func parsePage(c *fiber.Ctx) (limit, offset int, err error) {
	page, err := parseIntQuery(c, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := parseIntQuery(c, "page_size", 50)
	if err != nil {
		return 0, 0, err
	}
	return pageSize, (page - 1) * pageSize, nil
}

// parseIntQuery returns defaultVal when key is absent. Anything other than a
// positive integer is a validation failure.
func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) (int, error) {
	val := c.Query(key)
	if val == "" {
		return defaultVal, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 1 {
		return 0, apperrors.NewValidationError(key+" must be a positive integer", map[string]any{"field": key})
	}
	return parsed, nil
}
