package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
)

type FeedbackHandler struct {
	DB *gorm.DB
}

func (h *FeedbackHandler) Create(c echo.Context) error {
	var req struct {
		Cliente   string `json:"cliente"`
		Mensagem  string `json:"mensagem"`
		Avaliacao int    `json:"avaliacao"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}

	fields := map[string]string{}
	if req.Mensagem == "" {
		fields["mensagem"] = "não pode ser vazia"
	}
	if req.Avaliacao < 1 || req.Avaliacao > 5 {
		fields["avaliacao"] = "deve estar entre 1 e 5"
	}
	if len(fields) > 0 {
		return apperr.Validation("feedback inválido", fields)
	}

	cliente := req.Cliente
	if cliente == "" {
		cliente = "Anônimo"
	}

	feedback := models.Feedback{
		Cliente:   cliente,
		Mensagem:  req.Mensagem,
		Avaliacao: req.Avaliacao,
	}
	if err := h.DB.Create(&feedback).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) List(c echo.Context) error {
	var feedbacks []models.Feedback
	if err := h.DB.Order("data_hora DESC").Find(&feedbacks).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, feedbacks)
}
