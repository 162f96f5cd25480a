package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/mykafka"
	"github.com/ivensmba/padoca/internal/service/pedidosvc"
)

type PedidoHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	Service  *pedidosvc.Service
}

func NewPedidoHandler(db *gorm.DB, producer *mykafka.Producer) *PedidoHandler {
	return &PedidoHandler{
		DB:       db,
		Producer: producer,
		Service:  &pedidosvc.Service{DB: db},
	}
}

func (h *PedidoHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "pedido_events", key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

// List é a fila da cozinha: tudo que ainda não foi concluído nem cancelado.
func (h *PedidoHandler) List(c echo.Context) error {
	fila, err := h.Service.FilaCozinha(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fila)
}

func (h *PedidoHandler) Create(c echo.Context) error {
	var req pedidosvc.CriarRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}

	resp, err := h.Service.Criar(c.Request().Context(), req)
	if err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(resp.ID), map[string]interface{}{
		"type":     "pedido_criado",
		"pedidoID": resp.ID,
		"cliente":  resp.Cliente,
		"total":    resp.Total,
	})

	return c.JSON(http.StatusCreated, resp)
}

func (h *PedidoHandler) Advance(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	resp, err := h.Service.Avancar(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(resp.ID), map[string]interface{}{
		"type":     "pedido_avancado",
		"pedidoID": resp.ID,
		"status":   resp.Status,
	})

	return c.JSON(http.StatusOK, resp)
}

func (h *PedidoHandler) Cancel(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	resp, err := h.Service.Cancelar(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(resp.ID), map[string]interface{}{
		"type":     "pedido_cancelado",
		"pedidoID": resp.ID,
	})

	return c.JSON(http.StatusOK, resp)
}

// QRCode devolve um PNG com a referência de retirada do pedido, para o
// cliente apresentar no balcão.
func (h *PedidoHandler) QRCode(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	p, err := h.Service.Buscar(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}

	png, err := qrcode.Encode(fmt.Sprintf("pedido:%d", p.ID), qrcode.Medium, 256)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
