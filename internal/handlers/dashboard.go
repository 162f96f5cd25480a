package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/pedido"
)

type DashboardHandler struct {
	DB *gorm.DB
}

type dashboardStats struct {
	TotalVendasHoje decimal.Decimal `json:"totalVendasHoje"`
	ItensCriticos   int64           `json:"itensCriticos"`
	FilaPedidos     int64           `json:"filaPedidos"`
	TicketMedio     decimal.Decimal `json:"ticketMedio"`
}

// Stats calcula os números reais do dia: itens no estoque crítico, tamanho
// da fila aberta, vendas concluídas de hoje e o ticket médio delas.
func (h *DashboardHandler) Stats(c echo.Context) error {
	db := h.DB.WithContext(c.Request().Context())

	var criticos int64
	if err := db.Model(&models.Produto{}).
		Where("ativo = ? AND quantidade_estoque <= estoque_minimo", true).
		Count(&criticos).Error; err != nil {
		return err
	}

	var fila int64
	if err := db.Model(&models.Pedido{}).
		Where("status NOT IN ?", []string{pedido.StatusConcluido, pedido.StatusCancelado}).
		Count(&fila).Error; err != nil {
		return err
	}

	inicioDoDia := time.Now().Truncate(24 * time.Hour)
	var concluidos []models.Pedido
	if err := db.
		Where("status = ? AND data_criacao >= ?", pedido.StatusConcluido, inicioDoDia).
		Find(&concluidos).Error; err != nil {
		return err
	}

	vendas := decimal.Zero
	for _, p := range concluidos {
		vendas = vendas.Add(p.Total)
	}
	ticket := decimal.Zero
	if len(concluidos) > 0 {
		ticket = vendas.DivRound(decimal.NewFromInt(int64(len(concluidos))), 2)
	}

	return c.JSON(http.StatusOK, dashboardStats{
		TotalVendasHoje: vendas,
		ItensCriticos:   criticos,
		FilaPedidos:     fila,
		TicketMedio:     ticket,
	})
}
