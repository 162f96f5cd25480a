// Package pedidosvc liga o agregado de pedido ao armazenamento: criação
// transacional, avanço de status com trava otimista e a projeção da fila da
// cozinha.
package pedidosvc

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/pedido"
)

type ItemRequest struct {
	ProdutoID  uint `json:"produtoId"`
	Quantidade int  `json:"quantidade"`
}

type CriarRequest struct {
	Cliente string        `json:"cliente"`
	Tipo    string        `json:"tipo"`
	Itens   []ItemRequest `json:"itens"`
}

// Response é o resumo consumido pela interface: status minúsculo, horário
// HH:mm e uma linha "quantidade x nome" por item.
type Response struct {
	ID             uint            `json:"id"`
	Cliente        string          `json:"cliente"`
	Status         string          `json:"status"`
	Tipo           string          `json:"tipo"`
	Total          decimal.Decimal `json:"total"`
	DataHora       string          `json:"dataHora"`
	DescricaoItens []string        `json:"descricaoItens"`
}

type Service struct {
	DB *gorm.DB
}

func (r CriarRequest) validar() error {
	fields := map[string]string{}
	if r.Cliente == "" {
		fields["cliente"] = "não pode ser vazio"
	}
	if !pedido.ValidTipo(r.Tipo) {
		fields["tipo"] = "deve ser BALCAO ou ENTREGA"
	}
	if len(r.Itens) == 0 {
		fields["itens"] = "deve ter ao menos um item"
	}
	for _, item := range r.Itens {
		if item.Quantidade < 1 {
			fields["itens.quantidade"] = "deve ser no mínimo 1"
			break
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("pedido inválido", fields)
	}
	return nil
}

// Criar resolve cada produto, monta os itens na ordem enviada e persiste o
// pedido inteiro em uma transação: se qualquer produto não existir, nada é
// gravado.
func (s *Service) Criar(ctx context.Context, req CriarRequest) (*Response, error) {
	if err := req.validar(); err != nil {
		return nil, err
	}

	novo := pedido.Novo(req.Cliente, req.Tipo)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range req.Itens {
			var produto models.Produto
			if err := tx.First(&produto, item.ProdutoID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("produto não encontrado: %d", item.ProdutoID)
				}
				return err
			}
			if err := pedido.AdicionarItem(novo, &produto, item.Quantidade); err != nil {
				return err
			}
		}
		// O produto dentro de cada item é só leitura para renderização;
		// não deve ser regravado junto com o pedido.
		return tx.Omit("Itens.Produto").Create(novo).Error
	})
	if err != nil {
		return nil, err
	}

	return toResponse(novo), nil
}

// Avancar aplica o único sucessor válido do status atual. O UPDATE é
// guardado por versao: se outro avanço chegou primeiro, nenhuma linha casa e
// a chamada perde com um conflito em vez de sobrescrever.
func (s *Service) Avancar(ctx context.Context, id uint) (*Response, error) {
	var p models.Pedido
	if err := s.DB.WithContext(ctx).Preload("Itens.Produto").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pedido não encontrado: %d", id)
		}
		return nil, err
	}

	proximo, err := pedido.Next(p.Status, p.Tipo)
	if err != nil {
		return nil, err
	}

	result := s.DB.WithContext(ctx).Model(&models.Pedido{}).
		Where("id = ? AND versao = ?", p.ID, p.Versao).
		Updates(map[string]interface{}{
			"status": proximo,
			"versao": p.Versao + 1,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Conflict("pedido %d foi alterado por outra operação", id)
	}

	p.Status = proximo
	p.Versao++
	return toResponse(&p), nil
}

// Cancelar é a ação externa explícita que leva um pedido ao terminal
// CANCELADO; pedidos já terminais não podem ser cancelados.
func (s *Service) Cancelar(ctx context.Context, id uint) (*Response, error) {
	var p models.Pedido
	if err := s.DB.WithContext(ctx).Preload("Itens.Produto").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pedido não encontrado: %d", id)
		}
		return nil, err
	}

	if pedido.Terminal(p.Status) {
		return nil, apperr.Conflict("status %s não pode ser cancelado", p.Status)
	}

	result := s.DB.WithContext(ctx).Model(&models.Pedido{}).
		Where("id = ? AND versao = ?", p.ID, p.Versao).
		Updates(map[string]interface{}{
			"status": pedido.StatusCancelado,
			"versao": p.Versao + 1,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Conflict("pedido %d foi alterado por outra operação", id)
	}

	p.Status = pedido.StatusCancelado
	p.Versao++
	return toResponse(&p), nil
}

// FilaCozinha projeta o que a cozinha deve trabalhar agora: todo pedido fora
// dos terminais, do mais antigo para o mais novo.
func (s *Service) FilaCozinha(ctx context.Context) ([]*Response, error) {
	var pedidos []models.Pedido
	err := s.DB.WithContext(ctx).
		Where("status NOT IN ?", []string{pedido.StatusConcluido, pedido.StatusCancelado}).
		Order("data_criacao ASC").
		Preload("Itens.Produto").
		Find(&pedidos).Error
	if err != nil {
		return nil, err
	}

	fila := make([]*Response, 0, len(pedidos))
	for i := range pedidos {
		fila = append(fila, toResponse(&pedidos[i]))
	}
	return fila, nil
}

func (s *Service) Buscar(ctx context.Context, id uint) (*models.Pedido, error) {
	var p models.Pedido
	if err := s.DB.WithContext(ctx).Preload("Itens.Produto").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("pedido não encontrado: %d", id)
		}
		return nil, err
	}
	return &p, nil
}

func toResponse(p *models.Pedido) *Response {
	return &Response{
		ID:             p.ID,
		Cliente:        p.Cliente,
		Status:         strings.ToLower(p.Status),
		Tipo:           p.Tipo,
		Total:          p.Total,
		DataHora:       p.DataCriacao.Format("15:04"),
		DescricaoItens: pedido.DescricaoItens(p),
	}
}
