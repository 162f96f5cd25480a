package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/cache"
	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/mykafka"
	"github.com/ivensmba/padoca/internal/service/search"
)

const cacheKeyProdutosAtivos = "produtos:ativos"

type ProdutoHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
	Cache    *cache.Cache
}

type produtoRequest struct {
	Nome                  string          `json:"nome"`
	Descricao             string          `json:"descricao"`
	Preco                 decimal.Decimal `json:"preco"`
	ImagemURL             string          `json:"imagemUrl"`
	CategoriaID           uint            `json:"categoriaId"`
	QuantidadeEstoque     int             `json:"quantidadeEstoque"`
	EstoqueMinimo         int             `json:"estoqueMinimo"`
	DiaDaSemanaDisponivel string          `json:"diaDaSemanaDisponivel"`
	Ativo                 *bool           `json:"ativo"`
}

var precoMinimo = decimal.NewFromFloat(0.01)

func (r produtoRequest) validar() error {
	fields := map[string]string{}
	if r.Nome == "" {
		fields["nome"] = "não pode ser vazio"
	}
	if r.Preco.LessThan(precoMinimo) {
		fields["preco"] = "deve ser no mínimo 0.01"
	}
	if r.CategoriaID == 0 {
		fields["categoriaId"] = "obrigatório"
	}
	if r.QuantidadeEstoque < 0 {
		fields["quantidadeEstoque"] = "não pode ser negativo"
	}
	if len(fields) > 0 {
		return apperr.Validation("produto inválido", fields)
	}
	return nil
}

func (h *ProdutoHandler) publish(c echo.Context, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "produto_events", fmt.Sprint(event["produtoID"]), event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

// afterWrite mantém o índice de busca e o cache coerentes com o banco. Ambos
// são melhor-esforço: o banco é a fonte da verdade.
func (h *ProdutoHandler) afterWrite(c echo.Context, p *models.Produto, removed bool) {
	ctx := c.Request().Context()
	if h.ES != nil {
		var err error
		if removed {
			err = search.DeleteProduto(ctx, h.ES, h.Index, p.ID)
		} else {
			err = search.IndexProduto(ctx, h.ES, h.Index, p)
		}
		if err != nil {
			c.Logger().Errorf("elasticsearch sync error: %v", err)
		}
	}
	if err := h.Cache.Invalidate(ctx, cacheKeyProdutosAtivos); err != nil {
		c.Logger().Errorf("cache invalidate error: %v", err)
	}
}

func (h *ProdutoHandler) categoria(id uint) (*models.Categoria, error) {
	var categoria models.Categoria
	if err := h.DB.First(&categoria, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("categoria não encontrada: %d", id)
		}
		return nil, err
	}
	return &categoria, nil
}

func (h *ProdutoHandler) Create(c echo.Context) error {
	var req produtoRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	if err := req.validar(); err != nil {
		return err
	}

	categoria, err := h.categoria(req.CategoriaID)
	if err != nil {
		return err
	}

	estoqueMinimo := req.EstoqueMinimo
	if estoqueMinimo == 0 {
		estoqueMinimo = 5
	}

	produto := models.Produto{
		Nome:                  req.Nome,
		Descricao:             req.Descricao,
		Preco:                 req.Preco,
		ImagemURL:             req.ImagemURL,
		CategoriaID:           categoria.ID,
		Ativo:                 true,
		QuantidadeEstoque:     req.QuantidadeEstoque,
		EstoqueMinimo:         estoqueMinimo,
		DiaDaSemanaDisponivel: req.DiaDaSemanaDisponivel,
	}
	if err := h.DB.Create(&produto).Error; err != nil {
		return err
	}
	produto.Categoria = *categoria

	h.publish(c, map[string]interface{}{
		"type":      "produto_criado",
		"produtoID": produto.ID,
		"nome":      produto.Nome,
	})
	h.afterWrite(c, &produto, false)

	return c.JSON(http.StatusCreated, produto)
}

// List devolve o catálogo ativo; ?categoria=NOME filtra pelo nome da
// categoria. A listagem cheia é servida do cache quando há Redis.
func (h *ProdutoHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	categoriaNome := c.QueryParam("categoria")

	if categoriaNome == "" {
		var cached []models.Produto
		if hit, err := h.Cache.Get(ctx, cacheKeyProdutosAtivos, &cached); err != nil {
			c.Logger().Errorf("cache get error: %v", err)
		} else if hit {
			return c.JSON(http.StatusOK, cached)
		}
	}

	query := h.DB.WithContext(ctx).Preload("Categoria").Where("produtos.ativo = ?", true)
	if categoriaNome != "" {
		query = query.
			Joins("JOIN categoria ON categoria.id = produtos.categoria_id").
			Where("categoria.nome = ?", categoriaNome)
	}

	var produtos []models.Produto
	if err := query.Order("produtos.id ASC").Find(&produtos).Error; err != nil {
		return err
	}

	if categoriaNome == "" {
		if err := h.Cache.Set(ctx, cacheKeyProdutosAtivos, produtos); err != nil {
			c.Logger().Errorf("cache set error: %v", err)
		}
	}

	return c.JSON(http.StatusOK, produtos)
}

// ListAlmoco devolve o cardápio de almoço do dia: pratos marcados para o dia
// informado mais os fixos, sempre só ativos.
func (h *ProdutoHandler) ListAlmoco(c echo.Context) error {
	dia := c.QueryParam("dia")
	if dia == "" {
		return apperr.Validation("dia obrigatório", map[string]string{"dia": "ex: Segunda-feira"})
	}

	var produtos []models.Produto
	err := h.DB.WithContext(c.Request().Context()).
		Preload("Categoria").
		Joins("JOIN categoria ON categoria.id = produtos.categoria_id").
		Where("categoria.tipo_exibicao = ?", "ALMOCO").
		Where("produtos.ativo = ?", true).
		Where("produtos.dia_da_semana_disponivel = ? OR produtos.dia_da_semana_disponivel = '' OR produtos.dia_da_semana_disponivel IS NULL", dia).
		Order("produtos.id ASC").
		Find(&produtos).Error
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, produtos)
}

func (h *ProdutoHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var produto models.Produto
	if err := h.DB.Preload("Categoria").First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("produto não encontrado: %d", id)
		}
		return err
	}
	return c.JSON(http.StatusOK, produto)
}

func (h *ProdutoHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var req produtoRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	if err := req.validar(); err != nil {
		return err
	}

	var produto models.Produto
	if err := h.DB.First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("produto não encontrado: %d", id)
		}
		return err
	}

	categoria, err := h.categoria(req.CategoriaID)
	if err != nil {
		return err
	}

	produto.Nome = req.Nome
	produto.Descricao = req.Descricao
	produto.Preco = req.Preco
	produto.QuantidadeEstoque = req.QuantidadeEstoque
	produto.EstoqueMinimo = req.EstoqueMinimo
	produto.DiaDaSemanaDisponivel = req.DiaDaSemanaDisponivel
	produto.CategoriaID = categoria.ID
	if req.ImagemURL != "" {
		produto.ImagemURL = req.ImagemURL
	}
	if req.Ativo != nil {
		produto.Ativo = *req.Ativo
	}

	if err := h.DB.Save(&produto).Error; err != nil {
		return err
	}
	produto.Categoria = *categoria

	h.publish(c, map[string]interface{}{
		"type":      "produto_atualizado",
		"produtoID": produto.ID,
		"nome":      produto.Nome,
	})
	h.afterWrite(c, &produto, !produto.Ativo)

	return c.JSON(http.StatusOK, produto)
}

// Deactivate tira o produto do cardápio sem apagar o histórico de pedidos
// que o referenciam.
func (h *ProdutoHandler) Deactivate(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var produto models.Produto
	if err := h.DB.First(&produto, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("produto não encontrado: %d", id)
		}
		return err
	}

	produto.Ativo = false
	if err := h.DB.Save(&produto).Error; err != nil {
		return err
	}

	h.publish(c, map[string]interface{}{
		"type":      "produto_desativado",
		"produtoID": produto.ID,
	})
	h.afterWrite(c, &produto, true)

	return c.NoContent(http.StatusNoContent)
}
