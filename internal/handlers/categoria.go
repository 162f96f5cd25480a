package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
)

type CategoriaHandler struct {
	DB *gorm.DB
}

type categoriaRequest struct {
	Nome         string `json:"nome"`
	Descricao    string `json:"descricao"`
	TipoExibicao string `json:"tipoExibicao"`
}

// nomeDisponivel garante a unicidade do nome; exceto permite o próprio
// registro em atualizações.
func (h *CategoriaHandler) nomeDisponivel(nome string, exceto uint) error {
	var existente models.Categoria
	query := h.DB.Where("nome = ?", nome)
	if exceto != 0 {
		query = query.Where("id <> ?", exceto)
	}
	err := query.First(&existente).Error
	if err == nil {
		return apperr.Conflict("já existe uma categoria com o nome %s", nome)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (h *CategoriaHandler) List(c echo.Context) error {
	var categorias []models.Categoria
	if err := h.DB.Where("ativo = ?", true).Order("nome ASC").Find(&categorias).Error; err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categorias)
}

func (h *CategoriaHandler) Create(c echo.Context) error {
	var req categoriaRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	if req.Nome == "" {
		return apperr.Validation("categoria inválida", map[string]string{"nome": "não pode ser vazio"})
	}

	nome := strings.ToUpper(req.Nome)
	if err := h.nomeDisponivel(nome, 0); err != nil {
		return err
	}

	categoria := models.Categoria{
		Nome:         nome,
		Descricao:    req.Descricao,
		TipoExibicao: req.TipoExibicao,
		Ativo:        true,
	}
	if err := h.DB.Create(&categoria).Error; err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/categorias/"+strconv.Itoa(int(categoria.ID)))
	return c.JSON(http.StatusCreated, categoria)
}

func (h *CategoriaHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var req categoriaRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	if req.Nome == "" {
		return apperr.Validation("categoria inválida", map[string]string{"nome": "não pode ser vazio"})
	}

	var categoria models.Categoria
	if err := h.DB.First(&categoria, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("categoria não encontrada: %d", id)
		}
		return err
	}

	nome := strings.ToUpper(req.Nome)
	if err := h.nomeDisponivel(nome, categoria.ID); err != nil {
		return err
	}

	categoria.Nome = nome
	categoria.Descricao = req.Descricao
	categoria.TipoExibicao = req.TipoExibicao
	if err := h.DB.Save(&categoria).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categoria)
}

// Delete é lógico: a categoria some das listagens mas os produtos dela
// continuam referenciáveis.
func (h *CategoriaHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var categoria models.Categoria
	if err := h.DB.First(&categoria, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("categoria não encontrada: %d", id)
		}
		return err
	}

	categoria.Ativo = false
	if err := h.DB.Save(&categoria).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
