package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/service/token"
	"github.com/ivensmba/padoca/internal/util"
)

type UsuarioHandler struct {
	DB *gorm.DB
}

// usuarioResponse carrega só o payload do papel: pontos de fidelidade para
// CLIENTE, matrícula/cargo para FUNCIONARIO.
type usuarioResponse struct {
	ID        uint              `json:"id"`
	Nome      string            `json:"nome"`
	Email     string            `json:"email"`
	Telefone  string            `json:"telefone,omitempty"`
	Tipo      string            `json:"tipo"`
	Ativo     bool              `json:"ativo"`
	Cliente   *clientePayload   `json:"cliente,omitempty"`
	Empregado *empregadoPayload `json:"funcionario,omitempty"`
	Enderecos []models.Endereco `json:"enderecos,omitempty"`
}

type clientePayload struct {
	PontosFidelidade int `json:"pontosFidelidade"`
}

type empregadoPayload struct {
	Matricula string `json:"matricula"`
	Cargo     string `json:"cargo"`
}

func toUsuarioResponse(u *models.Usuario) *usuarioResponse {
	resp := &usuarioResponse{
		ID:        u.ID,
		Nome:      u.Nome,
		Email:     u.Email,
		Telefone:  u.Telefone,
		Tipo:      u.Tipo,
		Ativo:     u.Ativo,
		Enderecos: u.Enderecos,
	}
	switch u.Tipo {
	case models.TipoCliente:
		resp.Cliente = &clientePayload{PontosFidelidade: u.PontosFidelidade}
	case models.TipoFuncionario:
		resp.Empregado = &empregadoPayload{Matricula: u.Matricula, Cargo: u.Cargo}
	}
	return resp
}

func (h *UsuarioHandler) atual(c echo.Context) (*models.Usuario, error) {
	id, err := token.UserID(c)
	if err != nil {
		return nil, err
	}
	var usuario models.Usuario
	if err := h.DB.Preload("Enderecos").First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("usuário da sessão não existe mais")
		}
		return nil, err
	}
	return &usuario, nil
}

func (h *UsuarioHandler) GetMe(c echo.Context) error {
	usuario, err := h.atual(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUsuarioResponse(usuario))
}

func (h *UsuarioHandler) UpdateMe(c echo.Context) error {
	usuario, err := h.atual(c)
	if err != nil {
		return err
	}

	var req struct {
		Nome     string `json:"nome"`
		Telefone string `json:"telefone"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	if req.Nome == "" {
		return apperr.Validation("perfil inválido", map[string]string{"nome": "não pode ser vazio"})
	}

	usuario.Nome = req.Nome
	usuario.Telefone = req.Telefone
	if err := h.DB.Save(usuario).Error; err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUsuarioResponse(usuario))
}

func (h *UsuarioHandler) AddEndereco(c echo.Context) error {
	usuario, err := h.atual(c)
	if err != nil {
		return err
	}

	var req models.Endereco
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}

	endereco := models.Endereco{
		UsuarioID:   usuario.ID,
		Logradouro:  req.Logradouro,
		Numero:      req.Numero,
		Complemento: req.Complemento,
		Bairro:      req.Bairro,
		Cidade:      req.Cidade,
		Estado:      req.Estado,
		CEP:         req.CEP,
		Tipo:        req.Tipo,
	}
	if err := h.DB.Create(&endereco).Error; err != nil {
		return err
	}

	usuario.Enderecos = append(usuario.Enderecos, endereco)
	return c.JSON(http.StatusOK, toUsuarioResponse(usuario))
}

func (h *UsuarioHandler) RemoveEndereco(c echo.Context) error {
	usuario, err := h.atual(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var endereco models.Endereco
	if err := h.DB.First(&endereco, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("endereço não encontrado: %d", id)
		}
		return err
	}
	if endereco.UsuarioID != usuario.ID {
		return apperr.Forbidden("este endereço pertence a outro usuário")
	}

	if err := h.DB.Delete(&endereco).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List é paginado e filtra por ?tipo=; só usuários ativos aparecem.
func (h *UsuarioHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	query := h.DB.Model(&models.Usuario{}).Where("ativo = ?", true)
	if tipo := c.QueryParam("tipo"); tipo != "" {
		query = query.Where("tipo = ?", tipo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var usuarios []models.Usuario
	if err := query.Order("nome ASC").Offset(offset).Limit(limit).Find(&usuarios).Error; err != nil {
		return err
	}

	data := make([]*usuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		data = append(data, toUsuarioResponse(&usuarios[i]))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": data,
		"meta": echo.Map{
			"total": total,
			"size":  limit,
		},
	})
}

func (h *UsuarioHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var usuario models.Usuario
	if err := h.DB.Preload("Enderecos").Where("ativo = ?", true).First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("usuário não encontrado ou inativo: %d", id)
		}
		return err
	}
	return c.JSON(http.StatusOK, toUsuarioResponse(&usuario))
}

// Deactivate é exclusão lógica; endereços permanecem com o registro.
func (h *UsuarioHandler) Deactivate(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return apperr.Validation("id inválido", nil)
	}

	var usuario models.Usuario
	if err := h.DB.First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("usuário não encontrado: %d", id)
		}
		return err
	}

	usuario.Ativo = false
	if err := h.DB.Save(&usuario).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
