package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/hash"
	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/mykafka"
	"github.com/ivensmba/padoca/internal/service/token"
)

type AuthHandler struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	Producer      *mykafka.Producer
}

type registerRequest struct {
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	CPF      string `json:"cpf"`
	Telefone string `json:"telefone"`

	// Aceito apenas na rota de gestão.
	Tipo      string `json:"tipo"`
	Matricula string `json:"matricula"`
	Cargo     string `json:"cargo"`
}

func (r registerRequest) validar() error {
	fields := map[string]string{}
	if r.Nome == "" {
		fields["nome"] = "não pode ser vazio"
	}
	if r.Email == "" {
		fields["email"] = "não pode ser vazio"
	}
	if len(r.Senha) < 6 {
		fields["senha"] = "deve ter ao menos 6 caracteres"
	}
	if len(fields) > 0 {
		return apperr.Validation("cadastro inválido", fields)
	}
	return nil
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("kafka publish error: %v", err)
	}
}

func (h *AuthHandler) criar(c echo.Context, req registerRequest, tipo string) error {
	if err := req.validar(); err != nil {
		return err
	}

	var existente models.Usuario
	err := h.DB.Where("email = ?", req.Email).First(&existente).Error
	if err == nil {
		return apperr.Conflict("já existe um usuário cadastrado com este e-mail")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if req.CPF != "" {
		err := h.DB.Where("cpf = ?", req.CPF).First(&existente).Error
		if err == nil {
			return apperr.Conflict("já existe um usuário cadastrado com este CPF")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	senhaHash, err := hash.HashPassword(req.Senha)
	if err != nil {
		return err
	}

	usuario := models.Usuario{
		Nome:      req.Nome,
		Email:     req.Email,
		SenhaHash: senhaHash,
		CPF:       req.CPF,
		Telefone:  req.Telefone,
		Tipo:      tipo,
		Ativo:     true,
	}
	if tipo == models.TipoFuncionario {
		usuario.Matricula = req.Matricula
		usuario.Cargo = req.Cargo
	}

	if err := h.DB.Create(&usuario).Error; err != nil {
		return err
	}

	h.publish(c, fmt.Sprint(usuario.ID), map[string]interface{}{
		"type":    "usuario_criado",
		"usuario": usuario.ID,
		"email":   usuario.Email,
		"tipo":    usuario.Tipo,
	})

	return c.JSON(http.StatusCreated, toUsuarioResponse(&usuario))
}

// Register é o autocadastro público: o papel é sempre CLIENTE,
// independentemente do que vier no corpo.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}
	return h.criar(c, req, models.TipoCliente)
}

// RegisterByAdmin cadastra qualquer papel; a rota restringe a GESTOR/ADMIN.
func (h *AuthHandler) RegisterByAdmin(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}

	tipos := []string{
		models.TipoCliente,
		models.TipoFuncionario,
		models.TipoGestor,
		models.TipoAdmin,
		models.TipoEntregador,
	}
	if !slices.Contains(tipos, req.Tipo) {
		return apperr.Validation("cadastro inválido", map[string]string{
			"tipo": "deve ser um de CLIENTE, FUNCIONARIO, GESTOR, ADMIN, ENTREGADOR",
		})
	}
	return h.criar(c, req, req.Tipo)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Validation("corpo inválido", nil)
	}

	var usuario models.Usuario
	if err := h.DB.Where("email = ? AND ativo = ?", req.Email, true).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unauthorized("credenciais inválidas")
		}
		return err
	}

	if !hash.CheckPassword(usuario.SenhaHash, req.Senha) {
		return apperr.Unauthorized("credenciais inválidas")
	}

	accessToken, err := token.SignAccessToken(usuario.ID, usuario.Tipo, h.JWTSecret)
	if err != nil {
		return err
	}
	refreshToken, err := token.SignRefreshToken(usuario.ID, usuario.Tipo, h.RefreshSecret)
	if err != nil {
		return err
	}
	if err := token.SaveRefreshToken(h.DB, refreshToken, usuario.ID, usuario.Tipo); err != nil {
		return err
	}

	c.SetCookie(token.CreateCookie("accessToken", accessToken, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(token.CreateCookie("refreshToken", refreshToken, "/", time.Now().Add(token.RefreshTTL)))

	h.publish(c, fmt.Sprint(usuario.ID), map[string]interface{}{
		"type":    "usuario_logado",
		"usuario": usuario.ID,
		"email":   usuario.Email,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"usuario":       toUsuarioResponse(&usuario),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	refreshCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return apperr.Validation("refresh token ausente", nil)
	}

	svc := token.TokenService{DB: h.DB, JWTSecret: h.JWTSecret, RefreshSecret: h.RefreshSecret}
	if err := svc.RevokeRefresh(refreshCookie.Value); err != nil {
		return err
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(token.CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(token.CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "sessão encerrada"})
}
