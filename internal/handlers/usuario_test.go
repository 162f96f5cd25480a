package handlers

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
)

func TestUsuarioGetMe(t *testing.T) {
	db := newTestDB(t)
	h := &UsuarioHandler{DB: db}
	usuario := seedUsuario(t, db, "João", "joao@example.com", models.TipoCliente)

	c, rec := newRequest(t, http.MethodGet, "/api/usuarios/me", nil)
	comoUsuario(c, usuario)
	require.NoError(t, h.GetMe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp usuarioResponse
	decodeJSON(t, rec, &resp)
	require.Equal(t, usuario.ID, resp.ID)
	require.NotNil(t, resp.Cliente)
	require.Nil(t, resp.Empregado)
}

func TestUsuarioGetMeSemSessao(t *testing.T) {
	h := &UsuarioHandler{DB: newTestDB(t)}

	c, _ := newRequest(t, http.MethodGet, "/api/usuarios/me", nil)
	err := h.GetMe(c)
	require.Error(t, err)
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestUsuarioUpdateMe(t *testing.T) {
	db := newTestDB(t)
	h := &UsuarioHandler{DB: db}
	usuario := seedUsuario(t, db, "João", "joao@example.com", models.TipoCliente)

	c, _ := newRequest(t, http.MethodPut, "/api/usuarios/me", map[string]any{"nome": ""})
	comoUsuario(c, usuario)
	err := h.UpdateMe(c)
	require.True(t, apperr.IsValidation(err))
	require.Contains(t, err.(*apperr.Error).Fields, "nome")

	c, rec := newRequest(t, http.MethodPut, "/api/usuarios/me", map[string]any{
		"nome":     "João da Silva",
		"telefone": "11 99999-0000",
	})
	comoUsuario(c, usuario)
	require.NoError(t, h.UpdateMe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var salvo models.Usuario
	require.NoError(t, db.First(&salvo, usuario.ID).Error)
	require.Equal(t, "João da Silva", salvo.Nome)
	require.Equal(t, "11 99999-0000", salvo.Telefone)
}

func TestUsuarioEnderecos(t *testing.T) {
	db := newTestDB(t)
	h := &UsuarioHandler{DB: db}
	dono := seedUsuario(t, db, "João", "joao@example.com", models.TipoCliente)
	outro := seedUsuario(t, db, "Maria", "maria@example.com", models.TipoCliente)

	c, rec := newRequest(t, http.MethodPost, "/api/usuarios/me/enderecos", map[string]any{
		"logradouro": "Rua das Flores",
		"numero":     "100",
		"bairro":     "Centro",
		"cidade":     "São Paulo",
		"estado":     "SP",
		"cep":        "01000-000",
	})
	comoUsuario(c, dono)
	require.NoError(t, h.AddEndereco(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp usuarioResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Enderecos, 1)
	endereco := resp.Enderecos[0]
	require.Equal(t, dono.ID, endereco.UsuarioID)

	// Outro usuário não remove o que não é dele.
	c, _ = newRequest(t, http.MethodDelete, "/api/usuarios/me/enderecos/1", nil)
	comoUsuario(c, outro)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(endereco.ID)))
	err := h.RemoveEndereco(c)
	require.Error(t, err)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	c, rec = newRequest(t, http.MethodDelete, "/api/usuarios/me/enderecos/1", nil)
	comoUsuario(c, dono)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(endereco.ID)))
	require.NoError(t, h.RemoveEndereco(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var restantes int64
	require.NoError(t, db.Model(&models.Endereco{}).Count(&restantes).Error)
	require.Zero(t, restantes)
}

func TestUsuarioListFiltraPorTipoESoAtivos(t *testing.T) {
	db := newTestDB(t)
	h := &UsuarioHandler{DB: db}
	seedUsuario(t, db, "Ana", "ana@example.com", models.TipoCliente)
	seedUsuario(t, db, "Bruno", "bruno@example.com", models.TipoFuncionario)
	inativo := seedUsuario(t, db, "Carlos", "carlos@example.com", models.TipoCliente)
	inativo.Ativo = false
	require.NoError(t, db.Save(inativo).Error)

	c, rec := newRequest(t, http.MethodGet, "/api/usuarios", nil)
	require.NoError(t, h.List(c))

	var resp struct {
		Data []usuarioResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Data, 2)
	require.Equal(t, int64(2), resp.Meta.Total)

	c, rec = newRequest(t, http.MethodGet, "/api/usuarios?tipo=FUNCIONARIO", nil)
	require.NoError(t, h.List(c))
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Data, 1)
	require.Equal(t, "Bruno", resp.Data[0].Nome)
}

func TestUsuarioDeactivate(t *testing.T) {
	db := newTestDB(t)
	h := &UsuarioHandler{DB: db}
	usuario := seedUsuario(t, db, "João", "joao@example.com", models.TipoCliente)

	c, rec := newRequest(t, http.MethodDelete, "/api/usuarios/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(usuario.ID)))
	require.NoError(t, h.Deactivate(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, _ = newRequest(t, http.MethodGet, "/api/usuarios/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(usuario.ID)))
	require.True(t, apperr.IsNotFound(h.GetByID(c)))
}
