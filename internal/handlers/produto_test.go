package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
)

func TestProdutoCreate(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db, Index: "produto"}
	categoria := seedCategoria(t, db, "PAES", "")

	c, rec := newRequest(t, http.MethodPost, "/api/produtos", map[string]any{
		"nome":              "Pão Francês",
		"preco":             "0.75",
		"categoriaId":       categoria.ID,
		"quantidadeEstoque": 100,
	})
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp models.Produto
	decodeJSON(t, rec, &resp)
	require.True(t, resp.Ativo)
	require.True(t, decimal.RequireFromString("0.75").Equal(resp.Preco))
	require.Equal(t, 5, resp.EstoqueMinimo)
	require.Equal(t, "PAES", resp.Categoria.Nome)
}

func TestProdutoCreatePrecoAbaixoDoMinimo(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	categoria := seedCategoria(t, db, "PAES", "")

	for _, preco := range []string{"0", "0.001", "-1"} {
		c, _ := newRequest(t, http.MethodPost, "/api/produtos", map[string]any{
			"nome":        "Pão Francês",
			"preco":       preco,
			"categoriaId": categoria.ID,
		})
		err := h.Create(c)
		require.Error(t, err, preco)
		require.True(t, apperr.IsValidation(err), preco)
		require.Contains(t, err.(*apperr.Error).Fields, "preco", preco)
	}
}

func TestProdutoCreateCategoriaInexistente(t *testing.T) {
	h := &ProdutoHandler{DB: newTestDB(t)}

	c, _ := newRequest(t, http.MethodPost, "/api/produtos", map[string]any{
		"nome":        "Pão Francês",
		"preco":       "0.75",
		"categoriaId": 999,
	})
	err := h.Create(c)
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}

func TestProdutoListSoAtivosComFiltroDeCategoria(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	paes := seedCategoria(t, db, "PAES", "")
	doces := seedCategoria(t, db, "DOCES", "")

	seedProduto(t, db, paes, "Pão Francês", "0.75")
	seedProduto(t, db, doces, "Brigadeiro", "2.50")
	inativo := seedProduto(t, db, paes, "Pão de Forma", "8.00")
	inativo.Ativo = false
	require.NoError(t, db.Save(inativo).Error)

	c, rec := newRequest(t, http.MethodGet, "/api/produtos", nil)
	require.NoError(t, h.List(c))

	var todos []models.Produto
	decodeJSON(t, rec, &todos)
	require.Len(t, todos, 2)

	c, rec = newRequest(t, http.MethodGet, "/api/produtos?categoria=DOCES", nil)
	require.NoError(t, h.List(c))

	var filtrados []models.Produto
	decodeJSON(t, rec, &filtrados)
	require.Len(t, filtrados, 1)
	require.Equal(t, "Brigadeiro", filtrados[0].Nome)
}

func TestProdutoListAlmoco(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	almoco := seedCategoria(t, db, "PRATOS", "ALMOCO")
	paes := seedCategoria(t, db, "PAES", "")

	fixo := seedProduto(t, db, almoco, "Arroz e Feijão", "18.00")
	segunda := seedProduto(t, db, almoco, "Feijoada", "32.00")
	segunda.DiaDaSemanaDisponivel = "Segunda-feira"
	require.NoError(t, db.Save(segunda).Error)
	terca := seedProduto(t, db, almoco, "Dobradinha", "28.00")
	terca.DiaDaSemanaDisponivel = "Terça-feira"
	require.NoError(t, db.Save(terca).Error)
	seedProduto(t, db, paes, "Pão Francês", "0.75")

	c, _ := newRequest(t, http.MethodGet, "/api/produtos/almoco", nil)
	err := h.ListAlmoco(c)
	require.Error(t, err)
	require.True(t, apperr.IsValidation(err))

	c, rec := newRequest(t, http.MethodGet, "/api/produtos/almoco?dia=Segunda-feira", nil)
	require.NoError(t, h.ListAlmoco(c))

	var cardapio []models.Produto
	decodeJSON(t, rec, &cardapio)
	require.Len(t, cardapio, 2)
	nomes := []string{cardapio[0].Nome, cardapio[1].Nome}
	require.Contains(t, nomes, fixo.Nome)
	require.Contains(t, nomes, "Feijoada")
}

func TestProdutoGetByID(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	categoria := seedCategoria(t, db, "PAES", "")
	produto := seedProduto(t, db, categoria, "Pão Francês", "0.75")

	c, rec := newRequest(t, http.MethodGet, "/api/produtos/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetByID(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Produto
	decodeJSON(t, rec, &resp)
	require.Equal(t, produto.Nome, resp.Nome)

	c, _ = newRequest(t, http.MethodGet, "/api/produtos/999", nil)
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.True(t, apperr.IsNotFound(h.GetByID(c)))

	c, _ = newRequest(t, http.MethodGet, "/api/produtos/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.True(t, apperr.IsValidation(h.GetByID(c)))
}

func TestProdutoUpdate(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	categoria := seedCategoria(t, db, "PAES", "")
	produto := seedProduto(t, db, categoria, "Pão Francês", "0.75")

	inativo := false
	c, rec := newRequest(t, http.MethodPut, "/api/produtos/1", map[string]any{
		"nome":        "Pão Francês Integral",
		"preco":       "0.90",
		"categoriaId": categoria.ID,
		"ativo":       inativo,
	})
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var salvo models.Produto
	require.NoError(t, db.First(&salvo, produto.ID).Error)
	require.Equal(t, "Pão Francês Integral", salvo.Nome)
	require.True(t, decimal.RequireFromString("0.90").Equal(salvo.Preco))
	require.False(t, salvo.Ativo)
}

func TestProdutoDeactivate(t *testing.T) {
	db := newTestDB(t)
	h := &ProdutoHandler{DB: db}
	categoria := seedCategoria(t, db, "PAES", "")
	produto := seedProduto(t, db, categoria, "Pão Francês", "0.75")

	c, rec := newRequest(t, http.MethodDelete, "/api/produtos/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Deactivate(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Some das listagens mas continua no banco para o histórico.
	var salvo models.Produto
	require.NoError(t, db.First(&salvo, produto.ID).Error)
	require.False(t, salvo.Ativo)

	c, rec = newRequest(t, http.MethodGet, "/api/produtos", nil)
	require.NoError(t, h.List(c))
	var ativos []models.Produto
	decodeJSON(t, rec, &ativos)
	require.Empty(t, ativos)
}
