package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/config"
	"github.com/ivensmba/padoca/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func newRequest(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

// comoUsuario simula o que o middleware de autenticação deixa no contexto.
func comoUsuario(c echo.Context, u *models.Usuario) {
	c.Set("userID", u.ID)
	c.Set("role", u.Tipo)
}

func seedCategoria(t *testing.T, db *gorm.DB, nome, tipoExibicao string) *models.Categoria {
	t.Helper()
	categoria := models.Categoria{Nome: nome, TipoExibicao: tipoExibicao, Ativo: true}
	require.NoError(t, db.Create(&categoria).Error)
	return &categoria
}

func seedProduto(t *testing.T, db *gorm.DB, categoria *models.Categoria, nome, preco string) *models.Produto {
	t.Helper()
	produto := models.Produto{
		Nome:        nome,
		Preco:       decimal.RequireFromString(preco),
		CategoriaID: categoria.ID,
		Ativo:       true,
	}
	require.NoError(t, db.Create(&produto).Error)
	return &produto
}

func seedUsuario(t *testing.T, db *gorm.DB, nome, email, tipo string) *models.Usuario {
	t.Helper()
	usuario := models.Usuario{
		Nome:      nome,
		Email:     email,
		SenhaHash: "hash-irrelevante",
		Tipo:      tipo,
		Ativo:     true,
	}
	require.NoError(t, db.Create(&usuario).Error)
	return &usuario
}
