package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ivensmba/padoca/internal/apperr"
)

func TestErrorHandlerTraduzErrosDeDominio(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	cases := []struct {
		rota   string
		err    error
		status int
	}{
		{"/nao-encontrado", apperr.NotFound("pedido não encontrado: %d", 7), http.StatusNotFound},
		{"/conflito", apperr.Conflict("status CONCLUIDO não pode ser avançado"), http.StatusConflict},
		{"/validacao", apperr.Validation("pedido inválido", map[string]string{"tipo": "deve ser BALCAO ou ENTREGA"}), http.StatusBadRequest},
		{"/sem-sessao", apperr.Unauthorized("credenciais inválidas"), http.StatusUnauthorized},
		{"/proibido", apperr.Forbidden("papel CLIENTE não tem acesso a este recurso"), http.StatusForbidden},
		{"/http-err", echo.NewHTTPError(http.StatusServiceUnavailable, "busca indisponível"), http.StatusServiceUnavailable},
		{"/interno", errors.New("detalhe que não deve vazar"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := tc.err
		e.GET(tc.rota, func(echo.Context) error { return err })
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.rota, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, tc.status, rec.Code, tc.rota)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), tc.rota)
		require.Contains(t, body, "error", tc.rota)
	}
}

func TestErrorHandlerCorpoDeValidacaoE500(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	e.GET("/validacao", func(echo.Context) error {
		return apperr.Validation("feedback inválido", map[string]string{"avaliacao": "deve estar entre 1 e 5"})
	})
	e.GET("/interno", func(echo.Context) error {
		return errors.New("coluna xyz não existe")
	})

	req := httptest.NewRequest(http.MethodGet, "/validacao", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "feedback inválido", body.Error)
	require.Equal(t, "deve estar entre 1 e 5", body.Fields["avaliacao"])

	// O detalhe interno fica no log, nunca no corpo.
	req = httptest.NewRequest(http.MethodGet, "/interno", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}
