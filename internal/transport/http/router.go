package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/handlers"
	"github.com/ivensmba/padoca/internal/models"
	"github.com/ivensmba/padoca/internal/service/token"
)

type Deps struct {
	DB               *gorm.DB
	Log              *slog.Logger
	AuthHandler      *handlers.AuthHandler
	UsuarioHandler   *handlers.UsuarioHandler
	ProdutoHandler   *handlers.ProdutoHandler
	CategoriaHandler *handlers.CategoriaHandler
	PedidoHandler    *handlers.PedidoHandler
	FeedbackHandler  *handlers.FeedbackHandler
	DashboardHandler *handlers.DashboardHandler
	SearchHandler    *handlers.SearchHandler
	TokenService     *token.TokenService
}

// ErrorHandler traduz os erros de domínio uma única vez na borda: 404/409/400
// conforme o tipo, com o mapa campo->mensagem nas validações. Qualquer outro
// erro vira 500 sem vazar detalhe para o chamador, mas logado por inteiro.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			status := http.StatusInternalServerError
			switch appErr.Kind {
			case apperr.KindNotFound:
				status = http.StatusNotFound
			case apperr.KindConflict:
				status = http.StatusConflict
			case apperr.KindValidation:
				status = http.StatusBadRequest
			case apperr.KindUnauthorized:
				status = http.StatusUnauthorized
			case apperr.KindForbidden:
				status = http.StatusForbidden
			}

			body := echo.Map{"error": appErr.Message}
			if len(appErr.Fields) > 0 {
				body["fields"] = appErr.Fields
			}
			if err := c.JSON(status, body); err != nil {
				log.Error("error response write failed", "err", err)
			}
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if err := c.JSON(httpErr.Code, echo.Map{"error": httpErr.Message}); err != nil {
				log.Error("error response write failed", "err", err)
			}
			return
		}

		log.Error("unhandled error",
			"err", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
		)
		if err := c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"}); err != nil {
			log.Error("error response write failed", "err", err)
		}
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler(d.Log)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	autenticado := d.TokenService.Middleware()
	equipe := d.TokenService.Middleware(
		models.TipoFuncionario, models.TipoGestor, models.TipoAdmin, models.TipoEntregador,
	)
	balcao := d.TokenService.Middleware(
		models.TipoFuncionario, models.TipoGestor, models.TipoAdmin,
	)
	gestao := d.TokenService.Middleware(models.TipoGestor, models.TipoAdmin)

	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/logout", d.AuthHandler.Logout, autenticado)

	api.POST("/usuarios", d.AuthHandler.Register)
	api.POST("/usuarios/admin", d.AuthHandler.RegisterByAdmin, gestao)
	api.GET("/usuarios", d.UsuarioHandler.List, gestao)
	api.GET("/usuarios/me", d.UsuarioHandler.GetMe, autenticado)
	api.PUT("/usuarios/me", d.UsuarioHandler.UpdateMe, autenticado)
	api.POST("/usuarios/me/enderecos", d.UsuarioHandler.AddEndereco, autenticado)
	api.DELETE("/usuarios/me/enderecos/:id", d.UsuarioHandler.RemoveEndereco, autenticado)
	api.GET("/usuarios/:id", d.UsuarioHandler.GetByID, gestao)
	api.DELETE("/usuarios/:id", d.UsuarioHandler.Deactivate, gestao)

	api.GET("/produtos", d.ProdutoHandler.List)
	api.GET("/produtos/almoco", d.ProdutoHandler.ListAlmoco)
	api.GET("/produtos/search", d.SearchHandler.Search)
	api.GET("/produtos/:id", d.ProdutoHandler.GetByID)
	api.POST("/produtos", d.ProdutoHandler.Create, balcao)
	api.PUT("/produtos/:id", d.ProdutoHandler.Update, balcao)
	api.DELETE("/produtos/:id", d.ProdutoHandler.Deactivate, gestao)

	api.GET("/categorias", d.CategoriaHandler.List)
	api.POST("/categorias", d.CategoriaHandler.Create, balcao)
	api.PUT("/categorias/:id", d.CategoriaHandler.Update, balcao)
	api.DELETE("/categorias/:id", d.CategoriaHandler.Delete, gestao)

	// Criação de pedido exige autenticação (a variante mais restrita das
	// revisões do projeto); a fila e o avanço são da equipe.
	api.GET("/pedidos", d.PedidoHandler.List, equipe)
	api.POST("/pedidos", d.PedidoHandler.Create, autenticado)
	api.PATCH("/pedidos/:id/avancar", d.PedidoHandler.Advance, equipe)
	api.PATCH("/pedidos/:id/cancelar", d.PedidoHandler.Cancel, equipe)
	api.GET("/pedidos/:id/qrcode", d.PedidoHandler.QRCode, autenticado)

	api.POST("/feedbacks", d.FeedbackHandler.Create, autenticado)
	api.GET("/feedbacks", d.FeedbackHandler.List, gestao)

	api.GET("/dashboard/stats", d.DashboardHandler.Stats, equipe)
}
