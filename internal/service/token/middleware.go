package token

import (
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ivensmba/padoca/internal/apperr"
)

// CheckCookie valida o cookie de acesso e, se expirado, rotaciona pelo
// refresh. Devolve (acesso, novoRefresh, claims); novoRefresh vazio significa
// que o acesso ainda valia.
func (t *TokenService) CheckCookie(c echo.Context) (string, string, jwt.MapClaims, error) {
	asCookie, err := c.Cookie("accessToken")
	if err == nil {
		parsed, err := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
			return t.JWTSecret, nil
		})
		if err == nil && parsed.Valid {
			claims, ok := parsed.Claims.(jwt.MapClaims)
			if !ok {
				return "", "", nil, apperr.Unauthorized("token inválido")
			}
			return asCookie.Value, "", claims, nil
		}
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", nil, apperr.Unauthorized("access token inválido")
		}
	}

	rfCookie, err := c.Cookie("refreshToken")
	if err != nil {
		return "", "", nil, apperr.Unauthorized("refresh token ausente")
	}

	newAccess, newRefresh, claims, err := t.RotateToken(rfCookie.Value)
	if err != nil {
		return "", "", nil, apperr.Unauthorized("não foi possível rotacionar o token: %v", err)
	}
	return newAccess, newRefresh, claims, nil
}

// Middleware exige um usuário autenticado e, se roles forem dadas, que o
// papel dele esteja entre elas. A identidade fica no contexto da requisição
// (userID/role), nunca em estado global.
func (t *TokenService) Middleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			newAccess, newRefresh, claims, err := t.CheckCookie(c)
			if err != nil {
				return err
			}

			role, ok := claims["role"].(string)
			if !ok {
				return apperr.Unauthorized("token sem papel")
			}
			if len(roles) > 0 && !slices.Contains(roles, role) {
				return apperr.Forbidden("papel %s não tem acesso a este recurso", role)
			}

			if newRefresh != "" {
				c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(AccessTTL)))
				c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(RefreshTTL)))
			}

			setUserContext(c, claims)
			return next(c)
		}
	}
}

// UserID lê a identidade que o middleware deixou no contexto.
func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, apperr.Unauthorized("requisição sem usuário autenticado")
	}
	return id, nil
}

func Role(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}
