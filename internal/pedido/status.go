// Package pedido concentra as regras de domínio de um pedido: a máquina de
// status e a acumulação do total a partir dos itens.
package pedido

import (
	"github.com/ivensmba/padoca/internal/apperr"
)

const (
	StatusPendente   = "PENDENTE"
	StatusPreparando = "PREPARANDO"
	StatusPronto     = "PRONTO"
	StatusEmEntrega  = "EM_ENTREGA"
	StatusConcluido  = "CONCLUIDO"
	StatusCancelado  = "CANCELADO"
)

const (
	TipoBalcao  = "BALCAO"
	TipoEntrega = "ENTREGA"
)

// Next é uma função total de (status, tipo): não tem outras entradas e não
// toca em nada além do valor devolvido. Status terminais e desconhecidos não
// têm sucessor.
func Next(status, tipo string) (string, error) {
	switch status {
	case StatusPendente:
		return StatusPreparando, nil
	case StatusPreparando:
		return StatusPronto, nil
	case StatusPronto:
		if tipo == TipoEntrega {
			return StatusEmEntrega, nil
		}
		return StatusConcluido, nil
	case StatusEmEntrega:
		return StatusConcluido, nil
	default:
		return "", apperr.Conflict("status %s não pode ser avançado", status)
	}
}

// Terminal diz se um pedido saiu da fila da cozinha.
func Terminal(status string) bool {
	return status == StatusConcluido || status == StatusCancelado
}

func ValidTipo(tipo string) bool {
	return tipo == TipoBalcao || tipo == TipoEntrega
}
