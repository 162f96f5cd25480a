package pedido

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ivensmba/padoca/internal/apperr"
	"github.com/ivensmba/padoca/internal/models"
)

// Novo devolve um pedido PENDENTE vazio com total zero.
func Novo(cliente, tipo string) *models.Pedido {
	return &models.Pedido{
		Cliente: cliente,
		Tipo:    tipo,
		Status:  StatusPendente,
		Total:   decimal.Zero,
	}
}

// AdicionarItem captura o preço atual do produto em um novo item, anexa na
// ordem de chegada e soma o subtotal ao total do pedido. Quantidade menor
// que 1 é rejeitada aqui, não só na validação da borda.
func AdicionarItem(p *models.Pedido, produto *models.Produto, quantidade int) error {
	if quantidade < 1 {
		return apperr.Validation("quantidade inválida", map[string]string{
			"quantidade": fmt.Sprintf("deve ser no mínimo 1, recebido %d", quantidade),
		})
	}

	item := models.ItemPedido{
		ProdutoID:     produto.ID,
		Produto:       *produto,
		Quantidade:    quantidade,
		PrecoUnitario: produto.Preco,
	}
	p.Itens = append(p.Itens, item)
	p.Total = p.Total.Add(item.Subtotal())
	return nil
}

// DescricaoItens rende as linhas "2x Pão de Queijo" da fila da cozinha.
func DescricaoItens(p *models.Pedido) []string {
	linhas := make([]string, 0, len(p.Itens))
	for _, item := range p.Itens {
		linhas = append(linhas, fmt.Sprintf("%dx %s", item.Quantidade, item.Produto.Nome))
	}
	return linhas
}
