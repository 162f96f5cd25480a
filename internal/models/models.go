package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de usuário. O papel determina a autorização e quais colunas de
// perfil (pontos de fidelidade, matrícula/cargo) têm significado.
const (
	TipoCliente     = "CLIENTE"
	TipoFuncionario = "FUNCIONARIO"
	TipoGestor      = "GESTOR"
	TipoAdmin       = "ADMIN"
	TipoEntregador  = "ENTREGADOR"
)

type Usuario struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome      string `gorm:"not null"                 json:"nome"`
	Email     string `gorm:"uniqueIndex;not null"     json:"email"`
	SenhaHash string `gorm:"not null"                 json:"-"`
	CPF       string `gorm:"size:14"                  json:"cpf,omitempty"`
	Telefone  string `json:"telefone,omitempty"`
	Tipo      string `gorm:"not null;index"           json:"tipo"`
	Ativo     bool   `gorm:"not null;default:true"    json:"ativo"`

	// Perfil CLIENTE.
	PontosFidelidade int `gorm:"not null;default:0" json:"pontosFidelidade,omitempty"`

	// Perfil FUNCIONARIO.
	Matricula string `json:"matricula,omitempty"`
	Cargo     string `json:"cargo,omitempty"`

	Enderecos []Endereco `gorm:"constraint:OnDelete:CASCADE" json:"enderecos,omitempty"`

	DataCriacao     time.Time `gorm:"autoCreateTime" json:"dataCriacao"`
	DataAtualizacao time.Time `gorm:"autoUpdateTime" json:"dataAtualizacao"`
}

// Endereco referencia o dono apenas por usuario_id, sem ponteiro de volta.
type Endereco struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UsuarioID   uint   `gorm:"index;not null"           json:"usuario_id"`
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `gorm:"size:2" json:"estado"`
	CEP         string `gorm:"size:9" json:"cep"`
	Tipo        string `json:"tipo,omitempty"`
}

type Categoria struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Nome         string `gorm:"uniqueIndex;not null"     json:"nome"`
	Descricao    string `json:"descricao,omitempty"`
	TipoExibicao string `json:"tipoExibicao,omitempty"`
	Ativo        bool   `gorm:"not null;default:true"    json:"ativo"`
}

type Produto struct {
	ID                    uint            `gorm:"primaryKey;autoIncrement"     json:"id"`
	Nome                  string          `gorm:"not null"                     json:"nome"`
	Descricao             string          `gorm:"size:1000"                    json:"descricao,omitempty"`
	Preco                 decimal.Decimal `gorm:"type:decimal(10,2);not null"  json:"preco"`
	ImagemURL             string          `json:"imagemUrl,omitempty"`
	CategoriaID           uint            `gorm:"index;not null"               json:"categoriaId"`
	Categoria             Categoria       `json:"categoria,omitempty"`
	Ativo                 bool            `gorm:"not null;default:true"        json:"ativo"`
	QuantidadeEstoque     int             `gorm:"not null;default:0"           json:"quantidadeEstoque"`
	EstoqueMinimo         int             `gorm:"not null;default:5"           json:"estoqueMinimo"`
	DiaDaSemanaDisponivel string          `json:"diaDaSemanaDisponivel,omitempty"`
	DataCriacao           time.Time       `gorm:"autoCreateTime"               json:"dataCriacao"`
	DataAtualizacao       time.Time       `gorm:"autoUpdateTime"               json:"dataAtualizacao"`
}

// Pedido nunca é apagado, só avança de status. Total é derivado dos itens e
// nunca aceito do chamador. Versao guarda o avanço de status contra escritas
// concorrentes perdidas.
type Pedido struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Cliente     string          `gorm:"not null"                    json:"cliente"`
	Status      string          `gorm:"not null;index"              json:"status"`
	Tipo        string          `gorm:"not null"                    json:"tipo"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Versao      int64           `gorm:"not null;default:0"          json:"-"`
	Itens       []ItemPedido    `gorm:"constraint:OnDelete:CASCADE" json:"itens,omitempty"`
	DataCriacao time.Time       `gorm:"autoCreateTime"              json:"dataCriacao"`
}

// ItemPedido guarda o preço unitário capturado na criação do pedido;
// mudanças posteriores de preço do produto não o afetam.
type ItemPedido struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	PedidoID      uint            `gorm:"index;not null"              json:"pedido_id"`
	ProdutoID     uint            `gorm:"not null"                    json:"produto_id"`
	Produto       Produto         `json:"produto,omitempty"`
	Quantidade    int             `gorm:"not null;check:quantidade>0" json:"quantidade"`
	PrecoUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"precoUnitario"`
}

func (i ItemPedido) Subtotal() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade)))
}

type Feedback struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Cliente   string    `json:"cliente"`
	Mensagem  string    `gorm:"not null"                 json:"mensagem"`
	Avaliacao int       `gorm:"not null"                 json:"avaliacao"`
	DataHora  time.Time `gorm:"autoCreateTime;index"     json:"dataHora"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UsuarioID uint   `gorm:"index;not null"  json:"usuario_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
