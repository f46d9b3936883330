package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entrada is a financial entry: a bill or income with due and paid dates.
type Entrada struct {
	ID        uuid.UUID  `json:"id"`
	Nome      string     `json:"nome"`
	Categoria string     `json:"categoria"`
	Preco     float64    `json:"preco"`
	DataVenc  *Date      `json:"data_venc"`
	DataPag   *Date      `json:"data_pag"`
	UserRef   *uuid.UUID `json:"user_ref"`
	ImageURL  string     `json:"image_url"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsPaid reports whether a payment date has been recorded.
func (e *Entrada) IsPaid() bool {
	return e.DataPag != nil
}

// CreateEntradaParams contains the parameters for a new entrada.
type CreateEntradaParams struct {
	Nome      string
	Categoria string
	Preco     float64
	DataVenc  *Date
	DataPag   *Date
	UserRef   *uuid.UUID
	ImageURL  string
}

// UpdateEntradaParams carries a partial update: nil fields are left as is.
type UpdateEntradaParams struct {
	ID        uuid.UUID
	Nome      *string
	Categoria *string
	Preco     *float64
	DataVenc  *Date
	DataPag   *Date
	ImageURL  *string
}

// IsEmpty reports whether the update would change nothing.
func (p UpdateEntradaParams) IsEmpty() bool {
	return p.Nome == nil && p.Categoria == nil && p.Preco == nil &&
		p.DataVenc == nil && p.DataPag == nil && p.ImageURL == nil
}

// EntradaSummary aggregates entradas for the dashboard.
type EntradaSummary struct {
	Count     int64   `json:"count"`
	Total     float64 `json:"total"`
	Pendentes int64   `json:"pendentes"`
}

// =============================================================================
// Date
// =============================================================================

// dateLayout is the wire and storage format of a Date.
const dateLayout = "2006-01-02"

// Date is a calendar day. It accepts both "2006-01-02" and full RFC 3339
// timestamps on input and always writes "2006-01-02".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses either accepted layout.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
