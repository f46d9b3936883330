package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/DukeRupert/estoque/internal/repository"
	"github.com/DukeRupert/estoque/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var errDatabaseDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// fakeQuerier
// =============================================================================

// fakeQuerier is an in-memory repository.Querier. Setting failWith makes every
// query return that error.
type fakeQuerier struct {
	mu       sync.Mutex
	users    map[uuid.UUID]repository.AuthUser
	perfis   map[uuid.UUID]repository.Perfil
	products map[uuid.UUID]repository.Product
	entradas map[uuid.UUID]repository.Entrada
	failWith error
	now      time.Time
}

var _ repository.Querier = (*fakeQuerier)(nil)

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		users:    make(map[uuid.UUID]repository.AuthUser),
		perfis:   make(map[uuid.UUID]repository.Perfil),
		products: make(map[uuid.UUID]repository.Product),
		entradas: make(map[uuid.UUID]repository.Entrada),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (q *fakeQuerier) CreateAuthUser(ctx context.Context, arg repository.CreateAuthUserParams) (repository.AuthUser, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.AuthUser{}, q.failWith
	}
	for _, u := range q.users {
		if u.Email == arg.Email {
			return repository.AuthUser{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := repository.AuthUser{ID: uuid.New(), Email: arg.Email, PasswordHash: arg.PasswordHash, CreatedAt: q.now}
	q.users[u.ID] = u
	return u, nil
}

func (q *fakeQuerier) GetAuthUserByEmail(ctx context.Context, email string) (repository.AuthUser, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.AuthUser{}, q.failWith
	}
	for _, u := range q.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.AuthUser{}, sql.ErrNoRows
}

func (q *fakeQuerier) DeleteAuthUser(ctx context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return q.failWith
	}
	delete(q.users, id)
	delete(q.perfis, id)
	return nil
}

func (q *fakeQuerier) CreatePerfil(ctx context.Context, arg repository.CreatePerfilParams) (repository.Perfil, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Perfil{}, q.failWith
	}
	if _, ok := q.perfis[arg.UserRef]; ok {
		return repository.Perfil{}, &pgconn.PgError{Code: "23505"}
	}
	p := repository.Perfil{
		UserRef:   arg.UserRef,
		Nome:      arg.Nome,
		Telefone:  arg.Telefone,
		Email:     arg.Email,
		CreatedAt: q.now,
	}
	q.perfis[p.UserRef] = p
	return p, nil
}

func (q *fakeQuerier) GetPerfilByUserRef(ctx context.Context, userRef uuid.UUID) (repository.Perfil, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Perfil{}, q.failWith
	}
	p, ok := q.perfis[userRef]
	if !ok {
		return repository.Perfil{}, sql.ErrNoRows
	}
	return p, nil
}

func (q *fakeQuerier) ListPerfis(ctx context.Context) ([]repository.Perfil, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return nil, q.failWith
	}
	var out []repository.Perfil
	for _, p := range q.perfis {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (q *fakeQuerier) ListProducts(ctx context.Context) ([]repository.Product, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return nil, q.failWith
	}
	var out []repository.Product
	for _, p := range q.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (q *fakeQuerier) GetProductByID(ctx context.Context, id uuid.UUID) (repository.Product, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Product{}, q.failWith
	}
	p, ok := q.products[id]
	if !ok {
		return repository.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (q *fakeQuerier) CreateProduct(ctx context.Context, arg repository.CreateProductParams) (repository.Product, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Product{}, q.failWith
	}
	p := repository.Product{
		ID:           uuid.New(),
		Nome:         arg.Nome,
		Preco:        arg.Preco,
		Quantidade:   arg.Quantidade,
		ImageKey:     arg.ImageKey,
		ImageUrl:     arg.ImageUrl,
		ThumbnailKey: arg.ThumbnailKey,
		ThumbnailUrl: arg.ThumbnailUrl,
		CreatedAt:    q.now,
		UpdatedAt:    q.now,
	}
	q.products[p.ID] = p
	return p, nil
}

func (q *fakeQuerier) UpdateProduct(ctx context.Context, arg repository.UpdateProductParams) (repository.Product, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Product{}, q.failWith
	}
	p, ok := q.products[arg.ID]
	if !ok {
		return repository.Product{}, sql.ErrNoRows
	}
	p.Nome = arg.Nome
	p.Preco = arg.Preco
	p.Quantidade = arg.Quantidade
	p.ImageKey = arg.ImageKey
	p.ImageUrl = arg.ImageUrl
	p.ThumbnailKey = arg.ThumbnailKey
	p.ThumbnailUrl = arg.ThumbnailUrl
	p.UpdatedAt = q.now.Add(time.Minute)
	q.products[p.ID] = p
	return p, nil
}

func (q *fakeQuerier) DeleteProduct(ctx context.Context, id uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return 0, q.failWith
	}
	if _, ok := q.products[id]; !ok {
		return 0, nil
	}
	delete(q.products, id)
	return 1, nil
}

func (q *fakeQuerier) CountProducts(ctx context.Context) (repository.CountProductsRow, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.CountProductsRow{}, q.failWith
	}
	var row repository.CountProductsRow
	for _, p := range q.products {
		row.Count++
		row.Unidades += int64(p.Quantidade)
		row.ValorTotal += p.Preco * float64(p.Quantidade)
	}
	return row, nil
}

func (q *fakeQuerier) ListEntradas(ctx context.Context) ([]repository.Entrada, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return nil, q.failWith
	}
	var out []repository.Entrada
	for _, e := range q.entradas {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (q *fakeQuerier) GetEntradaByID(ctx context.Context, id uuid.UUID) (repository.Entrada, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Entrada{}, q.failWith
	}
	e, ok := q.entradas[id]
	if !ok {
		return repository.Entrada{}, sql.ErrNoRows
	}
	return e, nil
}

func (q *fakeQuerier) CreateEntrada(ctx context.Context, arg repository.CreateEntradaParams) (repository.Entrada, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Entrada{}, q.failWith
	}
	e := repository.Entrada{
		ID:        uuid.New(),
		Nome:      arg.Nome,
		Categoria: arg.Categoria,
		Preco:     arg.Preco,
		DataVenc:  arg.DataVenc,
		DataPag:   arg.DataPag,
		UserRef:   arg.UserRef,
		ImageUrl:  arg.ImageUrl,
		CreatedAt: q.now,
	}
	q.entradas[e.ID] = e
	return e, nil
}

func (q *fakeQuerier) UpdateEntrada(ctx context.Context, arg repository.UpdateEntradaParams) (repository.Entrada, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.Entrada{}, q.failWith
	}
	e, ok := q.entradas[arg.ID]
	if !ok {
		return repository.Entrada{}, sql.ErrNoRows
	}
	if arg.Nome.Valid {
		e.Nome = arg.Nome.String
	}
	if arg.Categoria.Valid {
		e.Categoria = arg.Categoria
	}
	if arg.Preco.Valid {
		e.Preco = arg.Preco.Float64
	}
	if arg.DataVenc.Valid {
		e.DataVenc = arg.DataVenc
	}
	if arg.DataPag.Valid {
		e.DataPag = arg.DataPag
	}
	if arg.ImageUrl.Valid {
		e.ImageUrl = arg.ImageUrl
	}
	q.entradas[e.ID] = e
	return e, nil
}

func (q *fakeQuerier) DeleteEntrada(ctx context.Context, id uuid.UUID) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return 0, q.failWith
	}
	if _, ok := q.entradas[id]; !ok {
		return 0, nil
	}
	delete(q.entradas, id)
	return 1, nil
}

func (q *fakeQuerier) CountEntradas(ctx context.Context) (repository.CountEntradasRow, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.failWith != nil {
		return repository.CountEntradasRow{}, q.failWith
	}
	var row repository.CountEntradasRow
	for _, e := range q.entradas {
		row.Count++
		row.Total += e.Preco
		if !e.DataPag.Valid {
			row.Pendentes++
		}
	}
	return row, nil
}

// =============================================================================
// fakeStorage
// =============================================================================

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putErr   error
	deleted  []string
	putCalls int
}

var _ storage.Storage = (*fakeStorage)(nil)

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Put(ctx context.Context, key string, data io.Reader, opts storage.PutOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putCalls++
	if s.putErr != nil {
		return s.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return err
	}
	s.objects[key] = buf.Bytes()
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) URL(key string) (string, error) {
	return "https://cdn.test/box3/" + key, nil
}

func (s *fakeStorage) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}
