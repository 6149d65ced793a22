package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/productquery"
	"github.com/tuanvumaihuynh/digital-store/internal/repository"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/db"
)

// fakeStore is the in-memory state behind the fake repositories. fakeDB
// snapshots it before a transaction and restores it on rollback.
type fakeStore struct {
	mu         sync.Mutex
	products   map[int64]model.Product
	categories map[int64]model.Category
	users      map[int64]model.User
	outbox     []repository.CreateOutboxMsgParams
	nextID     int64
	listCalls  int

	failOutbox bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   map[int64]model.Product{},
		categories: map[int64]model.Category{},
		users:      map[int64]model.User{},
		nextID:     100,
	}
}

type fakeSnapshot struct {
	products   map[int64]model.Product
	categories map[int64]model.Category
	users      map[int64]model.User
	outbox     []repository.CreateOutboxMsgParams
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fakeSnapshot{
		products:   maps.Clone(s.products),
		categories: maps.Clone(s.categories),
		users:      maps.Clone(s.users),
		outbox:     slices.Clone(s.outbox),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.categories = snap.categories
	s.users = snap.users
	s.outbox = snap.outbox
}

func (s *fakeStore) addCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.categories[s.nextID] = model.Category{ID: s.nextID, Name: name}
	return s.nextID
}

func (s *fakeStore) product(id int64) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *fakeStore) topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.outbox))
	for _, msg := range s.outbox {
		topics = append(topics, msg.Topic)
	}
	return topics
}

// fakeDB serializes transactions, which stands in for row locks.
type fakeDB struct {
	db.DB
	mu        sync.Mutex
	store     *fakeStore
	commits   int
	rollbacks int
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := f.store.snapshot()
	if err := txFunc(f); err != nil {
		f.store.restore(snap)
		f.rollbacks++
		return err
	}
	f.commits++
	return nil
}

type fakeProductRepo struct {
	st *fakeStore
}

func (r fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r fakeProductRepo) filtered(f productquery.Filter) []model.Product {
	var out []model.Product
	for _, p := range r.st.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeProductRepo) ListProducts(_ context.Context, params repository.ListProductsParams) ([]model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.listCalls++
	all := r.filtered(params.Filter)
	_, limit := productquery.NormalizePage(params.Page, params.Limit)
	start := min(productquery.Offset(params.Page, params.Limit), len(all))
	end := min(start+limit, len(all))
	return append([]model.Product{}, all[start:end]...), nil
}

func (r fakeProductRepo) CountProducts(_ context.Context, filter productquery.Filter) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return int64(len(r.filtered(filter))), nil
}

func (r fakeProductRepo) GetProduct(_ context.Context, id int64) (model.Product, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	p, ok := r.st.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r fakeProductRepo) CreateProduct(_ context.Context, params repository.CreateProductParams) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.nextID++
	now := time.Now()
	r.st.products[r.st.nextID] = model.Product{
		ID:             r.st.nextID,
		Name:           params.Name,
		Description:    params.Description,
		Price:          params.Price.InexactFloat64(),
		CategoryID:     params.CategoryID,
		CategoryName:   r.st.categories[params.CategoryID].Name,
		StockAvailable: params.StockAvailable,
		FilePath:       params.FilePath,
		CoverImagePath: params.CoverImagePath,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return r.st.nextID, nil
}

func (r fakeProductRepo) UpdateProduct(_ context.Context, id int64, params repository.UpdateProductParams) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	p, ok := r.st.products[id]
	if !ok {
		return 0, nil
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Price != nil {
		p.Price = params.Price.InexactFloat64()
	}
	if params.CategoryID != nil {
		p.CategoryID = *params.CategoryID
		p.CategoryName = r.st.categories[*params.CategoryID].Name
	}
	if params.SetStock {
		p.StockAvailable = params.StockAvailable
	}
	if params.FilePath != nil {
		p.FilePath = *params.FilePath
	}
	if params.CoverImagePath != nil {
		p.CoverImagePath = *params.CoverImagePath
	}
	p.UpdatedAt = time.Now()
	r.st.products[id] = p
	return 1, nil
}

func (r fakeProductRepo) DeleteProduct(_ context.Context, id int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, ok := r.st.products[id]; !ok {
		return 0, nil
	}
	delete(r.st.products, id)
	return 1, nil
}

type fakeCategoryRepo struct {
	st *fakeStore
}

func (r fakeCategoryRepo) WithDB(db.DB) repository.CategoryRepository { return r }

func (r fakeCategoryRepo) ListCategories(context.Context) ([]model.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := slices.Collect(maps.Values(r.st.categories))
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r fakeCategoryRepo) GetCategory(_ context.Context, id int64) (model.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.categories[id]
	if !ok {
		return model.Category{}, repository.ErrNotFound
	}
	return c, nil
}

func (r fakeCategoryRepo) CategoryExists(_ context.Context, id int64) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	_, ok := r.st.categories[id]
	return ok, nil
}

func (r fakeCategoryRepo) CategoryNameExists(_ context.Context, name string, excludeID int64) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, c := range r.st.categories {
		if c.Name == name && c.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCategoryRepo) CountCategoryProducts(_ context.Context, id int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var n int64
	for _, p := range r.st.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (r fakeCategoryRepo) CreateCategory(_ context.Context, params repository.CreateCategoryParams) (model.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.nextID++
	c := model.Category{ID: r.st.nextID, Name: params.Name, Description: params.Description}
	r.st.categories[c.ID] = c
	return c, nil
}

func (r fakeCategoryRepo) UpdateCategory(_ context.Context, id int64, params repository.UpdateCategoryParams) (model.Category, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.categories[id]
	if !ok {
		return model.Category{}, repository.ErrNotFound
	}
	c.Name = params.Name
	c.Description = params.Description
	r.st.categories[id] = c
	return c, nil
}

func (r fakeCategoryRepo) DeleteCategory(_ context.Context, id int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.categories[id]; !ok {
		return 0, nil
	}
	delete(r.st.categories, id)
	return 1, nil
}

type fakeOutboxRepo struct {
	st *fakeStore
}

func (r fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if r.st.failOutbox {
		return errors.New("outbox insert failed")
	}
	r.st.outbox = append(r.st.outbox, params)
	return nil
}

func (r fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

// fakeDisk is an in-memory blob.Disk whose deletes can be made to fail per path.
type fakeDisk struct {
	mu         sync.Mutex
	files      map[string][]byte
	failDelete map[string]bool
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{files: map[string][]byte{}, failDelete: map[string]bool{}}
}

func (d *fakeDisk) Put(_ context.Context, path string, r io.Reader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.files[path]; ok {
		return fs.ErrExist
	}
	d.files[path] = buf.Bytes()
	return nil
}

func (d *fakeDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failDelete[path] {
		return errors.New("permission denied")
	}
	delete(d.files, path)
	return nil
}

func (d *fakeDisk) Exists(_ context.Context, path string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[path]
	return ok, nil
}

func (d *fakeDisk) has(path string) bool {
	ok, _ := d.Exists(context.Background(), path)
	return ok
}

func (d *fakeDisk) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.files)
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[int64]model.Product
	deleted []int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[int64]model.Product{}}
}

func (c *fakeCache) Get(_ context.Context, id int64) (model.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.items[id]
	return p, ok, nil
}

func (c *fakeCache) Set(_ context.Context, p model.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = p
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.deleted = append(c.deleted, id)
	return nil
}
