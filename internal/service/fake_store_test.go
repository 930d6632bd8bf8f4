package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
)

type lineKey struct {
	cartID, itemID int64
}

type storeState struct {
	items     map[int64]entity.Item
	brands    map[int64]entity.Brand
	discounts []entity.Discount
	promos    map[string]entity.PromoCode
	carts     map[int64]entity.Cart
	lines     map[lineKey]int
	payments  map[int64]entity.Payment
	customers map[string]entity.Customer
	nextID    int64
}

func (s storeState) clone() storeState {
	c := storeState{
		items:     make(map[int64]entity.Item, len(s.items)),
		brands:    make(map[int64]entity.Brand, len(s.brands)),
		discounts: append([]entity.Discount(nil), s.discounts...),
		promos:    make(map[string]entity.PromoCode, len(s.promos)),
		carts:     make(map[int64]entity.Cart, len(s.carts)),
		lines:     make(map[lineKey]int, len(s.lines)),
		payments:  make(map[int64]entity.Payment, len(s.payments)),
		customers: make(map[string]entity.Customer, len(s.customers)),
		nextID:    s.nextID,
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.brands {
		c.brands[k] = v
	}
	for k, v := range s.promos {
		c.promos[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = v
	}
	for k, v := range s.payments {
		v.PromoCodes = append([]string(nil), v.PromoCodes...)
		c.payments[k] = v
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	return c
}

// fakeStore is an in-memory stand-in for the MySQL repositories. WithinTx
// restores the previous state when fn fails.
type fakeStore struct {
	storeState
	txDepth int
	failOn  map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		storeState: storeState{
			items:     map[int64]entity.Item{},
			brands:    map[int64]entity.Brand{},
			promos:    map[string]entity.PromoCode{},
			carts:     map[int64]entity.Cart{},
			lines:     map[lineKey]int{},
			payments:  map[int64]entity.Payment{},
			customers: map[string]entity.Customer{},
			nextID:    100,
		},
		failOn: map[string]error{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) fail(op string) error {
	return f.failOn[op]
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.txDepth > 0 {
		return fn(ctx)
	}
	snapshot := f.storeState.clone()
	f.txDepth++
	err := fn(ctx)
	f.txDepth--
	if err != nil {
		f.storeState = snapshot
	}
	return err
}

// seed helpers

func (f *fakeStore) addItem(item entity.Item) entity.Item {
	if item.ID == 0 {
		item.ID = f.id()
	}
	f.items[item.ID] = item
	return item
}

func (f *fakeStore) addDiscount(d entity.Discount) {
	if d.ID == 0 {
		d.ID = f.id()
	}
	f.discounts = append(f.discounts, d)
}

func (f *fakeStore) addPromo(code string, pct int) {
	f.promos[code] = entity.PromoCode{Code: code, DiscountAmount: pct}
}

func (f *fakeStore) stock(itemID int64) int {
	return f.items[itemID].Quantity
}

func (f *fakeStore) lineQty(cartID, itemID int64) (int, bool) {
	q, ok := f.lines[lineKey{cartID, itemID}]
	return q, ok
}

// items

func (f *fakeStore) GetItem(_ context.Context, id int64) (*entity.Item, error) {
	if err := f.fail("GetItem"); err != nil {
		return nil, err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (f *fakeStore) GetItemForUpdate(ctx context.Context, id int64) (*entity.Item, error) {
	return f.GetItem(ctx, id)
}

func (f *fakeStore) AdjustStock(_ context.Context, id int64, delta int) error {
	if err := f.fail("AdjustStock"); err != nil {
		return err
	}
	item, ok := f.items[id]
	if !ok || item.Quantity+delta < 0 {
		return repository.ErrInsufficientStock
	}
	item.Quantity += delta
	f.items[id] = item
	return nil
}

func (f *fakeStore) ListItems(_ context.Context, filter entity.ItemFilter, asOf time.Time) ([]entity.ItemListing, error) {
	var out []entity.ItemListing
	for _, item := range f.items {
		if item.Quantity <= 0 {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			continue
		}
		listing := entity.ItemListing{ItemID: item.ID, Name: item.Name, UnitPrice: item.Price, StockQuantity: item.Quantity}
		if active := f.activeDiscounts(item.ID, asOf); len(active) > 0 {
			pct := active[0].Amount
			listing.DiscountPercent = &pct
		} else if filter.OnDiscount {
			continue
		}
		out = append(out, listing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (f *fakeStore) ListItemsExpiringBetween(_ context.Context, from, to time.Time) ([]entity.Item, error) {
	var out []entity.Item
	for _, item := range f.items {
		if !item.ExpiryDate.Before(truncate(from)) && !item.ExpiryDate.After(to) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindItemByNameAndBrand(_ context.Context, name string, brandID int64) (*entity.Item, error) {
	for _, item := range f.items {
		if item.Name == name && item.BrandID == brandID {
			return &item, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateItem(_ context.Context, item *entity.Item) (*entity.Item, error) {
	created := f.addItem(*item)
	return &created, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, item *entity.Item) error {
	if _, ok := f.items[item.ID]; !ok {
		return repository.ErrNotFound
	}
	f.items[item.ID] = *item
	return nil
}

// discounts and promo codes

func (f *fakeStore) activeDiscounts(itemID int64, asOf time.Time) []entity.Discount {
	var out []entity.Discount
	for _, d := range f.discounts {
		if d.ItemID == itemID && activeOn(d, asOf) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeStore) ActiveDiscounts(_ context.Context, itemID int64, asOf time.Time) ([]entity.Discount, error) {
	if err := f.fail("ActiveDiscounts"); err != nil {
		return nil, err
	}
	return f.activeDiscounts(itemID, asOf), nil
}

func (f *fakeStore) CreateDiscount(_ context.Context, d *entity.Discount) (*entity.Discount, error) {
	d.ID = f.id()
	f.discounts = append(f.discounts, *d)
	return d, nil
}

func (f *fakeStore) GetPromoCode(_ context.Context, code string) (*entity.PromoCode, error) {
	if err := f.fail("GetPromoCode"); err != nil {
		return nil, err
	}
	promo, ok := f.promos[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &promo, nil
}

// carts

func (f *fakeStore) CreateCart(_ context.Context, email string, at time.Time) (*entity.Cart, error) {
	cart := entity.Cart{ID: f.id(), CustomerEmail: email, CreationTime: at, Status: entity.CartStatusOpen}
	f.carts[cart.ID] = cart
	return &cart, nil
}

func (f *fakeStore) GetCart(_ context.Context, id int64) (*entity.Cart, error) {
	cart, ok := f.carts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cart.Status = entity.CartStatusOpen
	if _, paid := f.payments[id]; paid {
		cart.Status = entity.CartStatusPaid
	}
	return &cart, nil
}

func (f *fakeStore) LockCart(_ context.Context, id int64) error {
	if _, ok := f.carts[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeStore) DeleteCart(_ context.Context, id int64) error {
	delete(f.carts, id)
	return nil
}

func (f *fakeStore) GetLine(_ context.Context, cartID, itemID int64) (*entity.CartLine, error) {
	q, ok := f.lines[lineKey{cartID, itemID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	item := f.items[itemID]
	return &entity.CartLine{CartID: cartID, ItemID: itemID, Name: item.Name, UnitPrice: item.Price, Quantity: q}, nil
}

func (f *fakeStore) InsertLine(_ context.Context, cartID, itemID int64, quantity int) error {
	key := lineKey{cartID, itemID}
	if _, ok := f.lines[key]; ok {
		return repository.ErrDuplicate
	}
	f.lines[key] = quantity
	return nil
}

func (f *fakeStore) UpdateLineQuantity(_ context.Context, cartID, itemID int64, quantity int) error {
	f.lines[lineKey{cartID, itemID}] = quantity
	return nil
}

func (f *fakeStore) DeleteLine(_ context.Context, cartID, itemID int64) error {
	delete(f.lines, lineKey{cartID, itemID})
	return nil
}

func (f *fakeStore) DeleteLines(_ context.Context, cartID int64) error {
	for key := range f.lines {
		if key.cartID == cartID {
			delete(f.lines, key)
		}
	}
	return nil
}

func (f *fakeStore) ListLines(ctx context.Context, cartID int64) ([]entity.CartLine, error) {
	if err := f.fail("ListLines"); err != nil {
		return nil, err
	}
	var out []entity.CartLine
	for key := range f.lines {
		if key.cartID == cartID {
			line, _ := f.GetLine(ctx, key.cartID, key.itemID)
			out = append(out, *line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (f *fakeStore) ListExpiredCarts(_ context.Context, cutoff time.Time) ([]entity.Cart, error) {
	var out []entity.Cart
	for id, cart := range f.carts {
		if _, paid := f.payments[id]; paid {
			continue
		}
		if !cart.CreationTime.After(cutoff) {
			out = append(out, cart)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// payments

func (f *fakeStore) CreatePayment(_ context.Context, payment *entity.Payment) (*entity.Payment, error) {
	if err := f.fail("CreatePayment"); err != nil {
		return nil, err
	}
	if _, ok := f.payments[payment.CartID]; ok {
		return nil, repository.ErrDuplicate
	}
	p := *payment
	p.ID = f.id()
	p.PromoCodes = append([]string(nil), payment.PromoCodes...)
	f.payments[p.CartID] = p
	return &p, nil
}

func (f *fakeStore) GetPaymentByCart(_ context.Context, cartID int64) (*entity.Payment, error) {
	p, ok := f.payments[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

// customers and brands

func (f *fakeStore) CreateCustomer(_ context.Context, customer *entity.Customer) error {
	if _, ok := f.customers[customer.Email]; ok {
		return repository.ErrDuplicate
	}
	f.customers[customer.Email] = *customer
	return nil
}

func (f *fakeStore) GetCustomerByEmail(_ context.Context, email string) (*entity.Customer, error) {
	c, ok := f.customers[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeStore) CreateBrand(_ context.Context, brand *entity.Brand) (*entity.Brand, error) {
	b := *brand
	b.ID = f.id()
	f.brands[b.ID] = b
	return &b, nil
}

func (f *fakeStore) GetBrandByName(_ context.Context, name string) (*entity.Brand, error) {
	var found *entity.Brand
	for _, b := range f.brands {
		if b.Name == name && (found == nil || b.ID > found.ID) {
			b := b
			found = &b
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

type fakeTokens struct {
	tokens map[string]string
}

func (t *fakeTokens) SaveToken(_ context.Context, email, token string, _ time.Duration) error {
	t.tokens[email] = token
	return nil
}

func (t *fakeTokens) GetToken(_ context.Context, email string) (string, error) {
	return t.tokens[email], nil
}

type publishedEvent struct {
	key     string
	payload interface{}
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.events = append(p.events, publishedEvent{key: key, payload: payload})
	return p.err
}

// activeOn mirrors the SQL window check: calendar days, both ends inclusive.
func activeOn(d entity.Discount, t time.Time) bool {
	day := truncate(t.In(d.StartDate.Location()))
	return !day.Before(truncate(d.StartDate)) && !day.After(truncate(d.EndDate))
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
