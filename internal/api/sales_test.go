package api

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dukapos/m/domain"
)

type saleItemBody struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type saleBody struct {
	Customer string         `json:"customer"`
	Items    []saleItemBody `json:"items"`
}

func (s *testServer) stock(id int64) int64 {
	s.t.Helper()
	rec := s.do(http.MethodGet, "/inventory/"+itoa(id), nil, s.login())
	require.Equal(s.t, http.StatusOK, rec.Code)
	var p domain.Product
	decode(s.t, rec, &p)
	return p.Quantity
}

func TestCreateSale(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()
	sugar := s.addProduct(cookie, "Sugar", 80, 100, 10)
	salt := s.addProduct(cookie, "Salt", 20.25, 30.5, 4)

	rec := s.do(http.MethodPost, "/sale", saleBody{
		Customer: "Jane",
		Items:    []saleItemBody{{sugar.ID, 3}, {salt.ID, 2}},
	}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Success bool        `json:"success"`
		Sale    domain.Sale `json:"sale"`
	}
	decode(t, rec, &body)
	assert.True(t, body.Success)
	assert.Equal(t, "Jane", body.Sale.Customer)
	require.Len(t, body.Sale.Items, 2)
	assert.Equal(t, "Sugar", body.Sale.Items[0].Product)
	assert.True(t, decimal.RequireFromString("361").Equal(body.Sale.Total), body.Sale.Total.String())
	assert.True(t, decimal.RequireFromString("80.5").Equal(body.Sale.Profit), body.Sale.Profit.String())

	assert.Equal(t, int64(7), s.stock(sugar.ID))
	assert.Equal(t, int64(2), s.stock(salt.ID))
}

func TestCreateSaleRejections(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()
	sugar := s.addProduct(cookie, "Sugar", 80, 100, 10)
	salt := s.addProduct(cookie, "Salt", 20, 30, 1)

	tests := map[string]struct {
		body interface{}
		code string
	}{
		"more than in stock": {
			saleBody{Customer: "Jane", Items: []saleItemBody{{sugar.ID, 2}, {salt.ID, 5}}},
			"INSUFFICIENT_STOCK",
		},
		"unknown product": {
			saleBody{Customer: "Jane", Items: []saleItemBody{{sugar.ID, 2}, {999, 1}}},
			"UNKNOWN_PRODUCT",
		},
		"no customer": {
			saleBody{Items: []saleItemBody{{sugar.ID, 1}}},
			"INVALID_INPUT",
		},
		"blank customer": {
			saleBody{Customer: "   ", Items: []saleItemBody{{sugar.ID, 1}}},
			"INVALID_INPUT",
		},
		"no items": {
			saleBody{Customer: "Jane"},
			"INVALID_INPUT",
		},
		"zero quantity": {
			saleBody{Customer: "Jane", Items: []saleItemBody{{sugar.ID, 0}}},
			"INVALID_INPUT",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/sale", tc.body, cookie)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, errorOf(t, rec).Code)
		})
	}

	assert.Equal(t, int64(10), s.stock(sugar.ID))
	assert.Equal(t, int64(1), s.stock(salt.ID))

	rec := s.do(http.MethodGet, "/sales", nil, cookie)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateSaleValidationDetails(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()

	rec := s.do(http.MethodPost, "/sale", `{"customer":"Jane","items":[{"product_id":1,"quantity":-2}]}`, cookie)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := errorOf(t, rec)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "items[0].quantity", body.Details[0].Field)
	assert.Equal(t, "Must be greater than 0", body.Details[0].Message)
}

func TestListSalesNewestFirst(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()
	sugar := s.addProduct(cookie, "Sugar", 1, 2, 100)

	var ids []int64
	for i := 0; i < 4; i++ {
		rec := s.do(http.MethodPost, "/sale", saleBody{Customer: "Jane", Items: []saleItemBody{{sugar.ID, 1}}}, cookie)
		require.Equal(t, http.StatusCreated, rec.Code)
		var body struct {
			Sale domain.Sale `json:"sale"`
		}
		decode(t, rec, &body)
		ids = append(ids, body.Sale.ID)
	}

	rec := s.do(http.MethodGet, "/sales", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	var sales []domain.Sale
	decode(t, rec, &sales)
	require.Len(t, sales, 4)
	for i, sale := range sales {
		assert.Equal(t, ids[len(ids)-1-i], sale.ID)
		assert.Len(t, sale.Items, 1)
	}

	rec = s.do(http.MethodGet, "/sales?items=false", nil, cookie)
	var bare []domain.Sale
	decode(t, rec, &bare)
	require.Len(t, bare, 4)
	assert.Empty(t, bare[0].Items)
}

func TestListSalesFilters(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()
	sugar := s.addProduct(cookie, "Sugar", 1, 2, 100)

	for _, customer := range []string{"Jane Doe", "John", "jane smith"} {
		rec := s.do(http.MethodPost, "/sale", saleBody{Customer: customer, Items: []saleItemBody{{sugar.ID, 1}}}, cookie)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	list := func(query string) []domain.Sale {
		rec := s.do(http.MethodGet, "/sales?"+query, nil, cookie)
		require.Equal(t, http.StatusOK, rec.Code, query)
		var sales []domain.Sale
		decode(t, rec, &sales)
		return sales
	}
	assert.Len(t, list("customer=JANE"), 2)
	assert.Empty(t, list("date=2000-01-01"))
	assert.Len(t, list("from=2000-01-01"), 3)
	assert.Empty(t, list("to=2000-01-01"))

	for _, query := range []string{
		"date=yesterday",
		"date=2024-01-01&from=2024-01-01",
		"from=2024-02-01&to=2024-01-01",
		"to=soon",
		"items=maybe",
	} {
		rec := s.do(http.MethodGet, "/sales?"+query, nil, cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestDailySalesReport(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login()
	sugar := s.addProduct(cookie, "Sugar", 80, 100, 100)
	salt := s.addProduct(cookie, "Salt", 20, 30, 100)

	for _, body := range []saleBody{
		{Customer: "Jane", Items: []saleItemBody{{sugar.ID, 2}}},
		{Customer: "John", Items: []saleItemBody{{salt.ID, 3}, {sugar.ID, 1}}},
	} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/sale", body, cookie).Code)
	}

	rec := s.do(http.MethodGet, "/sales/daily", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report domain.SalesReport
	decode(t, rec, &report)
	require.Len(t, report.Days, 1)
	assert.Equal(t, 2, report.Count)
	assert.Equal(t, 2, report.Days[0].Count)
	// 200 + 90 + 100 sold, 40 + 30 + 20 profit.
	assert.True(t, decimal.RequireFromString("390").Equal(report.Total), report.Total.String())
	assert.True(t, decimal.RequireFromString("90").Equal(report.Profit), report.Profit.String())
	assert.True(t, report.Total.Equal(report.Days[0].Total))
	assert.Equal(t, "John", report.Days[0].Sales[0].Customer)
}
