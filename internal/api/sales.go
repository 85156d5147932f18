package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dukapos/m/domain"
	"dukapos/m/internal/report"
	"dukapos/m/internal/repository"
)

type saleResponse struct {
	Success bool         `json:"success"`
	Sale    *domain.Sale `json:"sale"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var order domain.SaleOrder
	if err := decodeJSON(r, &order); err != nil {
		respondDecodeError(w, err)
		return
	}
	if !h.validRequest(w, order) {
		return
	}

	sale, err := h.ledger.Create(r.Context(), order)
	if err != nil {
		h.respondDomainError(w, r, err, "sale failed")
		return
	}

	h.log.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.String("customer", sale.Customer),
		zap.Int("items", len(sale.Items)),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("admin", currentAdmin(r.Context())),
	)
	respondJSON(w, http.StatusCreated, saleResponse{Success: true, Sale: sale})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	filter, err := h.saleFilter(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	sales, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		h.respondDomainError(w, r, err, "unable to fetch sales")
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	filter, err := h.saleFilter(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	sales, err := h.ledger.List(r.Context(), filter)
	if err != nil {
		h.respondDomainError(w, r, err, "unable to fetch sales")
		return
	}
	respondJSON(w, http.StatusOK, report.GroupByDay(sales, h.loc))
}

// saleFilter reads the listing query parameters:
//
//	date=YYYY-MM-DD           one calendar day in the shop's timezone
//	from=, to=                a range; plain dates are whole days (to inclusive),
//	                          RFC 3339 timestamps are exact instants (to exclusive)
//	customer=                 case-insensitive substring of the customer name
//	items=false               leave line items out
func (h *Handler) saleFilter(r *http.Request) (repository.SaleFilter, error) {
	q := r.URL.Query()
	filter := repository.SaleFilter{
		Customer:  strings.TrimSpace(q.Get("customer")),
		WithItems: true,
	}

	if raw := q.Get("items"); raw != "" {
		withItems, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("items must be true or false")
		}
		filter.WithItems = withItems
	}

	if date := q.Get("date"); date != "" {
		if q.Get("from") != "" || q.Get("to") != "" {
			return filter, errors.New("date cannot be combined with from or to")
		}
		from, to, err := report.DayBounds(date, h.loc)
		if err != nil {
			return filter, errors.New("date must look like 2006-01-02")
		}
		filter.From, filter.To = from, to
		return filter, nil
	}

	if raw := q.Get("from"); raw != "" {
		from, _, err := h.parseBound(raw)
		if err != nil {
			return filter, errors.New("from must be a date or an RFC 3339 timestamp")
		}
		filter.From = from
	}
	if raw := q.Get("to"); raw != "" {
		start, dayEnd, err := h.parseBound(raw)
		if err != nil {
			return filter, errors.New("to must be a date or an RFC 3339 timestamp")
		}
		filter.To = start
		if !dayEnd.IsZero() {
			filter.To = dayEnd
		}
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && !filter.From.Before(filter.To) {
		return filter, errors.New("from must be before to")
	}
	return filter, nil
}

// parseBound accepts a plain date, returning its start and end, or an exact
// timestamp with a zero end.
func (h *Handler) parseBound(raw string) (time.Time, time.Time, error) {
	if start, end, err := report.DayBounds(raw, h.loc); err == nil {
		return start, end, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, time.Time{}, err
}
