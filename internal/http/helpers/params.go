package helpers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	MaxBatchIDs     = 100
)

// PathInt64 parsea un parámetro de ruta como id positivo.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return id, nil
}

// Pagination lee page (0-based) y size de la query. size se acota a MaxPageSize.
func Pagination(r *http.Request) (page, size int, err error) {
	q := r.URL.Query()
	size = DefaultPageSize

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err = strconv.Atoi(v)
		if err != nil || page < 0 {
			return 0, 0, fmt.Errorf("page must be >= 0")
		}
	}
	if v := strings.TrimSpace(q.Get("size")); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil || size <= 0 {
			return 0, 0, fmt.Errorf("size must be > 0")
		}
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size, nil
}

// QueryIDs parsea una lista de ids separados por coma (ej: ?ids=1,2,3).
func QueryIDs(r *http.Request, name string) ([]int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	parts := strings.Split(raw, ",")
	if len(parts) > MaxBatchIDs {
		return nil, fmt.Errorf("%s accepts at most %d ids", name, MaxBatchIDs)
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s contains an invalid id %q", name, p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
