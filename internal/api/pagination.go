package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/pantrychef/backend/internal/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errInvalidPage = errors.New("invalid page")

// pageParams reads ?page= and ?page_size=, both optional
func pageParams(c *gin.Context) (page, size int, err error) {
	page, size = 1, defaultPageSize
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return 0, 0, errInvalidPage
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil || size < 1 {
			return 0, 0, errInvalidPage
		}
		if size > maxPageSize {
			size = maxPageSize
		}
	}
	return page, size, nil
}

// newPage builds a paginated body with absolute next/previous links.
// It returns errInvalidPage when page is past the last page.
func newPage[T any](c *gin.Context, results []T, count int64, page, size int) (types.Page[T], error) {
	if results == nil {
		results = []T{}
	}
	lastPage := int((count + int64(size) - 1) / int64(size))
	if lastPage == 0 {
		lastPage = 1
	}
	if page > lastPage {
		return types.Page[T]{}, errInvalidPage
	}

	p := types.Page[T]{Count: count, Results: results}
	if page < lastPage {
		next := pageURL(c, page+1)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1)
		p.Previous = &prev
	}
	return p, nil
}

func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fwd := c.GetHeader("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}

	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: q.Encode()}
	return u.String()
}

func invalidPage(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
}
