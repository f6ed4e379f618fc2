package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
)

// ctxUser returns the user attached by the Auth middleware. Reaching a
// protected handler without one means the route was wired without Auth.
func ctxUser(c echo.Context) (*domain.User, error) {
	user := middleware.CurrentUser(c)
	if user == nil || user.ID == "" {
		return nil, domain.ErrMissingToken
	}
	return user, nil
}

// viewerID is the id of the optional viewer, empty for anonymous requests.
func viewerID(c echo.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

// pageQuery reads the page and limit query parameters. Unparsable values fall
// back to the defaults.
func pageQuery(c echo.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return domain.PageRequest{Page: page, Limit: limit}.Normalize()
}

// formUpload opens the multipart file under field. A missing file yields a
// nil upload. The returned close func is always safe to call.
func formUpload(c echo.Context, field string) (*ports.Upload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, domain.NewValidationError("invalid " + field + " upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, domain.NewValidationError("invalid " + field + " upload")
	}
	return &ports.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// bind decodes the request into req and runs struct validation.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	return c.Validate(req)
}
