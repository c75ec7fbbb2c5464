package handler

import (
	"errors"
	"net/http"

	"github.com/Elite-tch/privacycart/internal/cart"
	"github.com/Elite-tch/privacycart/internal/repository"
	"github.com/Elite-tch/privacycart/internal/sequencer"
	"github.com/Elite-tch/privacycart/internal/session"

	"github.com/labstack/echo/v4"
)

var statusByError = []struct {
	err    error
	status int
}{
	{repository.ErrProductNotFound, http.StatusNotFound},
	{session.ErrNotFound, http.StatusNotFound},
	{sequencer.ErrUnknownSuggestion, http.StatusNotFound},

	{cart.ErrIndexOutOfRange, http.StatusBadRequest},
	{sequencer.ErrEmptyQuery, http.StatusBadRequest},
	{sequencer.ErrEmptyMessage, http.StatusBadRequest},

	{cart.ErrCurrencyMismatch, http.StatusConflict},
	{sequencer.ErrInvalidTransition, http.StatusConflict},
	{session.ErrOverlayClosed, http.StatusConflict},
	{sequencer.ErrNotOpen, http.StatusConflict},
	{sequencer.ErrSuggestionsLocked, http.StatusConflict},
	{sequencer.ErrBusy, http.StatusConflict},
	{session.ErrClosed, http.StatusConflict},
}

// ErrorHandler maps domain errors onto HTTP statuses before handing them to
// echo's default handler.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		e.DefaultHTTPErrorHandler(toHTTPError(err), c)
	}
}

func toHTTPError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.status, err.Error()).SetInternal(err)
		}
	}
	return err
}
