package web

import (
	"errors"
	"net/http"

	"github.com/resonatehq/console/internal/client"
	"github.com/resonatehq/console/internal/operations"
)

// listView is what a page shows for its list operation: nothing before the
// first request, then loading, an error, or the table.
type listView struct {
	Loading bool
	Error   string
	Ready   bool
}

func newListView(record operations.Record, ok bool) listView {
	if !ok {
		return listView{}
	}

	switch {
	case record.Loading:
		return listView{Loading: true}
	case record.Error != nil:
		return listView{Error: *record.Error}
	default:
		return listView{Ready: record.Data != nil}
	}
}

// status maps a failed save to the response code of the page. Client errors
// of the backend pass through, everything else is a bad gateway.
func status(err error) int {
	var e *client.Error
	if errors.As(err, &e) && e.StatusCode >= 400 && e.StatusCode < 500 {
		return e.StatusCode
	}
	return http.StatusBadGateway
}
