package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-library-admin/components/admin"
)

type viewService interface {
	ResolveView(ctx context.Context, viewer admin.ViewerContext) (admin.View, error)
}

// ViewQuery resolves the page state for a viewer.
type ViewQuery struct {
	service viewService
}

// NewViewQuery builds the query.
func NewViewQuery(service viewService) *ViewQuery {
	return &ViewQuery{service: service}
}

var _ gocommand.Querier[admin.ViewerContext, admin.View] = (*ViewQuery)(nil)

// Query resolves the view for the viewer.
func (q *ViewQuery) Query(ctx context.Context, viewer admin.ViewerContext) (admin.View, error) {
	if q.service == nil {
		return admin.View{}, errors.New("view query requires service")
	}
	return q.service.ResolveView(ctx, viewer)
}
