package picking

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Almacen-api/internal/application/ports"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// OrderView orden con datos de catálogo, lotes, ubicaciones y operario para lectura.
// Los mapas pueden venir incompletos si el catálogo o el directorio no responden.
type OrderView struct {
	Order     *entity.PickingOrder
	Products  map[string]entity.Product
	Lots      map[string]entity.Lot
	Locations map[string]entity.Location
	Worker    *entity.User
}

// Get lee la orden (incluidas las canceladas) y la enriquece.
func (e *Engine) Get(ctx context.Context, orderID string) (*OrderView, error) {
	view := &OrderView{
		Lots:      make(map[string]entity.Lot),
		Locations: make(map[string]entity.Location),
		Products:  make(map[string]entity.Product),
	}
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		if view.Order, err = r.Picking.GetByID(ctx, orderID); err != nil {
			return err
		}
		for _, it := range view.Order.Items {
			for _, lotID := range []*string{it.SuggestedLotID, it.ConfirmedLotID} {
				if lotID == nil {
					continue
				}
				if _, ok := view.Lots[*lotID]; ok {
					continue
				}
				if lot, err := r.Lots.GetByID(ctx, *lotID); err == nil {
					view.Lots[lot.ID] = *lot
				}
			}
			for _, locID := range []*string{it.SuggestedLocationID, it.ConfirmedLocationID} {
				if locID == nil {
					continue
				}
				if _, ok := view.Locations[*locID]; ok {
					continue
				}
				if loc, err := r.Locations.GetByID(ctx, *locID); err == nil {
					view.Locations[loc.ID] = *loc
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.enrich(ctx, view)
	return view, nil
}

// enrich consulta catálogo y directorio en paralelo. Los fallos sólo se registran.
func (e *Engine) enrich(ctx context.Context, view *OrderView) {
	productIDs := uniqueProducts(view.Order)
	var (
		products []entity.Product
		workers  []entity.User
	)
	g, gctx := errgroup.WithContext(ctx)
	if e.catalog != nil && len(productIDs) > 0 {
		g.Go(func() error {
			var err error
			products, err = e.catalog.BatchLookup(gctx, productIDs)
			return err
		})
	}
	if e.users != nil && view.Order.AssignedTo != nil {
		g.Go(func() error {
			var err error
			workers, err = e.users.BatchLookup(gctx, []string{*view.Order.AssignedTo})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		e.log.Warn().Err(err).Str("picking_id", view.Order.ID).Msg("enriquecimiento incompleto")
	}
	for _, p := range products {
		view.Products[p.ID] = p
	}
	if len(workers) > 0 {
		w := workers[0]
		view.Worker = &w
	}
}

// List lista órdenes por prioridad descendente y antigüedad.
func (e *Engine) List(ctx context.Context, f repository.PickingFilter) ([]*entity.PickingOrder, int, error) {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var (
		out   []*entity.PickingOrder
		total int
	)
	err := e.tx.Run(ctx, func(r repository.TxRepos) error {
		var err error
		out, total, err = r.Picking.List(ctx, f)
		return err
	})
	return out, total, err
}

// PickList genera la hoja de picking imprimible.
func (e *Engine) PickList(ctx context.Context, orderID string) ([]byte, error) {
	view, err := e.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	doc := BuildPickList(view, e.now().Format("2006-01-02 15:04"))
	if e.pickList == nil {
		return nil, errNoPickList
	}
	return e.pickList.Generate(doc)
}

// BuildPickList arma el documento de la hoja de picking desde la vista enriquecida.
func BuildPickList(view *OrderView, generatedAt string) ports.PickListDocument {
	o := view.Order
	doc := ports.PickListDocument{
		PickingOrderID: o.ID,
		SourceOrderID:  o.SourceOrderID,
		State:          o.State,
		Priority:       o.Priority,
		GeneratedAt:    generatedAt,
	}
	if view.Worker != nil {
		doc.WorkerName = view.Worker.FullName
	} else if o.AssignedTo != nil {
		doc.WorkerName = *o.AssignedTo
	}
	for _, it := range o.Items {
		line := ports.PickListLine{
			SKU:       it.ProductID,
			Requested: it.RequestedQty,
			Picked:    it.PickedQty,
			LineState: it.LineState,
		}
		if p, ok := view.Products[it.ProductID]; ok {
			line.SKU = p.SKU
			line.ProductName = p.Name
			line.Unit = p.Unit
		}
		if lotID := it.SourceLotID(); lotID != nil {
			if lot, ok := view.Lots[*lotID]; ok {
				line.LotNumber = lot.LotNumber
				line.ExpiresAt = lot.ExpiresAt.Format("2006-01-02")
			}
		}
		if locID := it.SourceLocationID(); locID != nil {
			if loc, ok := view.Locations[*locID]; ok {
				line.LocationCode = loc.Code
			}
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

func uniqueProducts(o *entity.PickingOrder) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it.ProductID)
	}
	return out
}
