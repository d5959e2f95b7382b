package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elkhamyyali/ecommerceback/internal/apperr"
	"github.com/elkhamyyali/ecommerceback/internal/service"
	"github.com/elkhamyyali/ecommerceback/internal/transport"
	"github.com/elkhamyyali/ecommerceback/internal/util"
	"github.com/elkhamyyali/ecommerceback/pkg/logging"
)

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "get_product", err)
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	items, meta, err := h.Svc.GetProducts(ctx, page, size)
	if err != nil {
		return fail(l, "get_products", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "meta": meta})
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, docs, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "products": docs})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "create_product", apperr.Validation("invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return fail(l, "create_product", err)
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, echo.Map{"data": p})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "patch_product", err)
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return fail(l, "patch_product", apperr.Validation("invalid body"))
	}
	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := pathID(c, "id")
	if err != nil {
		return fail(l, "delete_product", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
