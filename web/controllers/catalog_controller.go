package controllers

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"

	"github.com/example/gadgetcave/internal/service"
)

// CatalogController 前台商品浏览（MVC），挂载在 /api/catalog
type CatalogController struct {
	Ctx     iris.Context
	Catalog *service.CatalogService
}

// BeforeActivation 商品详情需要同时匹配 id 与 slug
func (c *CatalogController) BeforeActivation(b mvc.BeforeActivation) {
	b.Handle("GET", "/product/{id:int64}/{slug:string}", "ProductDetail")
}

// Get 处理 GET /api/catalog?q=
func (c *CatalogController) Get() {
	catalog, err := c.Catalog.Home(c.Ctx.Request().Context(), c.Ctx.URLParamTrim("q"))
	if err != nil {
		Fail(c.Ctx, err)
		return
	}
	OK(c.Ctx, catalog)
}

// GetCategoryBy 处理 GET /api/catalog/category/{slug}
func (c *CatalogController) GetCategoryBy(slug string) {
	catalog, err := c.Catalog.ByCategory(c.Ctx.Request().Context(), slug)
	if err != nil {
		Fail(c.Ctx, err)
		return
	}
	OK(c.Ctx, catalog)
}

func (c *CatalogController) ProductDetail(id int64, slug string) {
	p, err := c.Catalog.Product(c.Ctx.Request().Context(), id, slug)
	if err != nil {
		Fail(c.Ctx, err)
		return
	}
	OK(c.Ctx, p)
}
