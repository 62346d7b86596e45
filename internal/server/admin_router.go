package server

import (
	"encoding/json"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/commerceops/internal/auth"
	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/errs"
	"github.com/example/commerceops/internal/middleware"
	"github.com/example/commerceops/internal/service"
)

// NewApp 创建后台 iris 应用并注册全部路由
func NewApp(d *Deps) *iris.Application {
	app := iris.New()
	app.Logger().SetLevel("disable")
	app.OnErrorCode(iris.StatusNotFound, func(ctx iris.Context) {
		ctx.JSON(iris.Map{"success": false, "message": "route not found"})
	})
	RegisterAdminRoutes(app, d)
	return app
}

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
func RegisterAdminRoutes(app *iris.Application, d *Deps) {
	cfg := d.Config
	log := d.Log

	app.Use(
		middleware.RequestID(),
		middleware.AccessLog(log),
		middleware.Timeout(cfg.AdminServer.RequestTimeout),
	)

	writeLimiter := middleware.NewTokenBucket(cfg.Admin.WriteBurst, cfg.Admin.WriteRefillRate)
	api := app.Party("/api", middleware.WritesOnly(middleware.RateLimit(writeLimiter)))

	// ---------- 公开接口 ----------

	api.Get("/health", func(ctx iris.Context) {
		ok(ctx, iris.Map{"status": "ok", "storage": cfg.Storage.Driver})
	})

	api.Post("/admin/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		token, err := auth.Login(&cfg.JWT, &cfg.Admin, req.Email, req.Password)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"token": token})
	})

	api.Get("/products", func(ctx iris.Context) {
		list, err := d.Products.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"products": list})
	})

	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		p, err := d.Products.GetByID(ctx.Request().Context(), paramID(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"product": p})
	})

	api.Get("/reviews", func(ctx iris.Context) {
		list, err := d.Reviews.List(ctx.Request().Context(), ctx.URLParamInt64Default("productId", 0))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"reviews": list})
	})

	// 联系我们表单
	api.Post("/messages/submit", func(ctx iris.Context) {
		var req service.SubmitInput
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		m, err := d.Messages.Submit(ctx.Request().Context(), req)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Message sent successfully", "data": m})
	})

	// ---------- 需要管理员 token ----------

	admin := api.Party("/", middleware.AdminAuth(&cfg.JWT, d.TokenCache, log))

	registerProductRoutes(admin, d)
	registerOrderRoutes(admin, d)
	registerMessageRoutes(admin, d)

	admin.Get("/dashboard/stats", func(ctx iris.Context) {
		stats, err := d.Analytics.Dashboard(ctx.Request().Context())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"stats": stats})
	})

	admin.Get("/monitor", func(ctx iris.Context) {
		ok(ctx, iris.Map{"monitor": d.Monitor.GetStats()})
	})
}

// ---------- 商品与库存 ----------

func registerProductRoutes(admin iris.Party, d *Deps) {
	log := d.Log

	admin.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		p, err := d.Products.Create(ctx.Request().Context(), req.input())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Product added", "product": p})
	})

	admin.Put("/products/{id:uint64}", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		p, err := d.Products.Update(ctx.Request().Context(), paramID(ctx), req.input())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Product updated", "product": p})
	})

	admin.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		if err := d.Products.Delete(ctx.Request().Context(), paramID(ctx)); err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Product removed"})
	})

	// 库存调整，Idempotency-Key 头可选
	admin.Post("/products/{id:uint64}/stock", func(ctx iris.Context) {
		var req struct {
			Quantity  json.Number            `json:"quantity"`
			Operation product.StockOperation `json:"operation"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		qty, err := req.Quantity.Int64()
		if err != nil {
			fail(ctx, log, errs.ErrInvalidQuantity)
			return
		}
		res, err := d.Ledger.Adjust(ctx.Request().Context(), service.AdjustRequest{
			ProductID:      paramID(ctx),
			Quantity:       qty,
			Operation:      req.Operation,
			IdempotencyKey: ctx.GetHeader("Idempotency-Key"),
		})
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Stock updated", "stock": res})
	})

	admin.Get("/stock/report", func(ctx iris.Context) {
		r, err := d.Ledger.Report(ctx.Request().Context())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"report": r})
	})
}

// ---------- 订单 ----------

func registerOrderRoutes(admin iris.Party, d *Deps) {
	log := d.Log

	admin.Get("/orders", func(ctx iris.Context) {
		list, err := d.Orders.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"orders": list})
	})

	admin.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		o, err := d.Orders.GetByID(ctx.Request().Context(), paramID(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"order": o})
	})

	admin.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		var req struct {
			Status order.Status `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		o, err := d.Orders.Transition(ctx.Request().Context(), paramID(ctx), req.Status)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Status updated", "order": o})
	})

	admin.Put("/orders/{id:uint64}/payment", func(ctx iris.Context) {
		var req struct {
			PaymentStatus order.PaymentStatus `json:"paymentStatus"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		o, err := d.Orders.SetPaymentStatus(ctx.Request().Context(), paramID(ctx), req.PaymentStatus)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Payment status updated", "order": o})
	})
}

// ---------- 留言 ----------

func registerMessageRoutes(admin iris.Party, d *Deps) {
	log := d.Log

	admin.Get("/messages", func(ctx iris.Context) {
		page, err := d.Messages.List(ctx.Request().Context(), service.ListQuery{
			Status:   message.Status(ctx.URLParam("status")),
			Priority: message.Priority(ctx.URLParam("priority")),
			Search:   ctx.URLParam("search"),
			Page:     ctx.URLParamIntDefault("page", 1),
			PageSize: ctx.URLParamIntDefault("pageSize", 10),
		})
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"messages": page.Messages, "pagination": page.Pagination, "stats": page.Stats})
	})

	admin.Get("/messages/stats", func(ctx iris.Context) {
		st, err := d.Messages.Stats(ctx.Request().Context())
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"stats": st})
	})

	admin.Get("/messages/{id:uint64}", func(ctx iris.Context) {
		m, err := d.Messages.Get(ctx.Request().Context(), paramUint(ctx))
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"data": m})
	})

	admin.Delete("/messages/{id:uint64}", func(ctx iris.Context) {
		if err := d.Messages.Delete(ctx.Request().Context(), paramUint(ctx)); err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Message deleted"})
	})

	admin.Put("/messages/{id:uint64}/status", func(ctx iris.Context) {
		var req struct {
			Status   *message.Status   `json:"status"`
			Priority *message.Priority `json:"priority"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		m, err := d.Messages.UpdateStatus(ctx.Request().Context(), paramUint(ctx), req.Status, req.Priority)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Message updated", "data": m})
	})

	admin.Post("/messages/{id:uint64}/reply", func(ctx iris.Context) {
		var req struct {
			ReplyMessage string `json:"replyMessage"`
			AdminName    string `json:"adminName"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		m, err := d.Messages.Reply(ctx.Request().Context(), paramUint(ctx), req.ReplyMessage, req.AdminName)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"message": "Reply sent", "data": m})
	})

	admin.Post("/messages/bulk", func(ctx iris.Context) {
		var req struct {
			MessageIDs []uint64           `json:"messageIds"`
			Action     service.BulkAction `json:"action"`
			Value      string             `json:"value"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, "invalid request body")
			return
		}
		res, err := d.Messages.BulkUpdate(ctx.Request().Context(), req.MessageIDs, req.Action, req.Value)
		if err != nil {
			fail(ctx, log, err)
			return
		}
		ok(ctx, iris.Map{"updated": res.Updated, "results": res.Results})
	})
}

// ---- 辅助结构与函数 ----

type productRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Category    product.Category    `json:"category"`
	SubCategory product.SubCategory `json:"subCategory"`
	Sizes       []string            `json:"sizes"`
	Bestseller  bool                `json:"bestseller"`
	Stock       *int64              `json:"stock"`
	Images      []string            `json:"images"`
}

func (r *productRequest) input() service.ProductInput {
	return service.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Sizes:       r.Sizes,
		Bestseller:  r.Bestseller,
		Stock:       r.Stock,
		Images:      r.Images,
	}
}

func paramID(ctx iris.Context) int64 {
	id, _ := ctx.Params().GetUint64("id")
	return int64(id)
}

func paramUint(ctx iris.Context) uint64 {
	id, _ := ctx.Params().GetUint64("id")
	return id
}
