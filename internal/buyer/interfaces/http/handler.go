package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/p2pexchange/internal/buyer/application"
	exchangehttp "github.com/wyfcoding/p2pexchange/internal/exchange/interfaces/http"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// BuyOrderHandler 买单 HTTP 处理器
type BuyOrderHandler struct {
	cmd   *application.BuyOrderCommandService
	query *application.BuyOrderQueryService
}

func NewBuyOrderHandler(cmd *application.BuyOrderCommandService, query *application.BuyOrderQueryService) *BuyOrderHandler {
	return &BuyOrderHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由
func (h *BuyOrderHandler) RegisterRoutes(protected, optional *gin.RouterGroup) {
	api := protected.Group("/buyers")
	{
		api.POST("/createBuyerOrder", h.CreateBuyOrder)
		api.GET("", h.ListMine)
		api.GET("/public", h.FindPublic)
		api.GET("/:id", h.GetBuyOrder)
		api.PATCH("/:id", h.UpdateBuyOrder)
		api.DELETE("/:id", h.CancelBuyOrder)
	}
	optional.POST("/buyers/calculate-conversion-buyer/:buyerId", h.CalculateConversion)
}

// CreateBuyOrder 创建买单
func (h *BuyOrderHandler) CreateBuyOrder(c *gin.Context) {
	var req exchangehttp.TermsRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	terms, err := req.Terms()
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.CreateBuyOrder(c.Request.Context(), application.CreateBuyOrderCommand{
		UserID: exchangehttp.CurrentUser(c),
		Terms:  terms,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Buy order created successfully", dto)
}

// ListMine 自己的买单
func (h *BuyOrderHandler) ListMine(c *gin.Context) {
	filter, err := exchangehttp.BindListFilter(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.query.ListMine(c.Request.Context(), exchangehttp.CurrentUser(c), filter.Page, filter.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "Buy orders retrieved successfully", page.Items, page.Total, page.Pagination.Page, page.Pagination.Pages)
}

// FindPublic 其他用户的买单
func (h *BuyOrderHandler) FindPublic(c *gin.Context) {
	filter, err := exchangehttp.BindListFilter(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.query.FindPublic(c.Request.Context(), exchangehttp.CurrentUser(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "Public buy orders retrieved successfully", page.Items, page.Total, page.Pagination.Page, page.Pagination.Pages)
}

// GetBuyOrder 买单详情
func (h *BuyOrderHandler) GetBuyOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Buy order retrieved successfully", dto)
}

// UpdateBuyOrder 更新买单
func (h *BuyOrderHandler) UpdateBuyOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req exchangehttp.PatchRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.UpdateBuyOrder(c.Request.Context(), application.UpdateBuyOrderCommand{
		OrderID: id,
		UserID:  exchangehttp.CurrentUser(c),
		Patch:   patch,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Buy order updated successfully", dto)
}

// CancelBuyOrder 取消买单
func (h *BuyOrderHandler) CancelBuyOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.cmd.CancelBuyOrder(c.Request.Context(), id, exchangehttp.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Buy order cancelled successfully", dto)
}

// CalculateConversion 按买单汇率换算
func (h *BuyOrderHandler) CalculateConversion(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "buyerId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req exchangehttp.ConversionRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	amount, from, to, err := req.Parse()
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.CalculateConversionBuyer(c.Request.Context(), application.ConversionQuery{
		OrderID:      id,
		Amount:       amount,
		FromCurrency: from,
		ToCurrency:   to,
		RequesterID:  exchangehttp.CurrentUser(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Conversion calculated successfully", dto)
}
